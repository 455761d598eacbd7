// Package validator checks submitted loan applications for structural
// completeness before any scoring work happens. Checks are presence only;
// type and range concerns belong to the transport schema and the
// preprocessing defaults.
package validator

import (
	"fmt"
	"strings"

	"loanrisk-workers/internal/models"
)

// ValidationError reports the first structural problem found in an
// application. Its message is stable and safe to surface to callers.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Validate returns nil when the application has every required section and
// field, or a *ValidationError naming the first missing piece. Missing
// top-level sections are collected and reported together; field checks stop
// at the first violation.
func Validate(rec *models.ApplicationRecord) error {
	var missingSections []string
	if rec.Borrower == nil {
		missingSections = append(missingSections, "borrower_profile")
	}
	if rec.Loan == nil {
		missingSections = append(missingSections, "loan_details")
	}
	if rec.Property == nil {
		missingSections = append(missingSections, "property_details")
	}
	if rec.FraudSignals == nil {
		missingSections = append(missingSections, "fraud_risk_signals")
	}
	if rec.External == nil {
		missingSections = append(missingSections, "external_data")
	}
	if len(missingSections) > 0 {
		return newError("Missing sections: %s", strings.Join(missingSections, ", "))
	}

	if err := validateBorrower(rec.Borrower); err != nil {
		return err
	}

	for _, f := range []struct {
		present bool
		name    string
	}{
		{rec.Loan.LoanAmount != nil, "loan_amount"},
		{rec.Loan.InterestRate != nil, "interest_rate"},
		{rec.Loan.TenureYears != nil, "tenure_years"},
	} {
		if !f.present {
			return newError("Missing loan field: %s", f.name)
		}
	}

	if rec.Property.DeclaredValue == nil {
		return newError("Missing property field: declared_value")
	}
	if rec.Property.MarketValue == nil {
		return newError("Missing property field: market_value")
	}

	if rec.FraudSignals.DocumentConsistencyCheck == nil {
		return newError("Missing fraud field: document_consistency_check")
	}

	if rec.External.Industry == nil {
		return newError("Missing external field: industry")
	}
	if rec.External.IndustryGrowthRate == nil {
		return newError("Missing external field: industry_growth_rate")
	}

	return nil
}

func validateBorrower(b *models.BorrowerProfile) error {
	if b.EmploymentType == nil {
		return newError("Missing borrower field: employment_type")
	}
	if b.IncomeSources == nil {
		return newError("Missing borrower field: income_sources")
	}
	if b.BankTransactions == nil {
		return newError("Missing borrower field: bank_transactions")
	}

	if len(b.IncomeSources) == 0 {
		return newError("Borrower income_sources must be a non-empty list")
	}
	for _, src := range b.IncomeSources {
		if src.Source == nil {
			return newError("Missing field in income_sources: source")
		}
		if src.MonthlyAverageIncome == nil {
			return newError("Missing field in income_sources: monthly_average_income")
		}
		if src.IncomeStabilityScore == nil {
			return newError("Missing field in income_sources: income_stability_score")
		}
	}

	if b.BankTransactions.AverageMonthlyBalance == nil {
		return newError("Missing field in bank_transactions: average_monthly_balance")
	}
	if b.BankTransactions.TransactionVariance == nil {
		return newError("Missing field in bank_transactions: transaction_variance")
	}

	return nil
}
