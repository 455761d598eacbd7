// internal/risk/validator/validator_test.go
package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrisk-workers/internal/models"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func validApplication() *models.ApplicationRecord {
	return &models.ApplicationRecord{
		Borrower: &models.BorrowerProfile{
			EmploymentType: str("self-employed"),
			IncomeSources: []models.IncomeSource{
				{
					Source:               str("freelance"),
					Platform:             "Upwork",
					MonthlyAverageIncome: f64(25000),
					IncomeStabilityScore: f64(0.65),
				},
			},
			BankTransactions: &models.BankTransactions{
				AverageMonthlyBalance: f64(15000),
				TransactionVariance:   f64(0.35),
			},
			Income:      f64(45000),
			CreditScore: f64(610),
		},
		Loan: &models.LoanDetails{
			LoanAmount:   f64(250000),
			InterestRate: f64(7.5),
			TenureYears:  f64(15),
		},
		Property: &models.PropertyDetails{
			DeclaredValue: f64(300000),
			MarketValue:   f64(280000),
			PriceTrend:    "falling",
		},
		FraudSignals: &models.FraudRiskSignals{
			DocumentConsistencyCheck: str("failed"),
		},
		External: &models.ExternalData{
			Industry:           str("hospitality"),
			IndustryGrowthRate: f64(-4.2),
		},
	}
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validApplication()))
}

func TestValidate_MissingSections(t *testing.T) {
	rec := validApplication()
	rec.Loan = nil
	rec.External = nil

	err := Validate(rec)
	require.Error(t, err)
	assert.Equal(t, "Missing sections: loan_details, external_data", err.Error())

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestValidate_AllSectionsMissing(t *testing.T) {
	err := Validate(&models.ApplicationRecord{})
	require.Error(t, err)
	assert.Equal(t,
		"Missing sections: borrower_profile, loan_details, property_details, fraud_risk_signals, external_data",
		err.Error())
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(rec *models.ApplicationRecord)
		wantMsg string
	}{
		{
			name:    "missing employment type",
			mutate:  func(rec *models.ApplicationRecord) { rec.Borrower.EmploymentType = nil },
			wantMsg: "Missing borrower field: employment_type",
		},
		{
			name:    "missing income sources",
			mutate:  func(rec *models.ApplicationRecord) { rec.Borrower.IncomeSources = nil },
			wantMsg: "Missing borrower field: income_sources",
		},
		{
			name:    "missing bank transactions",
			mutate:  func(rec *models.ApplicationRecord) { rec.Borrower.BankTransactions = nil },
			wantMsg: "Missing borrower field: bank_transactions",
		},
		{
			name: "empty income sources",
			mutate: func(rec *models.ApplicationRecord) {
				rec.Borrower.IncomeSources = []models.IncomeSource{}
			},
			wantMsg: "Borrower income_sources must be a non-empty list",
		},
		{
			name: "income source missing source",
			mutate: func(rec *models.ApplicationRecord) {
				rec.Borrower.IncomeSources[0].Source = nil
			},
			wantMsg: "Missing field in income_sources: source",
		},
		{
			name: "income source missing monthly average",
			mutate: func(rec *models.ApplicationRecord) {
				rec.Borrower.IncomeSources[0].MonthlyAverageIncome = nil
			},
			wantMsg: "Missing field in income_sources: monthly_average_income",
		},
		{
			name: "income source missing stability score",
			mutate: func(rec *models.ApplicationRecord) {
				rec.Borrower.IncomeSources[0].IncomeStabilityScore = nil
			},
			wantMsg: "Missing field in income_sources: income_stability_score",
		},
		{
			name: "missing average monthly balance",
			mutate: func(rec *models.ApplicationRecord) {
				rec.Borrower.BankTransactions.AverageMonthlyBalance = nil
			},
			wantMsg: "Missing field in bank_transactions: average_monthly_balance",
		},
		{
			name: "missing transaction variance",
			mutate: func(rec *models.ApplicationRecord) {
				rec.Borrower.BankTransactions.TransactionVariance = nil
			},
			wantMsg: "Missing field in bank_transactions: transaction_variance",
		},
		{
			name:    "missing loan amount",
			mutate:  func(rec *models.ApplicationRecord) { rec.Loan.LoanAmount = nil },
			wantMsg: "Missing loan field: loan_amount",
		},
		{
			name:    "missing interest rate",
			mutate:  func(rec *models.ApplicationRecord) { rec.Loan.InterestRate = nil },
			wantMsg: "Missing loan field: interest_rate",
		},
		{
			name:    "missing tenure",
			mutate:  func(rec *models.ApplicationRecord) { rec.Loan.TenureYears = nil },
			wantMsg: "Missing loan field: tenure_years",
		},
		{
			name:    "missing declared value",
			mutate:  func(rec *models.ApplicationRecord) { rec.Property.DeclaredValue = nil },
			wantMsg: "Missing property field: declared_value",
		},
		{
			name:    "missing market value",
			mutate:  func(rec *models.ApplicationRecord) { rec.Property.MarketValue = nil },
			wantMsg: "Missing property field: market_value",
		},
		{
			name: "missing document consistency check",
			mutate: func(rec *models.ApplicationRecord) {
				rec.FraudSignals.DocumentConsistencyCheck = nil
			},
			wantMsg: "Missing fraud field: document_consistency_check",
		},
		{
			name:    "missing industry",
			mutate:  func(rec *models.ApplicationRecord) { rec.External.Industry = nil },
			wantMsg: "Missing external field: industry",
		},
		{
			name:    "missing industry growth rate",
			mutate:  func(rec *models.ApplicationRecord) { rec.External.IndustryGrowthRate = nil },
			wantMsg: "Missing external field: industry_growth_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validApplication()
			tt.mutate(rec)

			err := Validate(rec)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidate_SectionCheckRunsBeforeFieldChecks(t *testing.T) {
	rec := validApplication()
	rec.Borrower.EmploymentType = nil
	rec.External = nil

	err := Validate(rec)
	require.Error(t, err)
	assert.Equal(t, "Missing sections: external_data", err.Error())
}

func TestValidate_OptionalFieldsMayBeAbsent(t *testing.T) {
	rec := validApplication()
	rec.Borrower.Income = nil
	rec.Borrower.CreditScore = nil
	rec.Borrower.Age = nil
	rec.Property.PriceTrend = ""
	rec.Property.LocationRisk = nil

	assert.NoError(t, Validate(rec))
}
