// internal/workers/scoring/validate-application/handler_test.go
package validateapplication

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrisk-workers/internal/common/logger"
	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/validator"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func testApplication() *models.ApplicationRecord {
	return &models.ApplicationRecord{
		Borrower: &models.BorrowerProfile{
			EmploymentType: str("self-employed"),
			IncomeSources: []models.IncomeSource{
				{
					Source:               str("freelance"),
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

func newHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func TestExecute_ValidApplication(t *testing.T) {
	h := newHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		ApplicationID: "app-001",
		Application:   testApplication(),
	})
	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Equal(t, "Input validation passed", output.Message)
}

func TestExecute_MissingSection(t *testing.T) {
	h := newHandler(t)

	app := testApplication()
	app.Loan = nil

	_, err := h.Execute(context.Background(), &Input{
		ApplicationID: "app-002",
		Application:   app,
	})
	require.Error(t, err)
	assert.Equal(t, "Missing sections: loan_details", err.Error())

	var vErr *validator.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestExecute_MissingBorrowerField(t *testing.T) {
	h := newHandler(t)

	app := testApplication()
	app.Borrower.EmploymentType = nil

	_, err := h.Execute(context.Background(), &Input{
		ApplicationID: "app-003",
		Application:   app,
	})
	require.Error(t, err)
	assert.Equal(t, "Missing borrower field: employment_type", err.Error())
}

func TestExecute_NilApplication(t *testing.T) {
	h := newHandler(t)

	_, err := h.Execute(context.Background(), &Input{ApplicationID: "app-004"})
	require.Error(t, err)
	assert.Equal(t,
		"Missing sections: borrower_profile, loan_details, property_details, fraud_risk_signals, external_data",
		err.Error())
}
