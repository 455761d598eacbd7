// internal/risk/features/features_test.go
package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/preprocess"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func sampleApplication() *models.ApplicationRecord {
	return &models.ApplicationRecord{
		Borrower: &models.BorrowerProfile{
			Income:               f64(45000),
			Age:                  f64(34),
			CreditScore:          f64(610),
			EmploymentType:       str("self-employed"),
			PastRepaymentHistory: "late_payments",
			TransactionBehaviour: "spending_heavy",
			CashFlowVolatility:   "high",
			AlternateCreditIndicators: &models.AlternateCreditIndicators{
				RentPaymentOnTime:  true,
				UtilityBillsOnTime: false,
			},
		},
		Loan: &models.LoanDetails{
			LoanAmount:        f64(250000),
			InterestRate:      f64(7.5),
			TenureYears:       f64(15),
			LoanToValueRatio:  0.78,
			DebtToIncomeRatio: 0.46,
			LoanToIncomeRatio: 3.6,
			CrossLoanExposure: 2,
		},
		Property: &models.PropertyDetails{
			DeclaredValue: f64(300000),
			MarketValue:   f64(280000),
			PriceTrend:    "falling",
			LocationRisk: &models.LocationRisk{
				CrimeIndex:          "high",
				NaturalDisasterRisk: "low",
				UnemploymentRate:    8.5,
			},
			OvervaluationDetected: true,
		},
		FraudSignals: &models.FraudRiskSignals{
			DocumentConsistencyCheck:  str("failed"),
			SyntheticIdentityDetected: false,
			AnomalyPatterns:           []string{"unusual_large_transaction", "sudden_address_change"},
		},
		External: &models.ExternalData{
			Industry:                   str("hospitality"),
			IndustryGrowthRate:         f64(-4.2),
			RegionalUnemployment:       7.8,
			RegionalInflation:          5.4,
			RecessionIndicator:         true,
			PortfolioConcentrationRisk: "high",
		},
	}
}

func TestDerive_SampleApplication(t *testing.T) {
	rec := sampleApplication()
	pre := preprocess.Preprocess(rec)
	v := Derive(pre, rec)

	assert.Equal(t, 45000.0, v["income"])
	assert.Equal(t, 34.0, v["age"])
	assert.Equal(t, 610.0, v["credit_score"])
	assert.InDelta(t, (610.0-300.0)/550.0, v["credit_score_normalized"], 1e-9)
	assert.Equal(t, 1.0, v["repayment_history_score"])
	assert.Equal(t, 2.0, v["transaction_behavior_score"])
	assert.Equal(t, 2.0, v["cash_flow_volatility_score"])
	assert.Equal(t, 1.0, v["alt_credit_score"])

	assert.Equal(t, 250000.0, v["loan_amount"])
	assert.Equal(t, 7.5, v["interest_rate"])
	assert.Equal(t, 15.0, v["tenure_years"])
	assert.Equal(t, 0.78, v["ltv_ratio"])
	assert.Equal(t, 0.46, v["dti_ratio"])
	assert.Equal(t, 3.6, v["loan_to_income_ratio"])
	assert.Equal(t, 2.0, v["cross_loan_exposure"])

	assert.Equal(t, 300000.0, v["declared_value"])
	assert.Equal(t, 280000.0, v["market_value"])
	assert.Equal(t, 1.0, v["overvaluation_flag"])
	assert.Equal(t, 2.0, v["crime_index_score"])
	assert.Equal(t, 0.0, v["disaster_risk_score"])
	assert.Equal(t, 8.5, v["unemployment_rate"])

	assert.Equal(t, 1.0, v["doc_check_failed"])
	assert.Equal(t, 0.0, v["synthetic_identity_flag"])
	assert.Equal(t, 2.0, v["anomaly_count"])

	assert.Equal(t, -4.2, v["industry_growth_rate"])
	assert.Equal(t, 7.8, v["regional_unemployment"])
	assert.Equal(t, 5.4, v["regional_inflation"])
	assert.Equal(t, 1.0, v["recession_indicator"])
	assert.Equal(t, 2.0, v["portfolio_concentration_score"])

	assert.Equal(t, 1.0, v["fraud_flag"])
	assert.Equal(t, 1.0, v["falling_property_flag"])
}

func TestDerive_DefaultsOnEmptyApplication(t *testing.T) {
	rec := &models.ApplicationRecord{}
	v := Derive(preprocess.Preprocess(rec), rec)

	assert.Equal(t, 0.0, v["income"])
	assert.Equal(t, 0.0, v["age"])
	assert.Equal(t, 600.0, v["credit_score"])
	assert.Equal(t, 0.0, v["repayment_history_score"])
	assert.Equal(t, 1.0, v["transaction_behavior_score"])
	assert.Equal(t, 1.0, v["cash_flow_volatility_score"])
	assert.Equal(t, 0.0, v["alt_credit_score"])
	assert.Equal(t, 1.0, v["crime_index_score"])
	assert.Equal(t, 1.0, v["disaster_risk_score"])
	assert.Equal(t, 1.0, v["portfolio_concentration_score"])
	assert.Equal(t, 0.0, v["doc_check_failed"])
	assert.Equal(t, 0.0, v["fraud_flag"])
	assert.Equal(t, 0.0, v["falling_property_flag"])
	assert.Equal(t, 0.0, v["income_cv_12m"])
	assert.Equal(t, 0.0, v["nsf_count"])
	assert.Equal(t, 0.0, v["bnpl_usage"])
}

func TestDerive_UnknownLabelsUseDefaults(t *testing.T) {
	rec := sampleApplication()
	rec.Borrower.PastRepaymentHistory = "unknown"
	rec.Borrower.TransactionBehaviour = "erratic"
	rec.Borrower.CashFlowVolatility = "extreme"
	rec.External.PortfolioConcentrationRisk = "severe"

	v := Derive(preprocess.Preprocess(rec), rec)
	assert.Equal(t, 0.0, v["repayment_history_score"])
	assert.Equal(t, 1.0, v["transaction_behavior_score"])
	assert.Equal(t, 1.0, v["cash_flow_volatility_score"])
	assert.Equal(t, 1.0, v["portfolio_concentration_score"])
}

func TestDerive_FraudFlagFromSyntheticIdentity(t *testing.T) {
	rec := sampleApplication()
	rec.FraudSignals.DocumentConsistencyCheck = str("passed")
	rec.FraudSignals.SyntheticIdentityDetected = true

	v := Derive(preprocess.Preprocess(rec), rec)
	assert.Equal(t, 0.0, v["doc_check_failed"])
	assert.Equal(t, 1.0, v["synthetic_identity_flag"])
	assert.Equal(t, 1.0, v["fraud_flag"])
}

func TestDerive_FallingPropertyFlagOnlyWhenFalling(t *testing.T) {
	for trend, want := range map[string]float64{"rising": 0, "stable": 0, "falling": 1, "": 0} {
		rec := sampleApplication()
		rec.Property.PriceTrend = trend

		v := Derive(preprocess.Preprocess(rec), rec)
		assert.Equal(t, want, v["falling_property_flag"], "trend %q", trend)
	}
}

func TestDerive_CreditScoreClipped(t *testing.T) {
	rec := sampleApplication()
	rec.Borrower.CreditScore = f64(1200)

	v := Derive(preprocess.Preprocess(rec), rec)
	assert.Equal(t, 850.0, v["credit_score"])
}

func TestIncomeCV(t *testing.T) {
	tests := []struct {
		name    string
		inflows []float64
		want    float64
	}{
		{"too few observations", []float64{5000, 6000}, 0},
		{"constant inflows", []float64{4000, 4000, 4000}, 0},
		{"varying inflows", []float64{3000, 5000, 7000}, mustCV([]float64{3000, 5000, 7000})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, incomeCV(tt.inflows), 1e-9)
		})
	}
}

func mustCV(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance) / (mean + 1e-6)
}

func TestDerive_BehavioralSupplement(t *testing.T) {
	rec := sampleApplication()
	rec.Behavioral = &models.Behavioral{
		BankTxnSummary: &models.BankTxnSummary{
			Months:            12,
			MonthlyNetInflows: []float64{3000, 5000, 7000},
			NSFCount:          2,
			BNPLUsage:         true,
		},
	}

	v := Derive(preprocess.Preprocess(rec), rec)
	assert.InDelta(t, mustCV([]float64{3000, 5000, 7000}), v["income_cv_12m"], 1e-9)
	assert.Equal(t, 2.0, v["nsf_count"])
	assert.Equal(t, 1.0, v["bnpl_usage"])
}
