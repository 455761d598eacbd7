// Package preprocess normalizes, scales, and encodes raw application fields
// into a flat numeric record. Every transform is fixed, every categorical
// lookup has an explicit default, and unknown labels never panic.
package preprocess

import (
	"loanrisk-workers/internal/models"
)

// Record is the flat output of the preprocessing stage.
type Record map[string]float64

// Encoding tables for categorical fields. Exported so the feature registry
// tests can assert they stay in sync with configs/feature-registry.json.
var (
	EmploymentTypeCodes = map[string]float64{
		"salaried":      0,
		"self-employed": 1,
		"unemployed":    2,
	}
	PriceTrendCodes = map[string]float64{
		"rising":  1,
		"stable":  0,
		"falling": -1,
	}
	DocCheckCodes = map[string]float64{
		"passed": 1,
		"failed": 0,
	}
)

const (
	incomeScale     = 100000
	loanAmountScale = 1000000
	marketValScale  = 1000000
	maxTenureYears  = 30

	creditScoreFloor   = 300
	creditScoreCeiling = 850
)

// Preprocess builds the normalized record for an application. Missing
// optional fields take their documented defaults; the output is fully
// determined by the input.
func Preprocess(rec *models.ApplicationRecord) Record {
	out := Record{}

	borrower := rec.Borrower

	income := 0.0
	creditScore := 0.0
	employment := "unemployed"
	if borrower != nil {
		income = deref(borrower.Income)
		creditScore = deref(borrower.CreditScore)
		if borrower.EmploymentType != nil {
			employment = *borrower.EmploymentType
		}
	}
	if income < 0 {
		income = 0
	}
	out["income_normalized"] = income / incomeScale
	out["credit_score_normalized"] = (ClipCreditScore(creditScore) - creditScoreFloor) / (creditScoreCeiling - creditScoreFloor)
	out["employment_type_encoded"] = encode(EmploymentTypeCodes, employment, 2)

	if loan := rec.Loan; loan != nil {
		out["loan_amount_scaled"] = deref(loan.LoanAmount) / loanAmountScale
		out["interest_rate"] = deref(loan.InterestRate) / 100
		out["tenure_years"] = deref(loan.TenureYears) / maxTenureYears
	} else {
		out["loan_amount_scaled"] = 0
		out["interest_rate"] = 0
		out["tenure_years"] = 0
	}

	trend := "stable"
	if prop := rec.Property; prop != nil {
		out["market_value_scaled"] = deref(prop.MarketValue) / marketValScale
		if prop.PriceTrend != "" {
			trend = prop.PriceTrend
		}
	} else {
		out["market_value_scaled"] = 0
	}
	out["price_trend_encoded"] = encode(PriceTrendCodes, trend, 0)

	docCheck := "failed"
	if rec.FraudSignals != nil && rec.FraudSignals.DocumentConsistencyCheck != nil {
		docCheck = *rec.FraudSignals.DocumentConsistencyCheck
	}
	out["doc_check_encoded"] = encode(DocCheckCodes, docCheck, 0)

	growth := 0.0
	if rec.External != nil && rec.External.IndustryGrowthRate != nil {
		growth = *rec.External.IndustryGrowthRate
	}
	out["industry_growth_rate"] = growth / 100

	return out
}

// ClipCreditScore clamps a bureau score into the [300, 850] range.
func ClipCreditScore(score float64) float64 {
	if score < creditScoreFloor {
		return creditScoreFloor
	}
	if score > creditScoreCeiling {
		return creditScoreCeiling
	}
	return score
}

func encode(codes map[string]float64, label string, fallback float64) float64 {
	if v, ok := codes[label]; ok {
		return v
	}
	return fallback
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
