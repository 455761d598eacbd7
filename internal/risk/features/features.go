// Package features derives the flat risk feature vector consumed by the
// scorers. It merges preprocessed values with raw application fields; every
// read of an optional input has an explicit default, so derivation never
// fails on sparse applications.
package features

import (
	"math"

	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/preprocess"
)

// Vector is the scorer input: feature name to numeric value.
type Vector map[string]float64

// Ordinal encodings for feature-stage categoricals.
var (
	RepaymentHistoryCodes = map[string]float64{
		"good":          0,
		"late_payments": 1,
		"defaulted":     2,
	}
	TransactionBehaviourCodes = map[string]float64{
		"saving":         0,
		"balanced":       1,
		"spending_heavy": 2,
	}
	SeverityCodes = map[string]float64{
		"low":    0,
		"medium": 1,
		"high":   2,
	}
)

const (
	defaultCreditScore = 600

	// Minimum monthly observations before income volatility is trusted.
	minInflowObservations = 3
)

// Derive builds the feature vector from the preprocessed record and the raw
// application.
func Derive(pre preprocess.Record, rec *models.ApplicationRecord) Vector {
	v := Vector{}

	deriveBorrower(v, rec.Borrower)
	v["credit_score_normalized"] = pre["credit_score_normalized"]

	deriveLoan(v, rec.Loan)
	deriveProperty(v, rec.Property)
	deriveFraud(v, rec.FraudSignals)
	deriveExternal(v, rec.External)
	deriveBehavioral(v, rec.Behavioral)

	// Composite flags consumed by the rule scorer.
	if v["doc_check_failed"] == 1 || v["synthetic_identity_flag"] == 1 {
		v["fraud_flag"] = 1
	} else {
		v["fraud_flag"] = 0
	}
	if pre["price_trend_encoded"] == -1 {
		v["falling_property_flag"] = 1
	} else {
		v["falling_property_flag"] = 0
	}

	return v
}

func deriveBorrower(v Vector, b *models.BorrowerProfile) {
	income, age := 0.0, 0.0
	creditScore := float64(defaultCreditScore)
	history, behaviour, volatility := "good", "balanced", "medium"
	altCredit := 0.0

	if b != nil {
		income = deref(b.Income)
		age = deref(b.Age)
		if b.CreditScore != nil {
			creditScore = *b.CreditScore
		}
		if b.PastRepaymentHistory != "" {
			history = b.PastRepaymentHistory
		}
		if b.TransactionBehaviour != "" {
			behaviour = b.TransactionBehaviour
		}
		if b.CashFlowVolatility != "" {
			volatility = b.CashFlowVolatility
		}
		if alt := b.AlternateCreditIndicators; alt != nil {
			altCredit = boolToFloat(alt.RentPaymentOnTime) + boolToFloat(alt.UtilityBillsOnTime)
		}
	}

	v["income"] = income
	v["age"] = age
	v["credit_score"] = preprocess.ClipCreditScore(creditScore)
	v["repayment_history_score"] = encode(RepaymentHistoryCodes, history, 0)
	v["transaction_behavior_score"] = encode(TransactionBehaviourCodes, behaviour, 1)
	v["cash_flow_volatility_score"] = encode(SeverityCodes, volatility, 1)
	v["alt_credit_score"] = altCredit
}

func deriveLoan(v Vector, loan *models.LoanDetails) {
	if loan == nil {
		loan = &models.LoanDetails{}
	}
	v["loan_amount"] = deref(loan.LoanAmount)
	v["interest_rate"] = deref(loan.InterestRate)
	v["tenure_years"] = deref(loan.TenureYears)
	v["ltv_ratio"] = loan.LoanToValueRatio
	v["dti_ratio"] = loan.DebtToIncomeRatio
	v["loan_to_income_ratio"] = loan.LoanToIncomeRatio
	v["cross_loan_exposure"] = loan.CrossLoanExposure
}

func deriveProperty(v Vector, prop *models.PropertyDetails) {
	if prop == nil {
		prop = &models.PropertyDetails{}
	}
	v["declared_value"] = deref(prop.DeclaredValue)
	v["market_value"] = deref(prop.MarketValue)
	v["overvaluation_flag"] = boolToFloat(prop.OvervaluationDetected)

	crime, disaster := "medium", "medium"
	unemployment := 0.0
	if loc := prop.LocationRisk; loc != nil {
		if loc.CrimeIndex != "" {
			crime = loc.CrimeIndex
		}
		if loc.NaturalDisasterRisk != "" {
			disaster = loc.NaturalDisasterRisk
		}
		unemployment = loc.UnemploymentRate
	}
	v["crime_index_score"] = encode(SeverityCodes, crime, 1)
	v["disaster_risk_score"] = encode(SeverityCodes, disaster, 1)
	v["unemployment_rate"] = unemployment
}

func deriveFraud(v Vector, fraud *models.FraudRiskSignals) {
	if fraud == nil {
		fraud = &models.FraudRiskSignals{}
	}
	docCheck := "passed"
	if fraud.DocumentConsistencyCheck != nil {
		docCheck = *fraud.DocumentConsistencyCheck
	}
	v["doc_check_failed"] = boolToFloat(docCheck == "failed")
	v["synthetic_identity_flag"] = boolToFloat(fraud.SyntheticIdentityDetected)
	v["anomaly_count"] = float64(len(fraud.AnomalyPatterns))
}

func deriveExternal(v Vector, ext *models.ExternalData) {
	if ext == nil {
		ext = &models.ExternalData{}
	}
	v["industry_growth_rate"] = deref(ext.IndustryGrowthRate)
	v["regional_unemployment"] = ext.RegionalUnemployment
	v["regional_inflation"] = ext.RegionalInflation
	v["recession_indicator"] = boolToFloat(ext.RecessionIndicator)

	concentration := "medium"
	if ext.PortfolioConcentrationRisk != "" {
		concentration = ext.PortfolioConcentrationRisk
	}
	v["portfolio_concentration_score"] = encode(SeverityCodes, concentration, 1)
}

func deriveBehavioral(v Vector, beh *models.Behavioral) {
	v["income_cv_12m"] = 0
	v["nsf_count"] = 0
	v["bnpl_usage"] = 0

	if beh == nil || beh.BankTxnSummary == nil {
		return
	}
	txn := beh.BankTxnSummary
	v["income_cv_12m"] = incomeCV(txn.MonthlyNetInflows)
	v["nsf_count"] = float64(txn.NSFCount)
	v["bnpl_usage"] = boolToFloat(txn.BNPLUsage)
}

// incomeCV is the population coefficient of variation of the monthly net
// inflows. Fewer than three observations is not enough signal; return 0.
func incomeCV(inflows []float64) float64 {
	if len(inflows) < minInflowObservations {
		return 0
	}
	mean := 0.0
	for _, x := range inflows {
		mean += x
	}
	mean /= float64(len(inflows))

	variance := 0.0
	for _, x := range inflows {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(inflows))

	return math.Sqrt(variance) / (mean + 1e-6)
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

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
