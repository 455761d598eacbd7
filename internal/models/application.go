// internal/models/application.go
package models

// ApplicationRecord is one loan applicant submission as received from the
// transport layer. The five required sections are pointers so a missing
// section survives JSON decoding and can be reported by name; the same goes
// for required leaf fields inside them. Optional fields carry plain types and
// get their documented defaults at feature-derivation time.
type ApplicationRecord struct {
	Borrower     *BorrowerProfile  `json:"borrower_profile"`
	Loan         *LoanDetails      `json:"loan_details"`
	Property     *PropertyDetails  `json:"property_details"`
	FraudSignals *FraudRiskSignals `json:"fraud_risk_signals"`
	External     *ExternalData     `json:"external_data"`

	// Optional sections
	Behavioral *Behavioral `json:"behavioral,omitempty"`
	Documents  []Document  `json:"documents,omitempty"`
}

type BorrowerProfile struct {
	EmploymentType   *string           `json:"employment_type"`
	IncomeSources    []IncomeSource    `json:"income_sources"`
	BankTransactions *BankTransactions `json:"bank_transactions"`

	Income      *float64 `json:"income,omitempty"`
	CreditScore *float64 `json:"credit_score,omitempty"`
	Age         *float64 `json:"age,omitempty"`

	PastRepaymentHistory string `json:"past_repayment_history,omitempty"` // good | late_payments | defaulted
	TransactionBehaviour string `json:"transaction_behaviour,omitempty"`  // saving | balanced | spending_heavy
	CashFlowVolatility   string `json:"cash_flow_volatility,omitempty"`   // low | medium | high

	AlternateCreditIndicators *AlternateCreditIndicators `json:"alternate_credit_indicators,omitempty"`
}

type IncomeSource struct {
	Source               *string  `json:"source"`
	Platform             string   `json:"platform,omitempty"`
	MonthlyAverageIncome *float64 `json:"monthly_average_income"`
	IncomeStabilityScore *float64 `json:"income_stability_score"`
}

type BankTransactions struct {
	AverageMonthlyBalance  *float64 `json:"average_monthly_balance"`
	TransactionVariance    *float64 `json:"transaction_variance"`
	RegularInflowPattern   bool     `json:"regular_inflow_pattern,omitempty"`
	CashDepositsPercentage float64  `json:"cash_deposits_percentage,omitempty"`
}

type AlternateCreditIndicators struct {
	RentPaymentOnTime  bool `json:"rent_payment_on_time,omitempty"`
	UtilityBillsOnTime bool `json:"utility_bills_on_time,omitempty"`
}

type LoanDetails struct {
	LoanAmount   *float64 `json:"loan_amount"`
	InterestRate *float64 `json:"interest_rate"`
	TenureYears  *float64 `json:"tenure_years"`

	LoanToValueRatio  float64 `json:"loan_to_value_ratio,omitempty"`
	DebtToIncomeRatio float64 `json:"debt_to_income_ratio,omitempty"`
	LoanToIncomeRatio float64 `json:"loan_to_income_ratio,omitempty"`
	CrossLoanExposure float64 `json:"cross_loan_exposure,omitempty"`
}

type PropertyDetails struct {
	DeclaredValue *float64 `json:"declared_value"`
	MarketValue   *float64 `json:"market_value"`

	PriceTrend            string        `json:"price_trend,omitempty"` // rising | stable | falling
	LocationRisk          *LocationRisk `json:"location_risk,omitempty"`
	OvervaluationDetected bool          `json:"overvaluation_detected,omitempty"`
}

type LocationRisk struct {
	CrimeIndex          string  `json:"crime_index,omitempty"`           // low | medium | high
	NaturalDisasterRisk string  `json:"natural_disaster_risk,omitempty"` // low | medium | high
	UnemploymentRate    float64 `json:"unemployment_rate,omitempty"`
}

type FraudRiskSignals struct {
	DocumentConsistencyCheck  *string  `json:"document_consistency_check"` // passed | failed
	SyntheticIdentityDetected bool     `json:"synthetic_identity_detected,omitempty"`
	AnomalyPatterns           []string `json:"anomaly_patterns,omitempty"`
}

type ExternalData struct {
	Industry           *string  `json:"industry"`
	IndustryGrowthRate *float64 `json:"industry_growth_rate"`

	RegionalUnemployment       float64 `json:"regional_unemployment,omitempty"`
	RegionalInflation          float64 `json:"regional_inflation,omitempty"`
	RecessionIndicator         bool    `json:"recession_indicator,omitempty"`
	PortfolioConcentrationRisk string  `json:"portfolio_concentration_risk,omitempty"` // low | medium | high
}

type Behavioral struct {
	BankTxnSummary *BankTxnSummary `json:"bank_txn_summary,omitempty"`
}

type BankTxnSummary struct {
	Months            int       `json:"months,omitempty"`
	MonthlyNetInflows []float64 `json:"monthly_net_inflows,omitempty"`
	NSFCount          int       `json:"nsf_count,omitempty"`
	BNPLUsage         bool      `json:"bnpl_usage,omitempty"`
}

type Document struct {
	Type     string                 `json:"type"`
	Hash     string                 `json:"hash"`
	Source   string                 `json:"source,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
