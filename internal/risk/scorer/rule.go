// internal/risk/scorer/rule.go
package scorer

import (
	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/features"
)

// Thresholds shared by both scorers.
const (
	creditScoreNormalizedFloor = 0.65
	dtiRatioCeiling            = 0.4
	ltvRatioCeiling            = 0.8
)

// penalty is one deduction the rule scorer can apply. Order matters: reasons
// are reported in the order penalties are evaluated.
type penalty struct {
	points float64
	reason string
	hit    func(v features.Vector) bool
}

var rulePenalties = []penalty{
	{
		points: 20,
		reason: "Credit score is below 650",
		hit:    func(v features.Vector) bool { return v["credit_score_normalized"] < creditScoreNormalizedFloor },
	},
	{
		points: 15,
		reason: "High Debt-to-Income ratio increases repayment risk",
		hit:    func(v features.Vector) bool { return v["dti_ratio"] > dtiRatioCeiling },
	},
	{
		points: 15,
		reason: "High Loan-to-Value ratio indicates low property equity",
		hit:    func(v features.Vector) bool { return v["ltv_ratio"] > ltvRatioCeiling },
	},
	{
		points: 25,
		reason: "Potential fraud signals detected in documents",
		hit:    func(v features.Vector) bool { return v["fraud_flag"] == 1 },
	},
	{
		points: 10,
		reason: "Property value trend is falling",
		hit:    func(v features.Vector) bool { return v["falling_property_flag"] == 1 },
	},
}

// RuleScorer scores on a 0-100 scale, starting from 100 and deducting a
// fixed amount per triggered rule.
type RuleScorer struct{}

func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

func (s *RuleScorer) Kind() string { return KindRule }

func (s *RuleScorer) Score(v features.Vector) (*models.RiskResult, error) {
	score := 100.0
	reasons := []string{}

	for _, p := range rulePenalties {
		if p.hit(v) {
			score -= p.points
			reasons = append(reasons, p.reason)
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &models.RiskResult{
		RiskScore:    score,
		RiskCategory: ruleCategory(score),
		Reasons:      reasons,
	}, nil
}

func ruleCategory(score float64) models.RiskCategory {
	switch {
	case score >= 75:
		return models.RiskCategoryLow
	case score >= 50:
		return models.RiskCategoryMedium
	default:
		return models.RiskCategoryHigh
	}
}
