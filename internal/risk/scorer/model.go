// internal/risk/scorer/model.go
package scorer

import (
	"math"

	"loanrisk-workers/internal/common/errors"
	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/features"
)

const creditScoreReasonFloor = 650

// Classifier is the loaded default-probability model the ModelScorer
// delegates to.
type Classifier interface {
	PredictProba(dtiRatio, ltvRatio, creditScore, fraudFlag float64) (float64, error)
}

// ModelScorer reports the classifier's probability of default as the risk
// score, with reason strings derived from the same thumb rules the rule
// scorer applies. A classifier failure is fatal to the request; there is no
// fallback to the rule scorer.
type ModelScorer struct {
	clf Classifier
}

func NewModelScorer(clf Classifier) *ModelScorer {
	return &ModelScorer{clf: clf}
}

func (s *ModelScorer) Kind() string { return KindModel }

func (s *ModelScorer) Score(v features.Vector) (*models.RiskResult, error) {
	dti := v["dti_ratio"]
	ltv := v["ltv_ratio"]
	credit := v["credit_score"]
	fraud := v["fraud_flag"]

	p, err := s.clf.PredictProba(dti, ltv, credit, fraud)
	if err != nil {
		return nil, errors.NewModelUnavailableError("classifier", err)
	}

	return &models.RiskResult{
		RiskScore:    math.Round(p*100) / 100,
		RiskCategory: modelCategory(p),
		Reasons:      ThumbRuleReasons(v),
		Subsignals: map[string]float64{
			"probability_of_default": p,
		},
	}, nil
}

func modelCategory(probDefault float64) models.RiskCategory {
	switch {
	case probDefault < 0.3:
		return models.RiskCategoryLow
	case probDefault < 0.6:
		return models.RiskCategoryMedium
	default:
		return models.RiskCategoryHigh
	}
}

// ThumbRuleReasons explains a model decision with the plain-language risk
// factors, independent of the fitted weights.
func ThumbRuleReasons(v features.Vector) []string {
	reasons := []string{}
	if v["dti_ratio"] > dtiRatioCeiling {
		reasons = append(reasons, "High Debt-to-Income ratio")
	}
	if v["ltv_ratio"] > ltvRatioCeiling {
		reasons = append(reasons, "High Loan-to-Value ratio")
	}
	if v["credit_score"] < creditScoreReasonFloor {
		reasons = append(reasons, "Low credit score")
	}
	if v["fraud_flag"] == 1 {
		reasons = append(reasons, "Fraud signals detected")
	}
	return reasons
}
