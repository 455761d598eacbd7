// internal/workers/scoring/score-application/models.go
package scoreapplication

import "loanrisk-workers/internal/models"

type Input struct {
	ApplicationID string                    `json:"applicationId"`
	Application   *models.ApplicationRecord `json:"application"`
}

type Output struct {
	RiskScore    float64            `json:"riskScore"`
	RiskCategory string             `json:"riskCategory"`
	Reasons      []string           `json:"reasons"`
	Scorer       string             `json:"scorer"`
	Subsignals   map[string]float64 `json:"subsignals,omitempty"`
}
