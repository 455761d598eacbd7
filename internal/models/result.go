// internal/models/result.go
package models

import "time"

type RiskCategory string

const (
	RiskCategoryLow    RiskCategory = "Low Risk"
	RiskCategoryMedium RiskCategory = "Medium Risk"
	RiskCategoryHigh   RiskCategory = "High Risk"
)

// RiskResult is the final output of the scoring pipeline.
type RiskResult struct {
	RiskScore    float64      `json:"risk_score"`
	RiskCategory RiskCategory `json:"risk_category"`
	Reasons      []string     `json:"reasons"`

	// Subsignals carries diagnostic values the scorer chose to surface,
	// e.g. the model's default probability. Absent for rule-based runs.
	Subsignals map[string]float64 `json:"subsignals,omitempty"`
}

// DecisionRecord is the persisted form of a completed scoring run.
type DecisionRecord struct {
	ID            string       `json:"id"`
	ApplicationID string       `json:"application_id"`
	RiskScore     float64      `json:"risk_score"`
	RiskCategory  RiskCategory `json:"risk_category"`
	Reasons       []string     `json:"reasons"`
	Scorer        string       `json:"scorer"` // "rule" or "model"
	CreatedAt     time.Time    `json:"created_at"`
}
