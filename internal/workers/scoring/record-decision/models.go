// internal/workers/scoring/record-decision/models.go
package recorddecision

type Input struct {
	ApplicationID string   `json:"applicationId"`
	RiskScore     float64  `json:"riskScore"`
	RiskCategory  string   `json:"riskCategory"`
	Reasons       []string `json:"reasons"`
	Scorer        string   `json:"scorer"`
}

type Output struct {
	DecisionID string `json:"decisionId"`
	RecordedAt string `json:"recordedAt"` // ISO 8601
	Indexed    bool   `json:"indexed"`
}
