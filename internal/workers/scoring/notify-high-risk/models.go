// internal/workers/scoring/notify-high-risk/models.go
package notifyhighrisk

type Input struct {
	ApplicationID string   `json:"applicationId"`
	RiskScore     float64  `json:"riskScore"`
	RiskCategory  string   `json:"riskCategory"`
	Reasons       []string `json:"reasons"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "skipped", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
