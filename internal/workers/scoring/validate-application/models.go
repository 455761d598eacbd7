// internal/workers/scoring/validate-application/models.go
package validateapplication

import "loanrisk-workers/internal/models"

type Input struct {
	ApplicationID string                    `json:"applicationId"`
	Application   *models.ApplicationRecord `json:"application"`
}

type Output struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}
