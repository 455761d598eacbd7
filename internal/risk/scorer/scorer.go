// Package scorer turns a feature vector into a risk decision. Two
// implementations exist: a deterministic rule scorer and a model-backed
// scorer delegating to the loaded classifier. Both are stateless and safe
// for concurrent use.
package scorer

import (
	"errors"

	apperrors "loanrisk-workers/internal/common/errors"
	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/features"
)

// Scorer names accepted by Select and the worker/API configuration.
const (
	KindRule  = "rule"
	KindModel = "model"
)

type Scorer interface {
	// Score produces the risk decision for one applicant's feature vector.
	Score(v features.Vector) (*models.RiskResult, error)

	// Kind returns the scorer selector this implementation answers to.
	Kind() string
}

// Select returns the scorer for the configured kind. The classifier may be
// nil only when the rule scorer is requested.
func Select(kind string, clf Classifier) (Scorer, error) {
	switch kind {
	case KindRule:
		return NewRuleScorer(), nil
	case KindModel:
		if clf == nil {
			return nil, apperrors.NewModelUnavailableError("classifier", errors.New("no classifier loaded"))
		}
		return NewModelScorer(clf), nil
	default:
		return nil, apperrors.NewUnknownScorerError(kind)
	}
}
