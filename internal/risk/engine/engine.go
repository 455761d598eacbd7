// Package engine runs the four-stage scoring pipeline: validate the
// application, preprocess it, derive the feature vector, and score it.
// An Engine holds no per-request state; a single instance serves
// concurrent requests.
package engine

import (
	"context"
	"fmt"
	"time"

	apperrors "loanrisk-workers/internal/common/errors"
	"loanrisk-workers/internal/common/logger"
	"loanrisk-workers/internal/common/metrics"
	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/features"
	"loanrisk-workers/internal/risk/preprocess"
	"loanrisk-workers/internal/risk/scorer"
	"loanrisk-workers/internal/risk/validator"
)

type Engine struct {
	scorer scorer.Scorer
	log    logger.Logger
}

func New(s scorer.Scorer, log logger.Logger) *Engine {
	return &Engine{scorer: s, log: log}
}

// Scorer exposes the configured scorer kind for logging and job variables.
func (e *Engine) Scorer() string {
	return e.scorer.Kind()
}

// Score runs the full pipeline on one application. A validation failure is
// returned as *validator.ValidationError; downstream failures come back as
// StandardErrors. Panics inside the computation stages are recovered into a
// COMPUTATION_FAILED error rather than taking the process down.
func (e *Engine) Score(ctx context.Context, rec *models.ApplicationRecord) (result *models.RiskResult, err error) {
	start := time.Now()

	// An absent application validates as an empty record, so the caller gets
	// the full missing-sections message instead of a nil dereference.
	if rec == nil {
		rec = &models.ApplicationRecord{}
	}

	if err := validator.Validate(rec); err != nil {
		metrics.ValidationFailures.Inc()
		e.log.Warn("Application failed validation", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	metrics.PipelineStageDuration.WithLabelValues("validate").Observe(time.Since(start).Seconds())

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperrors.NewComputationError("pipeline", fmt.Errorf("panic: %v", r))
			e.log.Error("Recovered panic in scoring pipeline", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewScoringTimeoutError(e.scorer.Kind())
	}

	stageStart := time.Now()
	pre := preprocess.Preprocess(rec)
	metrics.PipelineStageDuration.WithLabelValues("preprocess").Observe(time.Since(stageStart).Seconds())

	stageStart = time.Now()
	vec := features.Derive(pre, rec)
	metrics.PipelineStageDuration.WithLabelValues("features").Observe(time.Since(stageStart).Seconds())

	stageStart = time.Now()
	result, err = e.scorer.Score(vec)
	metrics.PipelineStageDuration.WithLabelValues("score").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.RiskScores.WithLabelValues(string(result.RiskCategory), e.scorer.Kind()).Inc()
	e.log.Info("Application scored", map[string]interface{}{
		"riskScore":    result.RiskScore,
		"riskCategory": string(result.RiskCategory),
		"scorer":       e.scorer.Kind(),
		"reasons":      len(result.Reasons),
		"durationMs":   time.Since(start).Milliseconds(),
	})

	return result, nil
}
