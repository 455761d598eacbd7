// internal/workers/scoring/score-application/handler.go
package scoreapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "loanrisk-workers/internal/common/errors"
	"loanrisk-workers/internal/common/logger"
	"loanrisk-workers/internal/common/metrics"
	"loanrisk-workers/internal/risk/engine"
	"loanrisk-workers/internal/risk/validator"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-application"
)

type Handler struct {
	config *Config
	engine *engine.Engine
	logger logger.Logger
	errs   *apperrors.ErrorHandler
}

func NewHandler(config *Config, eng *engine.Engine, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		engine: eng,
		logger: scoped,
		errs:   apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		stdErr := standardize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.errs.HandleJobError(context.Background(), client, job, stdErr)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.engine.Score(ctx, input.Application)
	if err != nil {
		return nil, err
	}

	h.logger.Info("application scored", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"riskScore":     result.RiskScore,
		"riskCategory":  result.RiskCategory,
		"scorer":        h.engine.Scorer(),
	})

	return &Output{
		RiskScore:    result.RiskScore,
		RiskCategory: string(result.RiskCategory),
		Reasons:      result.Reasons,
		Scorer:       h.engine.Scorer(),
		Subsignals:   result.Subsignals,
	}, nil
}

// standardize maps pipeline errors onto the shared taxonomy so the BPMN code
// and retry count come out of one table.
func standardize(err error) *apperrors.StandardError {
	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		return apperrors.NewValidationError(vErr.Message)
	}
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return apperrors.NewComputationError("scoring", err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
