// internal/workers/scoring/record-decision/handler.go
package recorddecision

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loanrisk-workers/internal/common/database"
	apperrors "loanrisk-workers/internal/common/errors"
	"loanrisk-workers/internal/common/logger"
	"loanrisk-workers/internal/common/metrics"
	"loanrisk-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "record-decision"
)

type Handler struct {
	config *Config
	db     *sql.DB
	es     *database.ElasticsearchClient
	logger logger.Logger
}

// NewHandler wires the decision store. The Elasticsearch client may be nil,
// in which case decisions are persisted to Postgres only.
func NewHandler(config *Config, db *sql.DB, es *database.ElasticsearchClient, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		es:     es,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		errorCode := "DATABASE_INSERT_FAILED"
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			errorCode = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	recordedAt := time.Now().UTC()
	record := models.DecisionRecord{
		ID:            uuid.New().String(),
		ApplicationID: input.ApplicationID,
		RiskScore:     input.RiskScore,
		RiskCategory:  models.RiskCategory(input.RiskCategory),
		Reasons:       input.Reasons,
		Scorer:        input.Scorer,
		CreatedAt:     recordedAt,
	}

	if err := h.insertDecision(ctx, &record); err != nil {
		return nil, err
	}

	indexed := false
	if h.es != nil {
		if err := h.indexDecision(ctx, &record); err != nil {
			// The Postgres row is the source of truth. A failed index is
			// surfaced for retry so the search copy catches up.
			return nil, err
		}
		indexed = true
	}

	h.logger.Info("decision recorded", map[string]interface{}{
		"decisionId":    record.ID,
		"applicationId": record.ApplicationID,
		"riskCategory":  record.RiskCategory,
		"indexed":       indexed,
	})

	return &Output{
		DecisionID: record.ID,
		RecordedAt: recordedAt.Format(time.RFC3339),
		Indexed:    indexed,
	}, nil
}

func (h *Handler) insertDecision(ctx context.Context, record *models.DecisionRecord) error {
	reasons, err := json.Marshal(record.Reasons)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, application_id, risk_score, risk_category, reasons, scorer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (application_id) DO NOTHING`, h.config.Table)

	result, err := h.db.ExecContext(ctx, query,
		record.ID,
		record.ApplicationID,
		record.RiskScore,
		record.RiskCategory,
		reasons,
		record.Scorer,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	if rows == 0 {
		return apperrors.NewDuplicateDecisionError(record.ApplicationID)
	}

	return nil
}

func (h *Handler) indexDecision(ctx context.Context, record *models.DecisionRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewIndexingFailedError(h.config.Index, err)
	}

	res, err := h.es.Client.Index(
		h.config.Index,
		bytes.NewReader(body),
		h.es.Client.Index.WithDocumentID(record.ID),
		h.es.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewIndexingFailedError(h.config.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewIndexingFailedError(h.config.Index, fmt.Errorf("index response: %s", res.Status()))
	}

	return nil
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
