// internal/api/server.go
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"loanrisk-workers/internal/common/database"
	apperrors "loanrisk-workers/internal/common/errors"
	"loanrisk-workers/internal/common/logger"
	"loanrisk-workers/internal/common/metrics"
	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/engine"
	"loanrisk-workers/internal/risk/validator"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"
)

// requestSchema rejects structurally broken payloads before the application
// record is decoded. Section and field level checks stay in the validator so
// its error messages reach the caller verbatim.
const requestSchema = `{
	"type": "object",
	"required": ["application"],
	"properties": {
		"applicationId": {"type": "string"},
		"application": {"type": "object"}
	}
}`

type ScoreRequest struct {
	ApplicationID string                    `json:"applicationId"`
	Application   *models.ApplicationRecord `json:"application"`
}

type ScoreResponse struct {
	ApplicationID string             `json:"applicationId,omitempty"`
	RiskScore     float64            `json:"riskScore"`
	RiskCategory  string             `json:"riskCategory"`
	Reasons       []string           `json:"reasons"`
	Scorer        string             `json:"scorer"`
	Subsignals    map[string]float64 `json:"subsignals,omitempty"`
	Cached        bool               `json:"cached"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Server struct {
	engine   *engine.Engine
	cache    *database.RedisClient
	cacheTTL time.Duration
	logger   logger.Logger
	schema   *gojsonschema.Schema
	ready    func(ctx context.Context) error
}

// NewServer builds the scoring API. The Redis client is optional; without it
// every request is scored fresh. The ready func backs the readiness probe and
// may be nil.
func NewServer(eng *engine.Engine, cache *database.RedisClient, cacheTTL time.Duration, ready func(ctx context.Context) error, log logger.Logger) (*Server, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}

	return &Server{
		engine:   eng,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
		schema:   schema,
		ready:    ready,
	}, nil
}

// Handler returns the route table for the scoring API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/score", s.handleScore)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only POST is supported")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "PARSE_ERROR", fmt.Sprintf("read body: %v", err))
		return
	}

	result, schemaErr := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if schemaErr != nil {
		s.writeError(w, http.StatusBadRequest, "PARSE_ERROR", fmt.Sprintf("parse request: %v", schemaErr))
		return
	}
	if !result.Valid() {
		s.writeError(w, http.StatusBadRequest, "PARSE_ERROR", result.Errors()[0].String())
		return
	}

	var req ScoreRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "PARSE_ERROR", fmt.Sprintf("parse request: %v", err))
		return
	}

	key := cacheKey(req.ApplicationID, req.Application)
	if cached, ok := s.cachedScore(r.Context(), req.ApplicationID, key); ok {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	res, err := s.engine.Score(r.Context(), req.Application)
	if err != nil {
		s.writeScoringError(w, err)
		return
	}

	response := &ScoreResponse{
		ApplicationID: req.ApplicationID,
		RiskScore:     res.RiskScore,
		RiskCategory:  string(res.RiskCategory),
		Reasons:       res.Reasons,
		Scorer:        s.engine.Scorer(),
		Subsignals:    res.Subsignals,
	}

	s.storeScore(r.Context(), req.ApplicationID, key, response)
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) cachedScore(ctx context.Context, applicationID, key string) (*ScoreResponse, bool) {
	if s.cache == nil || applicationID == "" {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("score cache read failed", map[string]interface{}{
				"applicationId": applicationID,
				"error":         err,
			})
		}
		metrics.ScoreCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}

	var response ScoreResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		metrics.ScoreCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.ScoreCacheHits.WithLabelValues("hit").Inc()
	response.Cached = true
	return &response, true
}

func (s *Server) storeScore(ctx context.Context, applicationID, key string, response *ScoreResponse) {
	if s.cache == nil || applicationID == "" {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("score cache write failed", map[string]interface{}{
			"applicationId": applicationID,
			"error":         err,
		})
	}
}

// cacheKey binds the cached score to the submitted application content, not
// just its id, so a resubmission with a changed record is rescored.
func cacheKey(applicationID string, app *models.ApplicationRecord) string {
	payload, err := json.Marshal(app)
	if err != nil {
		payload = []byte("{}")
	}
	sum := sha256.Sum256(payload)
	return "risk:score:" + applicationID + ":" + hex.EncodeToString(sum[:8])
}

func (s *Server) writeScoringError(w http.ResponseWriter, err error) {
	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		s.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", vErr.Message)
		return
	}

	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		status := http.StatusInternalServerError
		if stdErr.Code == apperrors.ErrCodeModelUnavailable {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, string(stdErr.Code), stdErr.Message)
		return
	}

	s.writeError(w, http.StatusInternalServerError, "COMPUTATION_FAILED", err.Error())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, &errorResponse{Error: code, Message: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to write response", map[string]interface{}{
			"error": err,
		})
	}
}
