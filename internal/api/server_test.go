// internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrisk-workers/internal/common/database"
	"loanrisk-workers/internal/common/logger"
	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/engine"
	"loanrisk-workers/internal/risk/scorer"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func testApplication() map[string]interface{} {
	return map[string]interface{}{
		"borrower_profile": map[string]interface{}{
			"employment_type": "self-employed",
			"income":          45000,
			"credit_score":    610,
			"income_sources": []map[string]interface{}{
				{
					"source":                 "business",
					"monthly_average_income": 45000,
					"income_stability_score": 0.7,
				},
			},
			"bank_transactions": map[string]interface{}{
				"average_monthly_balance": 15000,
				"transaction_variance":    0.3,
			},
		},
		"loan_details": map[string]interface{}{
			"loan_amount":   250000,
			"interest_rate": 7.5,
			"tenure_years":  15,
		},
		"property_details": map[string]interface{}{
			"declared_value": 300000,
			"market_value":   280000,
			"price_trend":    "falling",
		},
		"fraud_risk_signals": map[string]interface{}{
			"document_consistency_check": "failed",
		},
		"external_data": map[string]interface{}{
			"industry":             "tourism",
			"industry_growth_rate": -4.2,
		},
	}
}

func newTestServer(t *testing.T, cache *database.RedisClient) *Server {
	t.Helper()
	eng := engine.New(scorer.NewRuleScorer(), logger.NewNoOpLogger())
	srv, err := NewServer(eng, cache, time.Hour, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	return srv
}

func postScore(t *testing.T, srv *Server, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestScore_Success(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postScore(t, srv, map[string]interface{}{
		"applicationId": "app-001",
		"application":   testApplication(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 45.0, resp.RiskScore)
	assert.Equal(t, string(models.RiskCategoryHigh), resp.RiskCategory)
	assert.Equal(t, "rule", resp.Scorer)
	assert.False(t, resp.Cached)
	assert.Equal(t, []string{
		"Credit score is below 650",
		"Potential fraud signals detected in documents",
		"Property value trend is falling",
	}, resp.Reasons)
}

func TestScore_MissingApplicationRejectedBySchema(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postScore(t, srv, map[string]interface{}{"applicationId": "app-001"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PARSE_ERROR", resp.Error)
}

func TestScore_ValidationFailure(t *testing.T) {
	srv := newTestServer(t, nil)

	app := testApplication()
	delete(app, "loan_details")

	rec := postScore(t, srv, map[string]interface{}{
		"applicationId": "app-002",
		"application":   app,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_FAILED", resp.Error)
	assert.Equal(t, "Missing sections: loan_details", resp.Message)
}

func TestScore_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/score", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestScore_CacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	srv := newTestServer(t, cache)
	payload := map[string]interface{}{
		"applicationId": "app-003",
		"application":   testApplication(),
	}

	first := postScore(t, srv, payload)
	require.Equal(t, http.StatusOK, first.Code)

	var firstResp ScoreResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	assert.False(t, firstResp.Cached)

	second := postScore(t, srv, payload)
	require.Equal(t, http.StatusOK, second.Code)

	var secondResp ScoreResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
	assert.True(t, secondResp.Cached)
	assert.Equal(t, firstResp.RiskScore, secondResp.RiskScore)
	assert.Equal(t, firstResp.Reasons, secondResp.Reasons)
}

func TestScore_CacheMissOnChangedApplication(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	srv := newTestServer(t, cache)

	payload := map[string]interface{}{
		"applicationId": "app-004",
		"application":   testApplication(),
	}
	first := postScore(t, srv, payload)
	require.Equal(t, http.StatusOK, first.Code)

	var firstResp ScoreResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	assert.False(t, firstResp.Cached)

	changed := testApplication()
	changed["property_details"].(map[string]interface{})["price_trend"] = "stable"
	payload["application"] = changed

	second := postScore(t, srv, payload)
	require.Equal(t, http.StatusOK, second.Code)

	var secondResp ScoreResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
	assert.False(t, secondResp.Cached)
	assert.NotEqual(t, firstResp.RiskScore, secondResp.RiskScore)
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady_DependencyDown(t *testing.T) {
	eng := engine.New(scorer.NewRuleScorer(), logger.NewNoOpLogger())
	srv, err := NewServer(eng, nil, time.Hour, func(context.Context) error {
		return errors.New("postgres unreachable")
	}, logger.NewTestLogger(t))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCacheProtocol(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := &database.RedisClient{Client: client}

	eng := engine.New(scorer.NewRuleScorer(), logger.NewNoOpLogger())
	srv, err := NewServer(eng, cache, 30*time.Minute, nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	key := cacheKey("app-777", &models.ApplicationRecord{})

	mock.ExpectGet(key).RedisNil()
	_, ok := srv.cachedScore(ctx, "app-777", key)
	assert.False(t, ok)

	stored := &ScoreResponse{
		ApplicationID: "app-777",
		RiskScore:     45.0,
		RiskCategory:  string(models.RiskCategoryHigh),
		Reasons:       []string{"Credit score is below 650"},
		Scorer:        "rule",
	}
	payload, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectSet(key, payload, 30*time.Minute).SetVal("OK")
	srv.storeScore(ctx, "app-777", key, stored)

	mock.ExpectGet(key).SetVal(string(payload))
	hit, ok := srv.cachedScore(ctx, "app-777", key)
	require.True(t, ok)
	assert.True(t, hit.Cached)
	assert.Equal(t, stored.RiskScore, hit.RiskScore)
	assert.Equal(t, stored.RiskCategory, hit.RiskCategory)

	assert.NoError(t, mock.ExpectationsWereMet())
}
