// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loanrisk-workers/internal/api"
	"loanrisk-workers/internal/common/camunda"
	"loanrisk-workers/internal/common/config"
	"loanrisk-workers/internal/common/database"
	"loanrisk-workers/internal/common/logger"
	"loanrisk-workers/internal/common/observability"
	"loanrisk-workers/internal/risk/classifier"
	"loanrisk-workers/internal/risk/engine"
	"loanrisk-workers/internal/risk/scorer"
	"loanrisk-workers/pkg/registry"

	// Scoring Workers (4)
	nhr "loanrisk-workers/internal/workers/scoring/notify-high-risk"
	rd "loanrisk-workers/internal/workers/scoring/record-decision"
	sa "loanrisk-workers/internal/workers/scoring/score-application"
	va "loanrisk-workers/internal/workers/scoring/validate-application"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Feature Registry ---
	featureRegistry, err := registry.LoadRegistry(cfg.Scoring.RegistryPath)
	if err != nil {
		zapLog.Fatal("feature registry load failed", zap.Error(err))
	}
	zapLog.Info("Feature registry loaded",
		zap.String("version", featureRegistry.Version),
		zap.Int("features", len(featureRegistry.Features)),
	)

	// --- Model Artifact ---
	var clf scorer.Classifier
	if cfg.Scoring.Scorer == scorer.KindModel {
		loaded, err := classifier.Load(cfg.Scoring.ModelPath)
		if err != nil {
			zapLog.Fatal("model artifact load failed", zap.Error(err))
		}
		zapLog.Info("Model artifact loaded",
			zap.String("path", cfg.Scoring.ModelPath),
			zap.String("version", loaded.Version()),
		)
		clf = loaded
	}

	selected, err := scorer.Select(cfg.Scoring.Scorer, clf)
	if err != nil {
		zapLog.Fatal("scorer selection failed", zap.Error(err))
	}
	riskEngine := engine.New(selected, log)
	zapLog.Info("Risk engine initialized", zap.String("scorer", riskEngine.Scorer()))

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- START: Register Scoring Workers ---

	if cfg.Workers[va.TaskType].Enabled {
		handler := va.NewHandler(
			&va.Config{
				Timeout: time.Duration(cfg.Workers[va.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(zeebeClient, va.TaskType, cfg.Workers[va.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[sa.TaskType].Enabled {
		handler := sa.NewHandler(
			&sa.Config{
				Scorer:    cfg.Scoring.Scorer,
				ModelPath: cfg.Scoring.ModelPath,
				Timeout:   time.Duration(cfg.Workers[sa.TaskType].Timeout) * time.Millisecond,
			},
			riskEngine, log,
		)
		startWorker(zeebeClient, sa.TaskType, cfg.Workers[sa.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[rd.TaskType].Enabled {
		handler := rd.NewHandler(
			&rd.Config{
				Table:   cfg.Scoring.DecisionsTable,
				Index:   cfg.Scoring.DecisionsIndex,
				Timeout: time.Duration(cfg.Workers[rd.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, esClient, log,
		)
		startWorker(zeebeClient, rd.TaskType, cfg.Workers[rd.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[nhr.TaskType].Enabled {
		handler, err := nhr.NewHandler(
			&nhr.Config{
				EmailEnabled:     cfg.Notifications.Email.Enabled,
				SMSEnabled:       cfg.Notifications.SMS.Enabled,
				FromEmail:        cfg.Notifications.Email.FromEmail,
				AWSRegion:        cfg.Integrations.AWS.Region,
				UnderwriterEmail: cfg.Notifications.UnderwriterEmail,
				UnderwriterPhone: cfg.Notifications.UnderwriterPhone,
				Timeout:          time.Duration(cfg.Workers[nhr.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create notify-high-risk handler", zap.Error(err))
		}
		startWorker(zeebeClient, nhr.TaskType, cfg.Workers[nhr.TaskType], handler.Handle, obs, zapLog)
	}

	zapLog.Info("All scoring workers registered successfully")

	// --- Scoring API Server ---
	var apiServer *http.Server
	if cfg.API.Enabled {
		var cache *database.RedisClient
		if cfg.API.CacheEnabled {
			cache = redisClient
		}

		ready := func(ctx context.Context) error {
			if err := pg.Ping(ctx); err != nil {
				return err
			}
			if err := esClient.Ping(); err != nil {
				return err
			}
			return camundaClient.HealthCheck(ctx)
		}

		srv, err := api.NewServer(
			riskEngine,
			cache,
			time.Duration(cfg.Scoring.CacheTTLSeconds)*time.Second,
			ready,
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create scoring API server", zap.Error(err))
		}

		apiServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.API.Port),
			Handler: srv.Handler(),
		}
		go func() {
			zapLog.Info("Scoring API listening", zap.Int("port", cfg.API.Port))
			if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				zapLog.Error("Scoring API server failed", zap.Error(err))
			}
		}()
	}

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if apiServer != nil {
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error shutting down scoring API", zap.Error(err))
		}
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), obs *observability.Observability, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		handlerFunc(jobClient, job)
		obs.RecordJob(context.Background(), taskType, time.Since(start))
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
