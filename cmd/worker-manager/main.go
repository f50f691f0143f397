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

	awsclients "territory-workers/internal/common/aws"
	"territory-workers/internal/common/camunda"
	"territory-workers/internal/common/config"
	"territory-workers/internal/common/database"
	"territory-workers/internal/common/logger"
	"territory-workers/internal/common/metrics"
	"territory-workers/internal/common/observability"

	"territory-workers/internal/assignment"
	"territory-workers/internal/geo/distance"
	"territory-workers/internal/geo/geocode"

	// Territory Workers (4)
	ar "territory-workers/internal/workers/territory/assign-representative"
	gl "territory-workers/internal/workers/territory/geocode-location"
	rt "territory-workers/internal/workers/territory/resync-territory"
	vt "territory-workers/internal/workers/territory/validate-territory"

	// Communication Workers (1)
	na "territory-workers/internal/workers/communication/notify-assignment"
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

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
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
	// Indexing is best-effort: a missing cluster degrades to no search index,
	// never to a dead worker manager.
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

	var indexer *assignment.Indexer
	if err != nil {
		zapLog.Warn("elasticsearch unavailable, assignment indexing disabled", zap.Error(err))
	} else {
		indexer = assignment.NewIndexer(esClient.Client, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init Redis with retry ---
	// The coordinate cache is an optimization; run without it if Redis is down.
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")

	var coordCache assignment.Cache
	if err != nil {
		zapLog.Warn("redis unavailable, coordinate cache disabled", zap.Error(err))
	} else {
		defer redis.Close()
		cacheTTL := time.Duration(cfg.Geocoding.CacheTTLDays) * 24 * time.Hour
		coordCache = assignment.NewCoordinateCache(redis.Client, cacheTTL, log)
		zapLog.Info("Redis connected successfully")
	}

	// --- Build the assignment engine ---
	store := assignment.NewPostgresStore(ctx, pg.DB, log)

	geocoder := geocode.NewClient(geocode.Config{
		BaseURL: cfg.Geocoding.BaseURL,
		APIKey:  cfg.Geocoding.APIKey,
		Region:  cfg.Geocoding.Region,
		Timeout: time.Duration(cfg.Geocoding.Timeout) * time.Millisecond,
	}, log)

	engine := assignment.NewEngine(store, geocoder, coordCache, indexer, log, assignment.Options{
		MaxAlternates:   cfg.Assignment.MaxAlternates,
		ResyncBatchSize: cfg.Assignment.ResyncBatchSize,
	})

	if cfg.DistanceMatrix.Enabled {
		matrix := distance.NewMatrixClient(distance.MatrixConfig{
			BaseURL: cfg.DistanceMatrix.BaseURL,
			APIKey:  cfg.DistanceMatrix.APIKey,
			Timeout: time.Duration(cfg.DistanceMatrix.Timeout) * time.Millisecond,
		}, log)
		engine.WithRouter(matrix, cfg.DistanceMatrix.Mode)
		zapLog.Info("Distance matrix enrichment enabled",
			zap.String("mode", cfg.DistanceMatrix.Mode))
	}

	// --- Init notification clients ---
	var sesClient *awsclients.SESClient
	var snsClient *awsclients.SNSClient
	if cfg.Notifications.Email.Enabled {
		sesClient, err = awsclients.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SES client init failed, email notifications disabled", zap.Error(err))
		}
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err = awsclients.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SNS client init failed, sms notifications disabled", zap.Error(err))
		}
	}

	workerGroup := camunda.NewWorkerGroup(zapLog)

	// --- START: Register ALL 5 Workers ---

	// --- 1. Territory Workers (4) ---
	if cfg.Workers[ar.TaskType].Enabled {
		handler := ar.NewHandler(
			&ar.Config{
				Timeout:       time.Duration(cfg.Workers[ar.TaskType].Timeout) * time.Millisecond,
				MaxAlternates: cfg.Assignment.MaxAlternates,
			},
			engine, log,
		)
		startWorker(zeebeClient, ar.TaskType, cfg.Workers[ar.TaskType], handler.Handle, obs, workerGroup, zapLog)
	}

	if cfg.Workers[gl.TaskType].Enabled {
		handler := gl.NewHandler(
			&gl.Config{
				Timeout: time.Duration(cfg.Workers[gl.TaskType].Timeout) * time.Millisecond,
			},
			engine, log,
		)
		startWorker(zeebeClient, gl.TaskType, cfg.Workers[gl.TaskType], handler.Handle, obs, workerGroup, zapLog)
	}

	if cfg.Workers[rt.TaskType].Enabled {
		handler := rt.NewHandler(
			&rt.Config{
				Timeout:      time.Duration(cfg.Workers[rt.TaskType].Timeout) * time.Millisecond,
				DefaultDelay: time.Duration(cfg.Assignment.ResyncDelayMs) * time.Millisecond,
			},
			engine, log,
		)
		startWorker(zeebeClient, rt.TaskType, cfg.Workers[rt.TaskType], handler.Handle, obs, workerGroup, zapLog)
	}

	if cfg.Workers[vt.TaskType].Enabled {
		handler := vt.NewHandler(
			&vt.Config{
				Timeout: time.Duration(cfg.Workers[vt.TaskType].Timeout) * time.Millisecond,
			},
			store, log,
		)
		startWorker(zeebeClient, vt.TaskType, cfg.Workers[vt.TaskType], handler.Handle, obs, workerGroup, zapLog)
	}

	// --- 2. Communication Workers (1) ---
	if cfg.Workers[na.TaskType].Enabled {
		naCfg := &na.Config{
			Timeout:      time.Duration(cfg.Workers[na.TaskType].Timeout) * time.Millisecond,
			EmailEnabled: cfg.Notifications.Email.Enabled && sesClient != nil,
			SMSEnabled:   cfg.Notifications.SMS.Enabled && snsClient != nil,
			FromEmail:    cfg.Notifications.Email.FromEmail,
		}
		if err := naCfg.Validate(); err != nil {
			zapLog.Fatal("notify-assignment config invalid", zap.Error(err))
		}
		var emailSender na.EmailSender
		if sesClient != nil {
			emailSender = sesClient
		}
		var smsSender na.SMSSender
		if snsClient != nil {
			smsSender = snsClient
		}
		handler := na.NewHandler(naCfg, emailSender, smsSender, log)
		startWorker(zeebeClient, na.TaskType, cfg.Workers[na.TaskType], handler.Handle, obs, workerGroup, zapLog)
	}

	zapLog.Info("All 5 workers registered successfully")

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

	workerGroup.Close(shutdownCtx)

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), obs *observability.Observability, group *camunda.WorkerGroup, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		handlerFunc(jobClient, job)

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJob(context.Background(), taskType, elapsed)
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()
	group.Add(taskType, jobWorker)

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
