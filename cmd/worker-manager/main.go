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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cuidly-workers/internal/common/aws"
	"cuidly-workers/internal/common/camunda"
	"cuidly-workers/internal/common/config"
	"cuidly-workers/internal/common/database"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/observability"
	"cuidly-workers/internal/search"
	"cuidly-workers/internal/store"
	"cuidly-workers/pkg/registry"

	// Matching Workers (3)
	cms "cuidly-workers/internal/workers/matching/calculate-match-score"
	rc "cuidly-workers/internal/workers/matching/rank-candidates"
	snc "cuidly-workers/internal/workers/matching/search-nanny-candidates"

	// Notification Workers (1)
	sn "cuidly-workers/internal/workers/notification/send-notification"

	// Subscription Workers (6)
	cbe "cuidly-workers/internal/workers/subscription/check-boost-eligibility"
	ccl "cuidly-workers/internal/workers/subscription/check-conversation-limit"
	cje "cuidly-workers/internal/workers/subscription/check-job-expiration"
	cmp "cuidly-workers/internal/workers/subscription/check-message-permission"
	gpl "cuidly-workers/internal/workers/subscription/get-plan-limits"
	isc "cuidly-workers/internal/workers/subscription/invalidate-subscription-cache"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type registration struct {
	taskType string
	handler  camunda.JobHandler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"env": cfg.App.Environment})

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	obs, err := observability.New(observability.Config{
		ServiceName:    cfg.App.Name,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
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
		pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
		return err
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
		esClient, err = database.NewElasticsearch(ctx, cfg.Database.Elasticsearch)
		return err
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(ctx, cfg.Database.Redis)
		return err
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	st := store.New(pg.DB, redis.Client, time.Duration(cfg.Subscription.CacheTTL)*time.Second, log)
	searcher := search.New(esClient.Client, cfg.Database.Elasticsearch.NannyIndex, log)

	// --- Init Notification Channels ---
	var (
		email sn.EmailSender
		sms   sn.SMSSender
	)
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			email = aws.NewMailer(awsCfg, cfg.Notifications.Email.FromEmail)
		}
		if cfg.Notifications.SMS.Enabled {
			sms = aws.NewTexter(awsCfg, cfg.Notifications.SMS.SenderID)
		}
		zapLog.Info("AWS notification channels initialized",
			zap.Bool("email", email != nil),
			zap.Bool("sms", sms != nil),
		)
	}

	// --- Register Workers ---
	registrations := []registration{
		{gpl.TaskType, gpl.NewHandler(gpl.LoadConfig(cfg), st, obs, log)},
		{ccl.TaskType, ccl.NewHandler(ccl.LoadConfig(cfg), st, obs, log)},
		{cmp.TaskType, cmp.NewHandler(cmp.LoadConfig(cfg), st, obs, log)},
		{cbe.TaskType, cbe.NewHandler(cbe.LoadConfig(cfg), st, obs, log)},
		{cje.TaskType, cje.NewHandler(cje.LoadConfig(cfg), st, obs, log)},
		{isc.TaskType, isc.NewHandler(isc.LoadConfig(cfg), st, obs, log)},
		{cms.TaskType, cms.NewHandler(cms.LoadConfig(cfg), st, obs, log)},
		{rc.TaskType, rc.NewHandler(rc.LoadConfig(cfg), st, searcher, obs, log)},
		{snc.TaskType, snc.NewHandler(snc.LoadConfig(cfg), st, searcher, obs, log)},
		{sn.TaskType, sn.NewHandler(sn.LoadConfig(cfg), st, email, sms, obs, log)},
	}
	checkRegistry(registrations, log)

	var workers []*camunda.CamundaWorker
	for _, r := range registrations {
		if !config.IsWorkerEnabled(cfg, r.taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", r.taskType))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, r.taskType)
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), camunda.WorkerOptions{
			TaskType:      r.taskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, r.handler, log))
	}
	zapLog.Info("Workers registered", zap.Int("started", len(workers)), zap.Int("known", len(registrations)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.Handle("/debug/", http.DefaultServeMux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"time": time.Now().Format(time.RFC3339), "status": "ready"}
		code := http.StatusOK
		for name, ping := range map[string]func(context.Context) error{
			"postgres":      pg.Ping,
			"redis":         redis.Ping,
			"elasticsearch": esClient.Ping,
			"zeebe":         zeebe.HealthCheck,
		} {
			if err := ping(r.Context()); err != nil {
				checks[name] = err.Error()
				checks["status"] = "not ready"
				code = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		writeStatus(w, code, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry warns about workers the activity catalog does not describe.
// A missing catalog is not fatal.
func checkRegistry(regs []registration, log logger.Logger) {
	reg, err := registry.LoadRegistry(registry.DefaultPath)
	if err != nil {
		log.Warn("activity registry unavailable", map[string]interface{}{"error": err.Error()})
		return
	}
	taskTypes := make([]string, 0, len(regs))
	for _, r := range regs {
		taskTypes = append(taskTypes, r.taskType)
	}
	if missing := reg.Missing(taskTypes); len(missing) > 0 {
		log.Warn("workers missing from activity registry", map[string]interface{}{"taskTypes": missing})
	}
}

func writeStatus(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
