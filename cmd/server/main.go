package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lexigo/reviewd/internal/api"
	"github.com/lexigo/reviewd/internal/config"
	"github.com/lexigo/reviewd/internal/db"
	"github.com/lexigo/reviewd/internal/evaluator"
	"github.com/lexigo/reviewd/internal/exercise"
	"github.com/lexigo/reviewd/internal/jobs"
	"github.com/lexigo/reviewd/internal/lock"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/repository/sqlite"
	"github.com/lexigo/reviewd/internal/scheduler"
	"github.com/lexigo/reviewd/internal/services"
	"github.com/lexigo/reviewd/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(strings.EqualFold(cfg.LogFormat, "console")),
		logger.WithJSON(strings.EqualFold(cfg.LogFormat, "json")),
	)
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("reviewd starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("timezone=%s", cfg.Timezone)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("exercise_ttl=%s", cfg.ExerciseTTL)
	log.Debug("sweep_interval=%s", cfg.SweepInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		_ = database.Close()
	}()
	store := sqlite.NewStore(database.DB)

	readyChecks := map[string]api.HealthCheck{"database": store.Ping}

	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisURL != "" {
		redisLock, err := lock.NewRedis(ctx, cfg.RedisURL, cfg.LockTTL)
		if err != nil {
			log.Error("failed to connect to redis: %v", err)
			os.Exit(1)
		}
		defer func() { _ = redisLock.Close() }()
		locker = redisLock
		readyChecks["redis"] = redisLock.Ping
		log.Info("using redis user locks")
	}

	var ev evaluator.Evaluator = evaluator.NewHeuristic()
	if cfg.GeminiAPIKey != "" {
		gemini, err := evaluator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error("failed to create gemini client: %v", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		ev = gemini
		log.Info("using gemini evaluator: model=%s", cfg.GeminiModel)
	} else {
		log.Warn("GEMINI_API_KEY not set, free-text answers use the rule-based evaluator")
	}

	seed := cfg.GeneratorSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	generator := exercise.NewGenerator(seed)
	grader := exercise.NewGrader(ev, cfg.EvaluatorTimeout)

	opts := []services.Option{services.WithLocation(cfg.Location())}
	vocabularyService := services.NewVocabularyService(store, opts...)
	exerciseService := services.NewExerciseService(store, generator, grader, locker, cfg.ExerciseTTL, opts...)

	importPool := worker.NewPool("import", cfg.ImportWorkerCount, cfg.ImportQueueSize)
	importPool.Start(ctx)
	importQueue := jobs.NewWorkerQueue(importPool, vocabularyService)

	sweeper := scheduler.New(exerciseService, cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Error("failed to start scheduler: %v", err)
		os.Exit(1)
	}

	srv := &api.Server{
		Exercises:      exerciseService,
		CheckIns:       services.NewCheckInService(store, locker, opts...),
		Dashboard:      services.NewDashboardService(store, opts...),
		Vocabulary:     vocabularyService,
		Imports:        services.NewImportService(importQueue),
		Users:          services.NewUserService(store, opts...),
		ReadyChecks:    readyChecks,
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping scheduler")
	sweeper.Stop()

	// Drain queued imports before the worker context is cancelled.
	log.Debug("stopping import pool")
	importPool.Stop()
	cancel()

	log.Info("reviewd stopped")
}
