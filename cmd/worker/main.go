package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tahiry-mg/tahiry/internal/app"
	"github.com/tahiry-mg/tahiry/internal/donnees"
	"github.com/tahiry-mg/tahiry/internal/exercice"
	"github.com/tahiry-mg/tahiry/internal/geo"
	"github.com/tahiry-mg/tahiry/internal/plancomptable"
	"github.com/tahiry-mg/tahiry/internal/platform/cache"
	"github.com/tahiry-mg/tahiry/internal/platform/db"
	"github.com/tahiry-mg/tahiry/internal/tableau"
	"github.com/tahiry-mg/tahiry/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	geoRepo := geo.NewRepository(pool)
	exerciceRepo := exercice.NewRepository(pool)
	planRepo := plancomptable.NewRepository(pool)
	donneesRepo := donnees.NewRepository(pool)

	tableauCache := tableau.NewCache(redisClient, cfg.TableauCacheTTL, logger)
	tableauRepo := tableau.NewRepository(pool, planRepo, donneesRepo, geoRepo, exerciceRepo)
	tableauService := tableau.NewService(tableauRepo, tableauCache, nil, logger)

	warmupJob := jobs.NewTableauWarmupJob(tableauService, pool, logger, nil)

	// Nightly warmup of the current fiscal year so morning consultations
	// are served from cache.
	warmupTask, err := jobs.NewTableauWarmupTask(jobs.TableauWarmupPayload{
		ExerciceAnnee: time.Now().UTC().Year(),
	})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTableauWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
