package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tahiry-mg/tahiry/internal/app"
	"github.com/tahiry-mg/tahiry/internal/donnees"
	"github.com/tahiry-mg/tahiry/internal/exercice"
	"github.com/tahiry-mg/tahiry/internal/geo"
	"github.com/tahiry-mg/tahiry/internal/observability"
	"github.com/tahiry-mg/tahiry/internal/plancomptable"
	"github.com/tahiry-mg/tahiry/internal/platform/cache"
	"github.com/tahiry-mg/tahiry/internal/platform/db"
	"github.com/tahiry-mg/tahiry/internal/revenus"
	"github.com/tahiry-mg/tahiry/internal/tableau"
	"github.com/tahiry-mg/tahiry/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, tableaux served without cache", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	metrics := observability.NewMetrics()

	geoRepo := geo.NewRepository(dbpool)
	geoHandler := geo.NewHandler(logger, geoRepo)

	tableauCache := tableau.NewCache(redisClient, cfg.TableauCacheTTL, logger)

	exerciceRepo := exercice.NewRepository(dbpool)
	exerciceService := exercice.NewService(exerciceRepo, tableauCache, logger)
	exerciceHandler := exercice.NewHandler(logger, exerciceService)

	planRepo := plancomptable.NewRepository(dbpool)
	planService := plancomptable.NewService(planRepo, tableauCache, logger)
	planHandler := plancomptable.NewHandler(logger, planService)

	donneesRepo := donnees.NewRepository(dbpool)
	donneesService := donnees.NewService(donneesRepo, exerciceRepo, planRepo, tableauCache, logger)
	donneesHandler := donnees.NewHandler(logger, donneesService)

	revenusRepo := revenus.NewRepository(dbpool)
	revenusHandler := revenus.NewHandler(logger, revenusRepo)

	tableauRepo := tableau.NewRepository(dbpool, planRepo, donneesRepo, geoRepo, exerciceRepo)
	tableauService := tableau.NewService(tableauRepo, tableauCache, metrics, logger)
	tableauHandler := tableau.NewHandler(tableauService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		GeoHandler:           geoHandler,
		ExerciceHandler:      exerciceHandler,
		PlanComptableHandler: planHandler,
		DonneesHandler:       donneesHandler,
		RevenusHandler:       revenusHandler,
		TableauHandler:       tableauHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
