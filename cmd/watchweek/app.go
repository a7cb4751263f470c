package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/amaumene/watchweek/internal/announce"
	"github.com/amaumene/watchweek/internal/api"
	"github.com/amaumene/watchweek/internal/catalog"
	"github.com/amaumene/watchweek/internal/config"
	"github.com/amaumene/watchweek/internal/controllers"
	"github.com/amaumene/watchweek/internal/models"
	"github.com/amaumene/watchweek/internal/scheduler"
	"github.com/amaumene/watchweek/internal/telemetry"
	"github.com/amaumene/watchweek/internal/timewindow"
	"github.com/amaumene/watchweek/internal/utils"
)

// application is everything serve and week need, built by initializeApp
type application struct {
	cfg       *config.Config
	logger    zerolog.Logger
	schedule  *controllers.ScheduleController
	server    *api.Server
	scheduler *scheduler.Scheduler
}

func newApplication(cfg *config.Config, logger zerolog.Logger, schedule *controllers.ScheduleController, server *api.Server, sched *scheduler.Scheduler, _ tracingShutdown) *application {
	return &application{
		cfg:       cfg,
		logger:    logger,
		schedule:  schedule,
		server:    server,
		scheduler: sched,
	}
}

func provideLogger(cfg *config.Config) zerolog.Logger {
	var file *utils.FileOutput
	if cfg.LogFile != "" {
		file = &utils.FileOutput{
			Path:       cfg.LogFile,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
		}
	}
	return utils.NewLogger(cfg.LogLevel, cfg.LogFormat, file)
}

func provideDatabase(cfg *config.Config, logger zerolog.Logger) (*models.Database, func(), error) {
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info().Str("path", cfg.DatabaseFile).Msg("Database initialized")
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database")
		}
	}, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func provideWindow(cfg *config.Config) *timewindow.Window {
	return timewindow.New(cfg.DayBoundaryOffset)
}

func provideCatalog(cfg *config.Config, db *models.Database, logger zerolog.Logger) *catalog.Catalog {
	return catalog.New(db, cfg.CatalogCacheTTL, logger)
}

// provideAnnouncer returns a started webhook, or a no-op when no URL is set
func provideAnnouncer(cfg *config.Config, logger zerolog.Logger) (controllers.Announcer, func()) {
	if cfg.AnnounceWebhookURL == "" {
		logger.Info().Msg("Announcements disabled")
		return announce.Nop{}, func() {}
	}

	w := announce.NewWebhook(cfg.AnnounceWebhookURL, cfg.AnnounceRatePerSec, cfg.AnnounceMaxRetries, logger)
	w.Start(context.Background())
	logger.Info().Msg("Announcement webhook started")
	return w, w.Stop
}

type tracingShutdown func(context.Context) error

func provideTracing(cfg *config.Config, logger zerolog.Logger) (tracingShutdown, func()) {
	shutdown := telemetry.Setup("watchweek", cfg.TracingEnabled)
	if cfg.TracingEnabled {
		logger.Info().Msg("Tracing enabled")
	}
	return shutdown, func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to flush traces")
		}
	}
}
