package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/amaumene/watchweek/internal/api/handlers"
	"github.com/amaumene/watchweek/internal/api/middleware"
	"github.com/amaumene/watchweek/internal/catalog"
	"github.com/amaumene/watchweek/internal/config"
	"github.com/amaumene/watchweek/internal/controllers"
	"github.com/amaumene/watchweek/internal/models"
)

// Server represents the HTTP server
type Server struct {
	app    *fiber.App
	addr   string
	logger zerolog.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	db *models.Database,
	cat *catalog.Catalog,
	scheduleCtrl *controllers.ScheduleController,
	listCtrl *controllers.ListController,
	cleanupCtrl *controllers.CleanupController,
	registry *prometheus.Registry,
	logger zerolog.Logger,
) *Server {
	logger = logger.With().Str("component", "http").Logger()

	app := fiber.New(fiber.Config{
		AppName:               "watchweek",
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(logger),
	})

	s := &Server{
		app:    app,
		addr:   ":" + cfg.ServerPort,
		logger: logger,
	}

	app.Use(middleware.Logging(logger))
	app.Use(recover.New())
	app.Use(cors.New())

	s.setupRoutes(cfg, db, cat, scheduleCtrl, listCtrl, cleanupCtrl, registry)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(
	cfg *config.Config,
	db *models.Database,
	cat *catalog.Catalog,
	scheduleCtrl *controllers.ScheduleController,
	listCtrl *controllers.ListController,
	cleanupCtrl *controllers.CleanupController,
	registry *prometheus.Registry,
) {
	// Health, status, metrics
	s.app.Get("/health", handlers.NewHealthHandler().Get)
	s.app.Get("/status", handlers.NewStatusHandler(db).Get)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	routes := s.app.Group("/api")

	// Catalog
	titles := handlers.NewTitleHandler(cat)
	routes.Get("/titles", titles.List)
	routes.Post("/titles", titles.Create)
	routes.Get("/titles/:id", titles.Get)

	owner := routes.Group("/owners/:owner")

	// Lists
	progress := handlers.NewProgressHandler(listCtrl)
	owner.Get("/progress", progress.List)
	owner.Put("/progress/:titleId", progress.Put)
	owner.Delete("/progress/:titleId", progress.Delete)

	// Schedule
	schedules := handlers.NewScheduleHandler(scheduleCtrl, cfg.UpcomingDays)
	owner.Get("/schedules", schedules.List)
	owner.Post("/schedules", schedules.Create)
	owner.Get("/schedules/week", schedules.Week)
	owner.Get("/schedules/history", schedules.History)
	owner.Post("/schedules/:id/complete", schedules.Complete)
	owner.Delete("/schedules/:id", schedules.Delete)

	// Orphans
	orphans := handlers.NewOrphanHandler(cleanupCtrl)
	owner.Get("/orphans", orphans.List)
	owner.Delete("/orphans", orphans.Purge)
}

// App exposes the fiber app, used by tests through app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info().Str("addr", s.addr).Msg("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}
