//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amaumene/watchweek/internal/api"
	"github.com/amaumene/watchweek/internal/catalog"
	"github.com/amaumene/watchweek/internal/config"
	"github.com/amaumene/watchweek/internal/controllers"
	"github.com/amaumene/watchweek/internal/metrics"
	"github.com/amaumene/watchweek/internal/models"
	"github.com/amaumene/watchweek/internal/scheduler"
)

var storageSet = wire.NewSet(
	provideDatabase,
	provideCatalog,
	wire.Bind(new(controllers.ScheduleDB), new(*models.Database)),
	wire.Bind(new(controllers.ListDB), new(*models.Database)),
	wire.Bind(new(controllers.OrphanDB), new(*models.Database)),
	wire.Bind(new(controllers.TitleLookup), new(*catalog.Catalog)),
)

var controllerSet = wire.NewSet(
	provideWindow,
	provideAnnouncer,
	controllers.NewRecurrenceResolver,
	controllers.NewScheduleController,
	controllers.NewListController,
	controllers.NewCleanupController,
	wire.Bind(new(scheduler.Sweeper), new(*controllers.CleanupController)),
)

var observabilitySet = wire.NewSet(
	provideLogger,
	provideRegistry,
	provideTracing,
	metrics.New,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
)

func initializeApp(cfg *config.Config) (*application, func(), error) {
	wire.Build(
		observabilitySet,
		storageSet,
		controllerSet,
		api.NewServer,
		scheduler.NewScheduler,
		newApplication,
	)
	return nil, nil, nil
}
