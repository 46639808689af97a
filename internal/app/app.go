// Package app wires the store, partner sources and services shared by the
// HTTP server and the maintctl command.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/healthcare-bi/backend/internal/config"
	"github.com/healthcare-bi/backend/internal/db"
	httpapi "github.com/healthcare-bi/backend/internal/http"
	"github.com/healthcare-bi/backend/internal/identity"
	"github.com/healthcare-bi/backend/internal/metrics"
	"github.com/healthcare-bi/backend/internal/models"
	"github.com/healthcare-bi/backend/internal/service"
	"github.com/healthcare-bi/backend/internal/source"
)

type App struct {
	Config   config.Config
	Logger   zerolog.Logger
	Store    *db.Store
	Metrics  *metrics.Registry
	Resolver *identity.Resolver
	Ingest   *service.IngestionService
	Sync     *service.CompanySyncService
}

func NewLogger(cfg config.Config, component string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return log.Level(level).With().Str("service", component).Logger()
}

// New connects to the database, applies the schema and builds the services.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	settings := cfg.SourceSettings()
	sources := map[models.Dataset]source.Source{}
	for _, dataset := range []models.Dataset{models.DatasetClinical, models.DatasetBuilding} {
		src := source.ForDataset(dataset, settings, logger.With().Str("dataset", string(dataset)).Logger())
		if _, ok := src.(*source.FixtureSource); ok {
			logger.Info().Str("dataset", string(dataset)).Msg("no API token configured, using fixture source")
		}
		sources[dataset] = src
	}

	reg := metrics.NewRegistry()
	resolver := identity.NewResolver(store, logger.With().Str("component", "identity").Logger())

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Metrics:  reg,
		Resolver: resolver,
		Ingest: &service.IngestionService{
			Store:    store,
			Sources:  sources,
			Resolver: resolver,
			Metrics:  reg,
			Logger:   logger.With().Str("component", "ingest").Logger(),
			BatchSizes: map[models.Dataset]int{
				models.DatasetClinical: cfg.ClinicalBatchSize,
				models.DatasetBuilding: cfg.BuildingBatchSize,
			},
		},
		Sync: &service.CompanySyncService{
			Store:        store,
			Synchronizer: &identity.Synchronizer{Resolver: resolver},
			Metrics:      reg,
			Logger:       logger.With().Str("component", "companies").Logger(),
		},
	}, nil
}

func (a *App) HTTPDeps() httpapi.Deps {
	return httpapi.Deps{
		Store:    a.Store,
		Ingest:   a.Ingest,
		Sync:     a.Sync,
		Resolver: a.Resolver,
		Metrics:  a.Metrics,
	}
}

func (a *App) Close() {
	a.Store.Close()
}
