package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/healthcare-bi/backend/internal/db"
	"github.com/healthcare-bi/backend/internal/identity"
	"github.com/healthcare-bi/backend/internal/metrics"
	"github.com/healthcare-bi/backend/internal/models"
)

type PairStore interface {
	RunStore
	DistinctCompanyPairs(ctx context.Context, dataset models.Dataset) ([]models.CompanyPair, error)
}

// CompanySyncService reconciles the companies table with the company names
// found on building orders.
type CompanySyncService struct {
	Store        PairStore
	Synchronizer *identity.Synchronizer
	Metrics      *metrics.Registry
	Logger       zerolog.Logger
}

func (s *CompanySyncService) Run(ctx context.Context) (identity.SyncSummary, error) {
	var summary identity.SyncSummary
	err := recordRun(ctx, s.Store, s.Metrics, s.Logger, db.RunKindSyncCompanies, func() (any, error) {
		pairs, err := s.Store.DistinctCompanyPairs(ctx, models.DatasetBuilding)
		if err != nil {
			return summary, fmt.Errorf("load company pairs: %w", err)
		}
		s.Logger.Info().Int("pairs", len(pairs)).Msg("company pairs loaded")
		summary, err = s.Synchronizer.Sync(ctx, pairs)
		if s.Metrics != nil {
			s.Metrics.CompanySync.WithLabelValues("created").Add(float64(summary.Created))
			s.Metrics.CompanySync.WithLabelValues("updated").Add(float64(summary.Updated))
			s.Metrics.CompanySync.WithLabelValues("unchanged").Add(float64(summary.Unchanged))
			s.Metrics.CompanySync.WithLabelValues("failed").Add(float64(summary.Failed))
		}
		return summary, err
	})
	return summary, err
}
