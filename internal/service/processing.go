package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthcare-bi/backend/internal/db"
	"github.com/healthcare-bi/backend/internal/identity"
	"github.com/healthcare-bi/backend/internal/metrics"
	"github.com/healthcare-bi/backend/internal/models"
	"github.com/healthcare-bi/backend/internal/source"
)

const (
	DefaultDaysBack          = 730
	DefaultClinicalBatchSize = 100
	DefaultBuildingBatchSize = 50
)

// RunStore records pipeline runs.
type RunStore interface {
	CreateRun(ctx context.Context, kind string) (string, error)
	FinishRun(ctx context.Context, runID string, status string, summary []byte) error
}

type OrderStore interface {
	RunStore
	UpsertOrders(ctx context.Context, dataset models.Dataset, orders []models.MaintenanceOrder) (int64, error)
}

type IngestionService struct {
	Store    OrderStore
	Sources  map[models.Dataset]source.Source
	Resolver *identity.Resolver
	Metrics  *metrics.Registry
	Logger   zerolog.Logger

	BatchSizes map[models.Dataset]int
	Now        func() time.Time
}

type IngestSummary struct {
	Dataset          models.Dataset   `json:"dataset"`
	From             time.Time        `json:"from"`
	To               time.Time        `json:"to"`
	Fetched          int              `json:"fetched"`
	Dropped          int              `json:"dropped"`
	EquipmentMerged  int              `json:"equipment_merged"`
	Resolved         int              `json:"resolved"`
	Unresolved       int              `json:"unresolved"`
	CompaniesCreated int              `json:"companies_created"`
	Upserted         int64            `json:"upserted"`
	FailedRows       int              `json:"failed_rows"`
	BatchFailures    int              `json:"batch_failures"`
	Events           []map[string]any `json:"events"`
}

func runKind(dataset models.Dataset) string {
	if dataset == models.DatasetBuilding {
		return db.RunKindIngestBuilding
	}
	return db.RunKindIngestClinical
}

// Run pulls the last daysBack days of orders for dataset, cleans them,
// attaches company ids and upserts them in batches. The run is recorded in
// the runs table whatever the outcome.
func (s *IngestionService) Run(ctx context.Context, dataset models.Dataset, daysBack int) (IngestSummary, error) {
	if !dataset.Valid() {
		return IngestSummary{}, fmt.Errorf("unknown dataset %q", dataset)
	}
	var summary IngestSummary
	err := recordRun(ctx, s.Store, s.Metrics, s.Logger, runKind(dataset), func() (any, error) {
		var err error
		summary, err = s.ingest(ctx, dataset, daysBack)
		return summary, err
	})
	return summary, err
}

func (s *IngestionService) ingest(ctx context.Context, dataset models.Dataset, daysBack int) (IngestSummary, error) {
	log := s.Logger.With().Str("dataset", string(dataset)).Logger()
	summary := IngestSummary{Dataset: dataset}

	src, ok := s.Sources[dataset]
	if !ok {
		return summary, fmt.Errorf("no source configured for %s", dataset)
	}
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	summary.To = now().UTC()
	summary.From = summary.To.AddDate(0, 0, -daysBack)

	log.Info().Time("from", summary.From).Time("to", summary.To).Msg("fetching orders")
	orders, err := src.FetchOrders(ctx, summary.From, summary.To)
	if err != nil {
		return summary, err
	}
	summary.Fetched = len(orders)
	if s.Metrics != nil {
		s.Metrics.OrdersFetched.WithLabelValues(string(dataset)).Add(float64(len(orders)))
	}
	summary.Events = append(summary.Events, event("fetch", "Orders fetched", len(orders)))
	if len(orders) == 0 {
		log.Warn().Msg("source returned no orders")
		return summary, nil
	}

	orders, summary.Dropped = DedupeOrders(orders)

	if dataset == models.DatasetClinical {
		equipment, err := src.FetchEquipment(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("equipment fetch failed, continuing without equipment attributes")
		} else {
			summary.EquipmentMerged = MergeEquipment(orders, equipment)
		}
		summary.Events = append(summary.Events, event("equipment_merge", "Equipment attributes merged", summary.EquipmentMerged))
	}

	if err := s.Resolver.Refresh(ctx); err != nil {
		return summary, fmt.Errorf("load companies: %w", err)
	}
	s.resolveCompanies(ctx, dataset, orders, &summary)
	summary.Events = append(summary.Events, event("company_resolution", "Company ids attached", summary.Resolved))

	s.upsert(ctx, log, dataset, orders, &summary)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	summary.Events = append(summary.Events, event("db_save", "Orders saved", int(summary.Upserted)))

	log.Info().
		Int("fetched", summary.Fetched).
		Int64("upserted", summary.Upserted).
		Int("failed_rows", summary.FailedRows).
		Int("unresolved", summary.Unresolved).
		Msg("ingestion completed")
	return summary, nil
}

type companyLabel struct {
	display string
	legal   string
}

func (s *IngestionService) resolveCompanies(ctx context.Context, dataset models.Dataset, orders []models.MaintenanceOrder, summary *IngestSummary) {
	seen := map[companyLabel]identity.Result{}
	for i := range orders {
		label := companyLabel{display: orders[i].Empresa}
		if dataset == models.DatasetBuilding {
			label.legal = orders[i].RazaoSocial
		}
		res, ok := seen[label]
		if !ok {
			res = s.Resolver.ResolveLegal(ctx, label.display, label.legal)
			seen[label] = res
			if res.Outcome == identity.Created {
				summary.CompaniesCreated++
			}
			if s.Metrics != nil {
				s.Metrics.CompanyResolutions.WithLabelValues(res.Outcome.String()).Inc()
			}
		}
		if !res.OK() {
			orders[i].CompanyID = nil
			summary.Unresolved++
			continue
		}
		id := res.ID
		orders[i].CompanyID = &id
		summary.Resolved++
	}
}

// upsert writes orders batch by batch. A failed batch is retried one row at
// a time so a single bad record does not sink its neighbours.
func (s *IngestionService) upsert(ctx context.Context, log zerolog.Logger, dataset models.Dataset, orders []models.MaintenanceOrder, summary *IngestSummary) {
	size := s.BatchSizes[dataset]
	if size <= 0 {
		size = DefaultClinicalBatchSize
		if dataset == models.DatasetBuilding {
			size = DefaultBuildingBatchSize
		}
	}
	batches := Batches(orders, size)
	for i, batch := range batches {
		if ctx.Err() != nil {
			return
		}
		n, err := s.Store.UpsertOrders(ctx, dataset, batch)
		if err == nil {
			summary.Upserted += n
			s.countUpserted(dataset, n)
			log.Debug().Int("batch", i+1).Int("batches", len(batches)).Int64("rows", n).Msg("batch upserted")
			continue
		}

		summary.BatchFailures++
		if s.Metrics != nil {
			s.Metrics.UpsertBatchFailures.WithLabelValues(string(dataset)).Inc()
		}
		log.Error().Err(err).Int("batch", i+1).Msg("batch upsert failed, retrying row by row")
		for _, o := range batch {
			n, err := s.Store.UpsertOrders(ctx, dataset, []models.MaintenanceOrder{o})
			if err != nil {
				summary.FailedRows++
				log.Error().Err(err).Str("os", o.OS).Msg("order upsert failed")
				continue
			}
			summary.Upserted += n
			s.countUpserted(dataset, n)
		}
	}
}

func (s *IngestionService) countUpserted(dataset models.Dataset, n int64) {
	if s.Metrics != nil {
		s.Metrics.OrdersUpserted.WithLabelValues(string(dataset)).Add(float64(n))
	}
}

func event(kind, message string, count int) map[string]any {
	return map[string]any{
		"type":    kind,
		"message": message,
		"count":   count,
		"time":    time.Now().UTC(),
	}
}

// recordRun wraps fn in a runs-table entry and run metrics. A failure to
// finish the run is logged but does not override fn's result.
func recordRun(ctx context.Context, store RunStore, reg *metrics.Registry, logger zerolog.Logger, kind string, fn func() (any, error)) error {
	requestID := RequestID(ctx)
	if requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}
	runID, err := store.CreateRun(ctx, kind)
	if err != nil {
		logger.Error().Err(err).Str("kind", kind).Msg("failed to create run")
		return fmt.Errorf("create run: %w", err)
	}
	start := time.Now()
	result, err := fn()

	status := db.RunStatusSucceeded
	if err != nil {
		status = db.RunStatusFailed
		logger.Error().Err(err).Str("kind", kind).Str("run_id", runID).Msg("run failed")
	}
	payload := map[string]any{"result": result}
	if err != nil {
		payload["error"] = err.Error()
	}
	if requestID != "" {
		payload["request_id"] = requestID
	}
	b, _ := json.Marshal(payload)
	// The caller's context may already be cancelled; the run row should still close.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if finishErr := store.FinishRun(finishCtx, runID, status, b); finishErr != nil {
		logger.Error().Err(finishErr).Str("run_id", runID).Msg("failed to finish run")
	}

	if reg != nil {
		reg.RunDurationSec.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err == nil {
			reg.LastRunSuccess.WithLabelValues(kind).SetToCurrentTime()
		}
	}
	return err
}
