package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	OrdersFetched       *prometheus.CounterVec
	OrdersUpserted      *prometheus.CounterVec
	UpsertBatchFailures *prometheus.CounterVec
	RunDurationSec      *prometheus.HistogramVec
	LastRunSuccess      *prometheus.GaugeVec

	// company identity
	CompanyResolutions *prometheus.CounterVec
	CompanySync        *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	fetched := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "maint_orders_fetched_total"}, []string{"dataset"})
	upserted := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "maint_orders_upserted_total"}, []string{"dataset"})
	batchFailures := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "maint_upsert_batch_failures_total"}, []string{"dataset"})
	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maint_run_duration_seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"kind"})
	lastSuccess := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "maint_last_run_success_timestamp_seconds"}, []string{"kind"})

	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "maint_company_resolutions_total"}, []string{"outcome"})
	sync := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "maint_company_sync_total"}, []string{"result"})

	r.MustRegister(fetched, upserted, batchFailures, runDuration, lastSuccess, resolutions, sync)
	return &Registry{
		reg:                 r,
		OrdersFetched:       fetched,
		OrdersUpserted:      upserted,
		UpsertBatchFailures: batchFailures,
		RunDurationSec:      runDuration,
		LastRunSuccess:      lastSuccess,
		CompanyResolutions:  resolutions,
		CompanySync:         sync,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
