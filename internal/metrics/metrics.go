// Package metrics exposes Prometheus instruments for query handling.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the instruments registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	DatasetRows   *prometheus.GaugeVec
}

// New registers all instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		QueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvchat_queries_total",
				Help: "Total number of interpreted queries by intent and outcome",
			},
			[]string{"surface", "intent", "outcome"},
		),
		QueryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "csvchat_query_duration_seconds",
				Help:    "Time spent interpreting a query",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"surface", "intent"},
		),
		DatasetRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "csvchat_dataset_rows",
				Help: "Number of rows in the loaded dataset",
			},
			[]string{"profile"},
		),
	}
}

// ObserveQuery records one interpreted query.
func (m *Metrics) ObserveQuery(surface, intent, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(surface, intent, outcome).Inc()
	m.QueryDuration.WithLabelValues(surface, intent).Observe(d.Seconds())
}

// SetDatasetRows records the size of the loaded dataset.
func (m *Metrics) SetDatasetRows(profile string, n int) {
	if m == nil {
		return
	}
	m.DatasetRows.WithLabelValues(profile).Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
