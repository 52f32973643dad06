package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	DatasetRows     *prometheus.GaugeVec
	SnapshotsTotal  prometheus.Counter
}

// NewMetrics creates and registers the application metrics on a
// dedicated registry, keeping the default registry untouched for tests.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shoplens",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shoplens",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "shoplens",
			Subsystem: "dataset",
			Name:      "rows",
			Help:      "Rows held in memory, by source table.",
		}, []string{"table"}),
		SnapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shoplens",
			Subsystem: "dashboard",
			Name:      "snapshots_total",
			Help:      "Dashboard snapshots computed.",
		}),
	}

	registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.DatasetRows, m.SnapshotsTotal)

	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDatasetSize records the in-memory row counts per source table.
func (m *Metrics) ObserveDatasetSize(counts map[string]int) {
	for table, n := range counts {
		m.DatasetRows.WithLabelValues(table).Set(float64(n))
	}
}
