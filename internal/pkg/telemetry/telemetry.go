// Package telemetry exposes pipeline counters in Prometheus format.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingestion outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeReadError      = "read_error"
	OutcomeMissingColumns = "missing_columns"
)

// Metrics holds the service collectors on a private registry so several
// instances (one per test) never collide.
type Metrics struct {
	registry *prometheus.Registry

	ingestions       *prometheus.CounterVec
	recordsKept      prometheus.Counter
	recordsDropped   prometheus.Counter
	exports          *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.ingestions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cubo",
		Name:      "ingestions_total",
		Help:      "Spreadsheet uploads and pastes by source and outcome",
	}, []string{"source", "outcome"})
	m.recordsKept = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cubo",
		Name:      "records_normalized_total",
		Help:      "Rows turned into canonical visit records",
	})
	m.recordsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cubo",
		Name:      "records_dropped_total",
		Help:      "Rows dropped because the invite date could not be read",
	})
	m.exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cubo",
		Name:      "exports_total",
		Help:      "Generated exports by kind",
	}, []string{"kind"})
	m.pipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cubo",
		Name:      "pipeline_duration_seconds",
		Help:      "Time to build one dashboard view",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	m.registry.MustRegister(m.ingestions, m.recordsKept, m.recordsDropped, m.exports, m.pipelineDuration)
	return m
}

// Ingestion records one ingestion attempt.
func (m *Metrics) Ingestion(source, outcome string, kept, dropped int) {
	if m == nil {
		return
	}
	m.ingestions.WithLabelValues(source, outcome).Inc()
	m.recordsKept.Add(float64(kept))
	m.recordsDropped.Add(float64(dropped))
}

// Export records one generated export.
func (m *Metrics) Export(kind string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind).Inc()
}

// ObservePipeline records how long one dashboard build took.
func (m *Metrics) ObservePipeline(start time.Time) {
	if m == nil {
		return
	}
	m.pipelineDuration.Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
