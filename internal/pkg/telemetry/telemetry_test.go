package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Ingestion("upload", OutcomeOK, 10, 2)
	m.Ingestion("paste", OutcomeMissingColumns, 0, 0)
	m.Export("deck")
	m.ObservePipeline(time.Now())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ingestions.WithLabelValues("upload", OutcomeOK)))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.recordsKept))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.recordsDropped))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.exports.WithLabelValues("deck")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cubo_ingestions_total{outcome="missing_columns",source="paste"} 1`)
	assert.Contains(t, rec.Body.String(), "cubo_pipeline_duration_seconds_count 1")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Ingestion("upload", OutcomeOK, 1, 1)
		m.Export("deck")
		m.ObservePipeline(time.Now())
	})
}
