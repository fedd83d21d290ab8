package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRecompute(t *testing.T) {
	m := NewManager()

	m.RecordRecompute(TriggerBatch, 20*time.Millisecond, nil)
	m.RecordRecompute(TriggerBatch, 30*time.Millisecond, errors.New("boom"))
	m.RecordRecompute(TriggerOnDemand, 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputes.WithLabelValues(TriggerBatch, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputes.WithLabelValues(TriggerBatch, "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputeFailures.WithLabelValues(TriggerBatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputeFailures.WithLabelValues(TriggerOnDemand)))
}

func TestRecordBatch(t *testing.T) {
	m := NewManager(WithNamespace("test"))

	m.RecordBatch(3*time.Second, 12, 2)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.batchProcessed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.batchFailed))
	assert.Greater(t, testutil.ToFloat64(m.batchLastUnix), 0.0)
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.RecordRecompute(TriggerBatch, time.Second, nil)
		m.RecordBatch(time.Second, 1, 0)
		m.RecordLockContention()
		m.RecordHTTPRequest("/health", http.MethodGet, 200, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestHandler(t *testing.T) {
	m := NewManager()
	m.RecordRecompute(TriggerOnDemand, time.Millisecond, errors.New("boom"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cogsync_recompute_failures_total{trigger="on_demand"} 1`)
}
