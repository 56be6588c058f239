package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics("test")
	b := NewMetrics("test")

	a.ObserveFetch("yahoo", time.Now(), nil)
	a.ObserveFetch("yahoo", time.Now(), errors.New("boom"))
	b.ObserveSkipped("PROVIDER_ERROR")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.FetchTotal.WithLabelValues("yahoo", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FetchTotal.WithLabelValues("yahoo", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FetchTotal.WithLabelValues("yahoo", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.SkippedTotal.WithLabelValues("PROVIDER_ERROR")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("yahoo", time.Now(), nil)
		m.ObserveSkipped("X")
		m.ObserveScan(time.Now(), 3)
		m.ObserveUpload(nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("test")
	m.ObserveScan(time.Now(), 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_dashboard_upward_symbols 2")
	assert.Contains(t, string(body), "test_dashboard_scans_total 1")
}
