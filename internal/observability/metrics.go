// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Collection metrics
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	SkippedTotal  *prometheus.CounterVec

	// Scan metrics
	ScansTotal      prometheus.Counter
	ScanDuration    prometheus.Histogram
	UpwardSymbols   prometheus.Gauge
	LastScanSeconds prometheus.Gauge

	// Upload metrics
	UploadsTotal *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "stockpulse"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "fetch_total",
			Help:      "Total number of provider fetches by source and outcome",
		}, []string{"source", "outcome"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "fetch_duration_seconds",
			Help:      "Provider fetch latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		SkippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "skipped_symbols_total",
			Help:      "Total number of symbols left out of a result by error kind",
		}, []string{"kind"}),

		ScansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "scans_total",
			Help:      "Total number of dashboard refreshes",
		}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a dashboard refresh",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		UpwardSymbols: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "upward_symbols",
			Help:      "Number of symbols in an upward trend at the last refresh",
		}),
		LastScanSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "last_scan_timestamp_seconds",
			Help:      "Unix time of the last completed refresh",
		}),

		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "reports_total",
			Help:      "Total number of uploaded reports by outcome",
		}, []string{"outcome"}),
	}
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one provider call.
func (m *Metrics) ObserveFetch(source string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FetchTotal.WithLabelValues(source, outcome).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
}

// ObserveSkipped counts a symbol left out of a result.
func (m *Metrics) ObserveSkipped(kind string) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(kind).Inc()
}

// ObserveScan records a completed refresh.
func (m *Metrics) ObserveScan(started time.Time, upward int) {
	if m == nil {
		return
	}
	m.ScansTotal.Inc()
	m.ScanDuration.Observe(time.Since(started).Seconds())
	m.UpwardSymbols.Set(float64(upward))
	m.LastScanSeconds.Set(float64(time.Now().Unix()))
}

// ObserveUpload counts an uploaded report.
func (m *Metrics) ObserveUpload(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UploadsTotal.WithLabelValues(outcome).Inc()
}
