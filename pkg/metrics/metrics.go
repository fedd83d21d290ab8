// Package metrics provides Prometheus collectors for the scoring service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recompute triggers.
const (
	TriggerOnDemand = "on_demand"
	TriggerBatch    = "batch"
)

// Manager owns every collector. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	recomputes        *prometheus.CounterVec
	recomputeFailures *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec

	batchDuration   prometheus.Histogram
	batchProcessed  prometheus.Gauge
	batchFailed     prometheus.Gauge
	batchLastUnix   prometheus.Gauge
	lockContentions prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets the registry collectors are registered on.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates the collectors on a fresh registry unless one is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cogsync",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recomputes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "recompute_total",
		Help:      "Profile recomputes by trigger and outcome",
	}, []string{"trigger", "outcome"})

	m.recomputeFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "recompute_failures_total",
		Help:      "Profile recomputes that failed",
	}, []string{"trigger"})

	m.recomputeDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "recompute_duration_seconds",
		Help:      "Duration of a single profile recompute",
		Buckets:   m.histogramBuckets,
	}, []string{"trigger"})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "batch_duration_seconds",
		Help:      "Duration of a full-population recompute",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.batchProcessed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "batch_last_processed",
		Help:      "Users processed by the last batch",
	})

	m.batchFailed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "batch_last_failed",
		Help:      "Users that failed in the last batch",
	})

	m.batchLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "batch_last_completed_unix",
		Help:      "Unix time the last batch completed",
	})

	m.lockContentions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "recompute_lock_contentions_total",
		Help:      "Recomputes rejected because another one held the user's lock",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// Registry exposes the registry for scraping and tests.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRecompute counts one recompute and its duration.
func (m *Manager) RecordRecompute(trigger string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		m.recomputeFailures.WithLabelValues(trigger).Inc()
	}
	m.recomputes.WithLabelValues(trigger, outcome).Inc()
	m.recomputeDuration.WithLabelValues(trigger).Observe(d.Seconds())
}

// RecordLockContention counts a recompute rejected by the per-user lock.
func (m *Manager) RecordLockContention() {
	if m == nil {
		return
	}
	m.lockContentions.Inc()
}

// RecordBatch records the summary of a full-population run.
func (m *Manager) RecordBatch(d time.Duration, processed, failed int) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
	m.batchProcessed.Set(float64(processed))
	m.batchFailed.Set(float64(failed))
	m.batchLastUnix.Set(float64(time.Now().Unix()))
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
