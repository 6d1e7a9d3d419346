package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	mintMetricsOnce sync.Once
	mintRegistry    *MintMetrics
)

// ModuleMetrics returns the lazily-initialised module metrics registry used to
// record RPC module activity.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dropchain",
				Subsystem: "module",
				Name:      "requests_total",
				Help:      "Total JSON-RPC module requests segmented by module and method.",
			}, []string{"module", "method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dropchain",
				Subsystem: "module",
				Name:      "errors_total",
				Help:      "Total JSON-RPC module errors segmented by module, method, and error code.",
			}, []string{"module", "method", "code"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "dropchain",
				Subsystem: "module",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC module handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dropchain",
				Subsystem: "module",
				Name:      "throttles_total",
				Help:      "Count of module requests rejected due to throttling policies.",
			}, []string{"module", "reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of a module request. code is the JSON-RPC error
// code, or zero on success.
func (m *moduleMetrics) Observe(module, method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if code != 0 {
		outcome = "error"
		m.errors.WithLabelValues(module, method, fmt.Sprintf("%d", code)).Inc()
	}
	m.requests.WithLabelValues(module, method, outcome).Inc()
	m.latency.WithLabelValues(module, method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter for the supplied module and
// reason. Reasons should be stable strings such as "rate_limit".
func (m *moduleMetrics) RecordThrottle(module, reason string) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(module, reason).Inc()
}

// MintMetrics tracks calls to the external NFT mint service.
type MintMetrics struct {
	dispatched prometheus.Counter
	outcomes   *prometheus.CounterVec
	latency    prometheus.Histogram
	inflight   prometheus.Gauge
}

// Mint returns the singleton mint metrics registry.
func Mint() *MintMetrics {
	mintMetricsOnce.Do(func() {
		mintRegistry = &MintMetrics{
			dispatched: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dropchain",
				Subsystem: "mint",
				Name:      "dispatched_total",
				Help:      "Mint requests handed to the worker pool.",
			}),
			outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dropchain",
				Subsystem: "mint",
				Name:      "outcomes_total",
				Help:      "Mint results segmented by outcome.",
			}, []string{"outcome"}),
			latency: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "dropchain",
				Subsystem: "mint",
				Name:      "call_duration_seconds",
				Help:      "Latency of calls to the mint service.",
				Buckets:   prometheus.DefBuckets,
			}),
			inflight: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "dropchain",
				Subsystem: "mint",
				Name:      "inflight",
				Help:      "Mint calls currently executing.",
			}),
		}
		prometheus.MustRegister(
			mintRegistry.dispatched,
			mintRegistry.outcomes,
			mintRegistry.latency,
			mintRegistry.inflight,
		)
	})
	return mintRegistry
}

func (m *MintMetrics) RecordDispatch() {
	if m == nil {
		return
	}
	m.dispatched.Inc()
}

// Begin marks a mint call as started and returns the function that records its
// completion.
func (m *MintMetrics) Begin() func(outcome string) {
	if m == nil {
		return func(string) {}
	}
	start := time.Now()
	m.inflight.Inc()
	return func(outcome string) {
		m.inflight.Dec()
		m.latency.Observe(time.Since(start).Seconds())
		if outcome == "" {
			outcome = "unknown"
		}
		m.outcomes.WithLabelValues(outcome).Inc()
	}
}
