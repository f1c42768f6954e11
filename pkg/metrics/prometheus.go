// Package metrics provides Prometheus metrics for the pundit squad service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// LLM collaborator metrics
	llmCalls     *prometheus.CounterVec
	llmErrors    *prometheus.CounterVec
	llmExhausted prometheus.Counter
	llmLatency   *prometheus.HistogramVec

	// Pipeline quality metrics
	expertBatchFallbacks *prometheus.CounterVec
	squadFallbacks       *prometheus.CounterVec
	lockedCandidates     prometheus.Histogram
	candidatePoolSize    prometheus.Gauge
	pipelineDuration     prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pundit",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.llmCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "llm_calls_total",
		Help:      "Total number of upstream text-generation calls by model",
	}, []string{"model"})

	m.llmErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "llm_errors_total",
		Help:      "Total number of failed text-generation calls by model",
	}, []string{"model"})

	m.llmExhausted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "llm_cascade_exhausted_total",
		Help:      "Total number of calls where every model and key failed",
	})

	m.llmLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "llm_latency_milliseconds",
		Help:      "Histogram of successful text-generation latency in milliseconds",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	}, []string{"model"})

	m.expertBatchFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "expert_batch_fallbacks_total",
		Help:      "Total number of expert batches that fell back to neutral distributions",
	}, []string{"persona"})

	m.squadFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "squad_fallbacks_total",
		Help:      "Total number of squads built by the deterministic fallback, by reason",
	}, []string{"reason"})

	m.lockedCandidates = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "locked_candidates",
		Help:      "Histogram of candidates locked by consensus per request",
		Buckets:   []float64{0, 1, 2, 3, 4, 5, 7, 10, 15},
	})

	m.candidatePoolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidate_pool_size",
		Help:      "Size of the candidate pool used by the last request",
	})

	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pipeline_duration_milliseconds",
		Help:      "Histogram of end-to-end squad generation duration in milliseconds",
		Buckets:   []float64{100, 500, 1000, 5000, 10000, 30000, 60000, 120000},
	})
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordLLMCall increments the upstream call counter for a model.
func RecordLLMCall(model string) {
	globalManager.llmCalls.WithLabelValues(model).Inc()
}

// RecordLLMError increments the upstream error counter for a model.
func RecordLLMError(model string) {
	globalManager.llmErrors.WithLabelValues(model).Inc()
}

// RecordLLMExhausted increments the cascade-exhausted counter.
func RecordLLMExhausted() {
	globalManager.llmExhausted.Inc()
}

// RecordLLMLatency records successful call latency for a model.
func RecordLLMLatency(model string, latencyMs float64) {
	globalManager.llmLatency.WithLabelValues(model).Observe(latencyMs)
}

// RecordExpertBatchFallback increments the neutral-fallback counter for a persona.
func RecordExpertBatchFallback(persona string) {
	globalManager.expertBatchFallbacks.WithLabelValues(persona).Inc()
}

// RecordSquadFallback increments the fallback-squad counter for a reason.
func RecordSquadFallback(reason string) {
	globalManager.squadFallbacks.WithLabelValues(reason).Inc()
}

// RecordLockedCandidates records how many candidates consensus locked.
func RecordLockedCandidates(count int) {
	globalManager.lockedCandidates.Observe(float64(count))
}

// UpdateCandidatePoolSize sets the candidate pool size gauge.
func UpdateCandidatePoolSize(size int) {
	globalManager.candidatePoolSize.Set(float64(size))
}

// RecordPipelineDuration records end-to-end generation duration.
func RecordPipelineDuration(durationMs float64) {
	globalManager.pipelineDuration.Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
