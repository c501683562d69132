// Package metrics provides Prometheus metrics for the swipedeck engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - the swipe funnel
	swipesSubmitted    *prometheus.CounterVec
	swipeOutcomes      *prometheus.CounterVec
	matchesTotal       prometheus.Counter
	swipeSubmitLatency prometheus.Histogram

	// Gesture Metrics
	gestureCommits *prometheus.CounterVec
	gestureReturns prometheus.Counter

	// Quota / Entitlement Metrics
	quotaRemaining prometheus.Gauge
	quotaDenials   prometheus.Counter
	paywallViews   *prometheus.CounterVec

	// Deck Metrics
	deckSize         prometheus.Gauge
	deckRefills      prometheus.Counter
	deckRefillErrors prometheus.Counter
	cardsFetched     prometheus.Counter
	cardsDuplicate   prometheus.Counter

	// Match Presentation Metrics
	bannersShown prometheus.Counter
	modalsShown  prometheus.Counter

	// Backend Client Metrics
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	breakerState    prometheus.Gauge

	// Queue Metrics - decision queue performance
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics - submitter performance
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP Performance Metrics - facade endpoints
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "swipedeck",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics - the swipe funnel
	m.swipesSubmitted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "swipes_submitted_total",
			Help:      "Total number of swipe decisions submitted, by direction",
		},
		[]string{"direction"},
	)

	m.swipeOutcomes = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "swipe_outcomes_total",
			Help:      "Total number of classified swipe submission outcomes",
		},
		[]string{"outcome"},
	)

	m.matchesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_total",
		Help:      "Total number of mutual matches returned by the backend",
	})

	m.swipeSubmitLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "swipe_submit_latency_milliseconds",
		Help:      "Histogram of swipe submission latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Gesture Metrics
	m.gestureCommits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "gesture_commits_total",
			Help:      "Total number of committed gestures, by direction",
		},
		[]string{"direction"},
	)

	m.gestureReturns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gesture_returns_total",
		Help:      "Total number of drags released below the commit threshold",
	})

	// Quota / Entitlement Metrics
	m.quotaRemaining = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quota_remaining",
		Help:      "Remaining free swipes for the session account",
	})

	m.quotaDenials = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quota_denials_total",
		Help:      "Total number of submissions denied by the daily swipe quota",
	})

	m.paywallViews = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "paywall_views_total",
			Help:      "Total number of paywall presentations, by denied feature",
		},
		[]string{"feature"},
	)

	// Deck Metrics
	m.deckSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deck_size",
		Help:      "Current number of cards queued in the deck",
	})

	m.deckRefills = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deck_refills_total",
		Help:      "Total number of discovery refill fetches",
	})

	m.deckRefillErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deck_refill_errors_total",
		Help:      "Total number of failed discovery refill fetches",
	})

	m.cardsFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cards_fetched_total",
		Help:      "Total number of candidate cards returned by discovery",
	})

	m.cardsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cards_duplicate_total",
		Help:      "Total number of fetched cards dropped as duplicates or already seen",
	})

	// Match Presentation Metrics
	m.bannersShown = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_banners_shown_total",
		Help:      "Total number of match banners presented",
	})

	m.modalsShown = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_modals_shown_total",
		Help:      "Total number of match celebration modals presented",
	})

	// Backend Client Metrics
	m.backendRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "backend_requests_total",
			Help:      "Total number of backend API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	m.backendLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "backend_request_latency_milliseconds",
			Help:      "Backend API request latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint"},
	)

	m.breakerState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_breaker_state",
		Help:      "Circuit breaker state for the backend client (0=closed, 1=half-open, 2=open)",
	})

	// Queue Metrics - decision queue performance
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the decision queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum decision queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Decision queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of decisions enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of decisions dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue errors",
	})

	m.queueProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_processing_latency_milliseconds",
		Help:      "Decision queue processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Worker Metrics - submitter performance
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Configured number of submitter workers",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active submitter workers",
	})

	m.workerIdleCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_idle_count",
		Help:      "Number of idle submitter workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Submitter worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of submitter worker errors",
	})

	// HTTP Performance Metrics - facade endpoints
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of operations that resulted in errors",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordSwipeSubmitted increments the submitted swipes counter for a direction.
func RecordSwipeSubmitted(direction string) {
	globalManager.swipesSubmitted.WithLabelValues(direction).Inc()
}

// RecordSwipeOutcome increments the outcome counter for a classified result.
func RecordSwipeOutcome(outcome string) {
	globalManager.swipeOutcomes.WithLabelValues(outcome).Inc()
}

// RecordMatch increments the matches counter.
func RecordMatch() {
	globalManager.matchesTotal.Inc()
}

// RecordSwipeSubmitLatency records swipe submission latency in milliseconds.
func RecordSwipeSubmitLatency(latencyMs float64) {
	globalManager.swipeSubmitLatency.Observe(latencyMs)
}

// RecordGestureCommit increments the committed gestures counter for a direction.
func RecordGestureCommit(direction string) {
	globalManager.gestureCommits.WithLabelValues(direction).Inc()
}

// RecordGestureReturn increments the below-threshold release counter.
func RecordGestureReturn() {
	globalManager.gestureReturns.Inc()
}

// UpdateQuotaRemaining sets the remaining free swipe allowance.
func UpdateQuotaRemaining(remaining int) {
	globalManager.quotaRemaining.Set(float64(remaining))
}

// RecordQuotaDenial increments the quota denial counter.
func RecordQuotaDenial() {
	globalManager.quotaDenials.Inc()
}

// RecordPaywallView increments the paywall views counter for a feature.
func RecordPaywallView(feature string) {
	globalManager.paywallViews.WithLabelValues(feature).Inc()
}

// UpdateDeckSize sets the current deck size.
func UpdateDeckSize(size int) {
	globalManager.deckSize.Set(float64(size))
}

// RecordDeckRefill increments the refill counter.
func RecordDeckRefill() {
	globalManager.deckRefills.Inc()
}

// RecordDeckRefillError increments the refill error counter.
func RecordDeckRefillError() {
	globalManager.deckRefillErrors.Inc()
}

// RecordCardsFetched adds to the fetched cards counter.
func RecordCardsFetched(n int) {
	globalManager.cardsFetched.Add(float64(n))
}

// RecordCardDuplicate increments the duplicate cards counter.
func RecordCardDuplicate() {
	globalManager.cardsDuplicate.Inc()
}

// RecordBannerShown increments the banner presentation counter.
func RecordBannerShown() {
	globalManager.bannersShown.Inc()
}

// RecordModalShown increments the modal presentation counter.
func RecordModalShown() {
	globalManager.modalsShown.Inc()
}

// RecordBackendRequest records one backend API call by endpoint and status.
func RecordBackendRequest(endpoint, status string) {
	globalManager.backendRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordBackendLatency records backend request latency in milliseconds.
func RecordBackendLatency(endpoint string, latencyMs float64) {
	globalManager.backendLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// UpdateBreakerState sets the circuit breaker state gauge.
func UpdateBreakerState(state int) {
	globalManager.breakerState.Set(float64(state))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the per-component error counter.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType increments the per-type error counter.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments the per-endpoint error counter.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause observation.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used for all metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
