// Package metrics provides Prometheus metrics for the stroke scoring service.
package metrics

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Subscore label values.
const (
	SubscoreDeviation  = "deviation"
	SubscoreSmoothness = "smoothness"
	SubscoreCompletion = "completion"
	SubscoreOverall    = "overall"
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring
	strokesScored    *prometheus.CounterVec
	subscores        *prometheus.HistogramVec
	strokePoints     prometheus.Histogram
	scoringLatency   prometheus.Histogram
	scoringErrors    prometheus.Counter
	smoothRequests   prometheus.Counter
	smoothingLatency prometheus.Histogram

	// Batches
	batchSize     prometheus.Histogram
	batchTimeouts prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// global pairs the registry served at /metrics with the manager the
// package-level recorders write to.
type global struct {
	registry *prometheus.Registry
	manager  *Manager
}

var current atomic.Pointer[global] //nolint:gochecknoglobals // package-level recorders

func init() {
	Configure()
}

// Configure replaces the package-level manager with one built from opts on a
// fresh registry and returns that registry. Collectors recorded before the
// call are discarded, so it belongs at process start.
func Configure(opts ...Option) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	all := append(append(make([]Option, 0, len(opts)+1), opts...), WithPrometheusRegistry(registry))
	current.Store(&global{registry: registry, manager: NewManager(all...)})
	return registry
}

func globalManager() *Manager {
	return current.Load().manager
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tracescore",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		scoreBuckets:     prometheus.LinearBuckets(10, 10, 10),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.strokesScored = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "strokes_scored_total",
		Help: "Completed strokes scored, by call mode and penalty flag",
	}, []string{"mode", "penalty"})
	m.subscores = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "subscore",
		Help:    "Distribution of returned scores by metric",
		Buckets: m.scoreBuckets,
	}, []string{"metric"})
	m.strokePoints = m.histogram("stroke_points", "Number of points per scored stroke", prometheus.ExponentialBuckets(4, 2, 11))
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Time spent scoring one stroke", m.histogramBuckets)
	m.scoringErrors = m.counter("scoring_errors_total", "Attempts rejected or failed during scoring")
	m.smoothRequests = m.counter("smooth_requests_total", "Smoothing passes executed")
	m.smoothingLatency = m.histogram("smoothing_latency_microseconds", "Time spent in one smoothing pass",
		prometheus.ExponentialBuckets(1, 4, 8))

	m.batchSize = m.histogram("batch_size", "Attempts per batch request", prometheus.ExponentialBuckets(1, 2, 10))
	m.batchTimeouts = m.counter("batch_timeouts_total", "Batches that did not finish before their deadline")

	m.queueSize = m.gauge("queue_size", "Attempts waiting in the scoring queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Attempts enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Attempts dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue attempts rejected")

	m.workerCount = m.gauge("worker_count", "Scoring workers running")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time from dequeue to delivered result", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Results a worker failed to deliver")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_by_component_total",
		Help: "Errors by component and error type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100})
}

// RecordStrokeScored counts one scored stroke and observes its length.
func RecordStrokeScored(mode string, points int, penalty bool) {
	globalManager().strokesScored.WithLabelValues(mode, strconv.FormatBool(penalty)).Inc()
	globalManager().strokePoints.Observe(float64(points))
}

// RecordSubscores observes the four returned scores.
func RecordSubscores(deviation, smoothness, completion, overall float64) {
	globalManager().subscores.WithLabelValues(SubscoreDeviation).Observe(deviation)
	globalManager().subscores.WithLabelValues(SubscoreSmoothness).Observe(smoothness)
	globalManager().subscores.WithLabelValues(SubscoreCompletion).Observe(completion)
	globalManager().subscores.WithLabelValues(SubscoreOverall).Observe(overall)
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager().scoringLatency.Observe(latencyMs)
}

// RecordScoringError counts an attempt that could not be scored.
func RecordScoringError() {
	globalManager().scoringErrors.Inc()
}

// RecordSmoothing counts one smoothing pass and its latency in microseconds.
func RecordSmoothing(latencyUs float64) {
	globalManager().smoothRequests.Inc()
	globalManager().smoothingLatency.Observe(latencyUs)
}

// RecordBatch observes the size of a batch request.
func RecordBatch(size int) {
	globalManager().batchSize.Observe(float64(size))
}

// RecordBatchTimeout counts a batch that hit its deadline.
func RecordBatchTimeout() {
	globalManager().batchTimeouts.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager().queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager().queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager().queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an accepted enqueue.
func RecordQueueEnqueue() {
	globalManager().queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager().queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager().queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager().workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager().workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() {
	globalManager().workerErrors.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager().errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap size in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager().systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the package-level recorders use.
func GetRegistry() *prometheus.Registry {
	return current.Load().registry
}
