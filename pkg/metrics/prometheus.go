// Package metrics provides Prometheus metrics for the vigil monitoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the vigil service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core detection metrics
	framesProcessed  prometheus.Counter
	framesNoPerson   prometheus.Counter
	framesDuplicate  prometheus.Counter
	posturesByLabel  *prometheus.CounterVec
	resultsByLabel   *prometheus.CounterVec
	alertsByReason   *prometheus.CounterVec
	engineTickMillis prometheus.Histogram

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueEnqueueErrs prometheus.Counter

	// Monitor metrics
	monitorCount  prometheus.Gauge
	framesDropped prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vigil",
		subsystem:        "detection",
		histogramBuckets: prometheus.DefBuckets,
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

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_processed_total",
		Help:      "Total number of frames run through a fall-detection engine",
	})

	m.framesNoPerson = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_no_person_total",
		Help:      "Total number of frames with no person detected",
	})

	m.framesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_duplicate_total",
		Help:      "Total number of duplicate frames rejected at ingest",
	})

	m.posturesByLabel = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "postures_classified_total",
			Help:      "Total posture classifications by label",
		},
		[]string{"posture"},
	)

	m.resultsByLabel = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "detections_total",
			Help:      "Total detection results by label",
		},
		[]string{"result"},
	)

	m.alertsByReason = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "alerts_total",
			Help:      "Total alerts emitted by transition reason",
		},
		[]string{"reason"},
	)

	m.engineTickMillis = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "engine_tick_milliseconds",
		Help:      "Histogram of per-frame engine analysis latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the frame queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the frame queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Frame queue fill ratio (0-1)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total frames accepted by the queue",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total frames handed to monitors",
	})

	m.queueEnqueueErrs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total frames rejected by the queue (full or closed)",
	})

	m.monitorCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "monitor_count",
		Help:      "Number of per-stream monitors currently running",
	})

	m.framesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_dropped_total",
		Help:      "Total frames dropped because a monitor's inbox was full",
	})

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
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_bytes",
		Help:      "Current allocated heap bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Current number of goroutines",
	})
}

// GetRegistry returns the registry metrics are served from.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level recording helpers backed by the global manager.

// RecordFrameProcessed increments the processed-frame counter.
func RecordFrameProcessed() { globalManager.framesProcessed.Inc() }

// RecordFrameNoPerson increments the no-person frame counter.
func RecordFrameNoPerson() { globalManager.framesNoPerson.Inc() }

// RecordFrameDuplicate increments the duplicate-frame counter.
func RecordFrameDuplicate() { globalManager.framesDuplicate.Inc() }

// RecordPosture counts one posture classification.
func RecordPosture(label string) { globalManager.posturesByLabel.WithLabelValues(label).Inc() }

// RecordDetection counts one detection result.
func RecordDetection(label string) { globalManager.resultsByLabel.WithLabelValues(label).Inc() }

// RecordAlert counts one emitted alert by reason.
func RecordAlert(reason string) { globalManager.alertsByReason.WithLabelValues(reason).Inc() }

// RecordEngineTickLatency observes one engine tick in milliseconds.
func RecordEngineTickLatency(ms float64) { globalManager.engineTickMillis.Observe(ms) }

// UpdateQueueSize sets the current frame queue size.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the configured frame queue capacity.
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

// UpdateQueueUtilization sets the frame queue fill ratio.
func UpdateQueueUtilization(u float64) { globalManager.queueUtilization.Set(u) }

// RecordQueueEnqueue counts one accepted frame.
func RecordQueueEnqueue() { globalManager.queueEnqueues.Inc() }

// RecordQueueDequeue counts one dequeued frame.
func RecordQueueDequeue() { globalManager.queueDequeues.Inc() }

// RecordQueueEnqueueError counts one rejected frame.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrs.Inc() }

// UpdateMonitorCount sets the number of running per-stream monitors.
func UpdateMonitorCount(n int) { globalManager.monitorCount.Set(float64(n)) }

// RecordFrameDropped counts one frame dropped at a monitor inbox.
func RecordFrameDropped() { globalManager.framesDropped.Inc() }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) { globalManager.systemGoroutineCount.Set(float64(n)) }
