// Package metrics provides Prometheus metrics for the heist game backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

var defaultDetectionBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	detectionBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Gesture pipeline
	gesturesDetected  *prometheus.CounterVec
	facesDetected     prometheus.Counter
	facesMissed       prometheus.Counter
	detectionLatency  prometheus.Histogram
	detectionErrors   prometheus.Counter
	detectionRejected prometheus.Counter

	// Game state
	levelsServed        *prometheus.CounterVec
	obstaclesGenerated  *prometheus.CounterVec
	collisionsChecked   *prometheus.CounterVec
	scoresSubmitted     prometheus.Counter
	submissionDuplicate prometheus.Counter
	scoreboardSize      prometheus.Gauge

	// Queue and workers
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	workerCount   prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "heist",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		detectionBuckets: defaultDetectionBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.gesturesDetected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("gestures_detected_total"),
		Help:        "Number of frames in which a control signal was active, by signal",
		ConstLabels: labels,
	}, []string{"signal"})

	m.facesDetected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("faces_detected_total"),
		Help:        "Frames in which the landmark source found a face",
		ConstLabels: labels,
	})

	m.facesMissed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("faces_missed_total"),
		Help:        "Frames in which the landmark source found no face",
		ConstLabels: labels,
	})

	m.detectionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("detection_latency_milliseconds"),
		Help:        "Landmark detection plus classification latency in milliseconds",
		Buckets:     m.detectionBuckets,
		ConstLabels: labels,
	})

	m.detectionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("detection_errors_total"),
		Help:        "Landmark source failures",
		ConstLabels: labels,
	})

	m.detectionRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("detection_rejected_total"),
		Help:        "Detection jobs rejected because the queue was full or closed",
		ConstLabels: labels,
	})

	m.levelsServed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("levels_served_total"),
		Help:        "Level requests by resolved level name",
		ConstLabels: labels,
	}, []string{"level"})

	m.obstaclesGenerated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("obstacles_generated_total"),
		Help:        "Generated obstacles by type",
		ConstLabels: labels,
	}, []string{"obstacle"})

	m.collisionsChecked = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("collisions_checked_total"),
		Help:        "Collision checks by obstacle and outcome",
		ConstLabels: labels,
	}, []string{"obstacle", "outcome"})

	m.scoresSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scores_submitted_total"),
		Help:        "Score submissions accepted by the scoreboard",
		ConstLabels: labels,
	})

	m.submissionDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("submissions_duplicate_total"),
		Help:        "Score submissions ignored because their submission id was already seen",
		ConstLabels: labels,
	})

	m.scoreboardSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scoreboard_size"),
		Help:        "Current number of scoreboard entries",
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("detection_queue_size"),
		Help:        "Current number of queued detection jobs",
		ConstLabels: labels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("detection_queue_capacity"),
		Help:        "Maximum number of queued detection jobs",
		ConstLabels: labels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("detection_worker_count"),
		Help:        "Number of detection workers",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "HTTP errors by endpoint, method and error type",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordGesture increments the counter for an active control signal.
func RecordGesture(signal string) {
	if !globalManager.enabled {
		return
	}
	globalManager.gesturesDetected.WithLabelValues(signal).Inc()
}

// RecordFaceDetected records whether a frame contained a face.
func RecordFaceDetected(found bool) {
	if !globalManager.enabled {
		return
	}
	if found {
		globalManager.facesDetected.Inc()
		return
	}
	globalManager.facesMissed.Inc()
}

// RecordDetectionLatency records detection latency in milliseconds.
func RecordDetectionLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.detectionLatency.Observe(latencyMs)
}

// RecordDetectionError increments the landmark source failure counter.
func RecordDetectionError() {
	if !globalManager.enabled {
		return
	}
	globalManager.detectionErrors.Inc()
}

// RecordDetectionRejected increments the rejected detection job counter.
func RecordDetectionRejected() {
	if !globalManager.enabled {
		return
	}
	globalManager.detectionRejected.Inc()
}

// RecordLevelServed increments the served counter for a level.
func RecordLevelServed(level string) {
	if !globalManager.enabled {
		return
	}
	globalManager.levelsServed.WithLabelValues(level).Inc()
}

// RecordObstacles counts each generated obstacle by type.
func RecordObstacles(obstacles []string) {
	if !globalManager.enabled {
		return
	}
	for _, o := range obstacles {
		globalManager.obstaclesGenerated.WithLabelValues(o).Inc()
	}
}

// RecordCollisionCheck records one collision check.
func RecordCollisionCheck(obstacle string, collided bool) {
	if !globalManager.enabled {
		return
	}
	outcome := "avoided"
	if collided {
		outcome = "collision"
	}
	globalManager.collisionsChecked.WithLabelValues(obstacle, outcome).Inc()
}

// RecordScoreSubmitted increments the accepted submission counter.
func RecordScoreSubmitted() {
	if !globalManager.enabled {
		return
	}
	globalManager.scoresSubmitted.Inc()
}

// RecordSubmissionDuplicate increments the duplicate submission counter.
func RecordSubmissionDuplicate() {
	if !globalManager.enabled {
		return
	}
	globalManager.submissionDuplicate.Inc()
}

// UpdateScoreboardSize sets the scoreboard entry count.
func UpdateScoreboardSize(size int) {
	globalManager.scoreboardSize.Set(float64(size))
}

// UpdateQueueSize sets the current detection queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the detection queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval returns how often periodic gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
