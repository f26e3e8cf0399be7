// Package metrics provides Prometheus metrics for the liao scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring
	submissions          *prometheus.CounterVec
	submissionDuplicates prometheus.Counter
	validationFailures   *prometheus.CounterVec
	pointsTransferred    *prometheus.CounterVec
	eventsDeleted        prometheus.Counter

	// Leaderboard
	leaderboardTeams      prometheus.Gauge
	leaderboardRecomputes prometheus.Counter

	// Store
	storeErrors       *prometheus.CounterVec
	storeQueryLatency *prometheus.HistogramVec

	// Session gate
	loginAttempts *prometheus.CounterVec

	// Queue and workers
	queueSize        prometheus.Gauge
	queueEnqueues    *prometheus.CounterVec
	workerJobs       *prometheus.CounterVec
	workerActive     prometheus.Gauge
	workerJobLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry holding the service collectors plus the Go runtime and
// process collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "liao",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_total",
		Help:      "Game submissions by game and outcome",
	}, []string{"game", "outcome"})

	m.submissionDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submission_duplicates_total",
		Help:      "Submissions rejected because their id was already recorded",
	})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Game submissions rejected by rule validation",
	}, []string{"game"})

	m.pointsTransferred = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_transferred_total",
		Help:      "Sum of positive point deltas written, per game",
	}, []string{"game"})

	m.eventsDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_deleted_total",
		Help:      "Scoring events removed from history",
	})

	m.leaderboardTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_teams",
		Help:      "Number of teams on the last computed leaderboard",
	})

	m.leaderboardRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_recomputes_total",
		Help:      "Full leaderboard recomputations",
	})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Store operations that returned an error",
	}, []string{"op"})

	m.storeQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.loginAttempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "login_attempts_total",
		Help:      "Passcode login attempts by outcome",
	}, []string{"outcome"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Jobs waiting in the submission queue",
	})

	m.queueEnqueues = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Enqueue attempts by outcome (ok, full, closed, cancelled)",
	}, []string{"outcome"})

	m.workerJobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_jobs_total",
		Help:      "Jobs handled by workers by outcome",
	}, []string{"outcome"})

	m.workerActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "workers_active",
		Help:      "Running workers",
	})

	m.workerJobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_job_latency_milliseconds",
		Help:      "Worker job latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Errors by endpoint, method and type",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordSubmission counts a game submission with its outcome
// (stored, invalid, store_error, duplicate).
func RecordSubmission(game, outcome string) {
	globalManager.submissions.WithLabelValues(game, outcome).Inc()
}

// RecordSubmissionDuplicate counts a replayed submission id.
func RecordSubmissionDuplicate() {
	globalManager.submissionDuplicates.Inc()
}

// RecordValidationFailure counts a rule validation failure.
func RecordValidationFailure(game string) {
	globalManager.validationFailures.WithLabelValues(game).Inc()
}

// RecordPointsTransferred adds the positive side of a zero-sum transfer.
func RecordPointsTransferred(game string, points int64) {
	if points <= 0 {
		return
	}
	globalManager.pointsTransferred.WithLabelValues(game).Add(float64(points))
}

// RecordEventDeleted counts a history row deletion.
func RecordEventDeleted() {
	globalManager.eventsDeleted.Inc()
}

// UpdateLeaderboardTeams sets the number of ranked teams.
func UpdateLeaderboardTeams(count int) {
	globalManager.leaderboardTeams.Set(float64(count))
	globalManager.leaderboardRecomputes.Inc()
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordStoreLatency records store latency in milliseconds.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordLoginAttempt counts a login attempt (ok, mismatch, malformed, limited, error).
func RecordLoginAttempt(outcome string) {
	globalManager.loginAttempts.WithLabelValues(outcome).Inc()
}

// UpdateQueueSize sets the number of queued jobs.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue counts an enqueue attempt.
func RecordQueueEnqueue(outcome string) {
	globalManager.queueEnqueues.WithLabelValues(outcome).Inc()
}

// RecordWorkerJob counts a handled job and its latency.
func RecordWorkerJob(outcome string, latencyMs float64) {
	globalManager.workerJobs.WithLabelValues(outcome).Inc()
	globalManager.workerJobLatency.Observe(latencyMs)
}

// AddWorkerActive adjusts the running worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActive.Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
