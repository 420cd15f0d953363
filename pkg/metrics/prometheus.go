// Package metrics provides Prometheus metrics for the Whack-A-Word game engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the game.
type Manager struct {
	registry prometheus.Registerer

	// Round lifecycle
	roundsStarted   *prometheus.CounterVec
	roundTimeouts   prometheus.Counter
	roundResolution prometheus.Histogram
	staleEvents     *prometheus.CounterVec

	// Player input
	taps *prometheus.CounterVec

	// Progress
	tier           prometheus.Gauge
	successes      prometheus.Gauge
	tierAdvances   prometheus.Counter
	sessionsWon    prometheus.Counter
	sessionsActive prometheus.Gauge

	// Narration FIFO
	narrationDepth  prometheus.Gauge
	narrationPlayed *prometheus.CounterVec

	// Event mailbox feeding the loop
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	loopLatency        prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Metric name prefix: whackaword_game_<name>.
const (
	namespace = "whackaword"
	subsystem = "game"
)

// resolutionBuckets spans a quick tap up to a long round deadline, in ms.
var resolutionBuckets = []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000, 16000} //nolint:gochecknoglobals // histogram layout

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		registry: prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
		})
	}

	m.roundsStarted = counterVec("rounds_started_total", "Rounds presented, by kind (fresh or retry)", "kind")
	m.roundTimeouts = counter("round_timeouts_total", "Rounds whose deadline fired before any tap")
	m.roundResolution = histogram("round_resolution_milliseconds", "Time from presentation to the resolving tap or timeout", resolutionBuckets)
	m.staleEvents = counterVec("stale_events_total", "Events dropped because their round token was no longer current", "kind")

	m.taps = counterVec("taps_total", "Taps handled by the input resolver, by outcome", "outcome")

	m.tier = gauge("tier", "Current tier of the active session")
	m.successes = gauge("successes_in_tier", "Correct taps recorded in the current tier")
	m.tierAdvances = counter("tier_advances_total", "Tier advances across all sessions")
	m.sessionsWon = counter("sessions_won_total", "Sessions that reached the winning state")
	m.sessionsActive = gauge("sessions_active", "Sessions currently running")

	m.narrationDepth = gauge("narration_queue_depth", "Narration requests waiting behind the one in flight")
	m.narrationPlayed = counterVec("narration_played_total", "Narration clips played to completion, by clip kind", "kind")

	m.queueCapacity = gauge("mailbox_capacity", "Maximum number of pending loop events")
	m.queueSize = gauge("mailbox_size", "Current number of pending loop events")
	m.queueEnqueued = counter("mailbox_enqueued_total", "Events accepted by the mailbox")
	m.queueDequeued = counter("mailbox_dequeued_total", "Events handed to the loop")
	m.queueEnqueueErrors = counterVec("mailbox_enqueue_errors_total", "Events rejected by the mailbox, by reason", "reason")
	m.loopLatency = histogram("loop_event_latency_milliseconds", "Time spent handling one loop event", []float64{0.05, 0.1, 0.5, 1, 5, 10, 50})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
}

// RecordRoundStarted counts a presented round; kind is "fresh" or "retry".
func RecordRoundStarted(kind string) {
	globalManager.roundsStarted.WithLabelValues(kind).Inc()
}

// RecordRoundTimeout counts a round whose deadline fired unresolved.
func RecordRoundTimeout() {
	globalManager.roundTimeouts.Inc()
}

// RecordRoundResolution records how long a round stayed up before resolution.
func RecordRoundResolution(latencyMs float64) {
	globalManager.roundResolution.Observe(latencyMs)
}

// RecordStaleEvent counts an event filtered by the round token guard.
func RecordStaleEvent(kind string) {
	globalManager.staleEvents.WithLabelValues(kind).Inc()
}

// RecordTap counts a tap by outcome: correct, incorrect, empty or stale.
func RecordTap(outcome string) {
	globalManager.taps.WithLabelValues(outcome).Inc()
}

// UpdateProgress sets the tier and successes gauges.
func UpdateProgress(tier, successes int) {
	globalManager.tier.Set(float64(tier))
	globalManager.successes.Set(float64(successes))
}

// RecordTierAdvance counts a tier transition.
func RecordTierAdvance() {
	globalManager.tierAdvances.Inc()
}

// RecordSessionWon counts a won session.
func RecordSessionWon() {
	globalManager.sessionsWon.Inc()
}

// UpdateSessionsActive sets the number of running sessions.
func UpdateSessionsActive(n int) {
	globalManager.sessionsActive.Set(float64(n))
}

// UpdateNarrationDepth sets the number of queued narration requests.
func UpdateNarrationDepth(depth int) {
	globalManager.narrationDepth.Set(float64(depth))
}

// RecordNarrationPlayed counts a completed narration clip.
func RecordNarrationPlayed(kind string) {
	globalManager.narrationPlayed.WithLabelValues(kind).Inc()
}

// UpdateQueueCapacity sets the mailbox capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current mailbox size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected event by reason.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordLoopLatency records time spent handling one loop event.
func RecordLoopLatency(latencyMs float64) {
	globalManager.loopLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
