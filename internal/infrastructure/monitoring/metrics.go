package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing, so
// components can run without a registry in tests.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Action metrics
	ReentrancyRejections *prometheus.CounterVec

	// Message metrics
	MessagesInterpreted *prometheus.CounterVec
	MessageDuration     *prometheus.HistogramVec
	StoreBroadcasts     *prometheus.CounterVec

	// Tab metrics
	TabContextsActive prometheus.Gauge
	TabContextsTotal  prometheus.Counter

	// WebSocket metrics
	WSConnections *prometheus.GaugeVec
	WSMessages    *prometheus.CounterVec
	WSDropped     *prometheus.CounterVec

	// Resilience metrics
	BreakerState *prometheus.GaugeVec

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON API
type MetricsSnapshot struct {
	MessagesHandled   int64 `json:"messagesHandled"`
	MessagesUnhandled int64 `json:"messagesUnhandled"`
	MessagesFailed    int64 `json:"messagesFailed"`
	ActiveTabs        int64 `json:"activeTabs"`
	ActiveConnections int64 `json:"activeConnections"`
	UptimeSeconds     int64 `json:"uptimeSeconds"`
}

// NewMetrics registers every metric with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storesync_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storesync_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		// Action metrics
		ReentrancyRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storesync_reentrancy_rejections_total",
				Help: "Total number of action invocations rejected by the scope mutex",
			},
			[]string{"message_type"},
		),

		// Message metrics
		MessagesInterpreted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storesync_messages_interpreted_total",
				Help: "Total number of distributed messages by interpreter and outcome",
			},
			[]string{"interpreter", "status"},
		),
		MessageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storesync_message_duration_seconds",
				Help:    "Time from distribution until the interpreter result settles",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"interpreter"},
		),
		StoreBroadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storesync_store_broadcasts_total",
				Help: "Total number of store state sends by destination and outcome",
			},
			[]string{"destination", "status"},
		),

		// Tab metrics
		TabContextsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "storesync_tab_contexts_active",
				Help: "Number of live tab contexts",
			},
		),
		TabContextsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "storesync_tab_contexts_total",
				Help: "Total number of tab contexts created",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "storesync_ws_connections",
				Help: "Number of active WebSocket peers by context kind",
			},
			[]string{"context"},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storesync_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "context"},
		),
		WSDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storesync_ws_dropped_total",
				Help: "Total number of inbound WebSocket messages dropped",
			},
			[]string{"reason"},
		),

		// Resilience metrics
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "storesync_breaker_state",
				Help: "Circuit breaker state per destination (0 closed, 1 half-open, 2 open)",
			},
			[]string{"destination"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "storesync_uptime_seconds",
			Help: "Daemon uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordReentrancy records an invocation rejected by the scope mutex
func (m *Metrics) RecordReentrancy(messageType string) {
	if m == nil {
		return
	}
	m.ReentrancyRejections.WithLabelValues(messageType).Inc()
}

// RecordMessage records the outcome of offering a message to an interpreter.
// status is one of handled, unhandled or failed.
func (m *Metrics) RecordMessage(interpreter, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.MessagesInterpreted.WithLabelValues(interpreter, status).Inc()
	if status != "unhandled" {
		m.MessageDuration.WithLabelValues(interpreter).Observe(duration.Seconds())
	}

	m.mu.Lock()
	switch status {
	case "handled":
		m.snapshot.MessagesHandled++
	case "unhandled":
		m.snapshot.MessagesUnhandled++
	case "failed":
		m.snapshot.MessagesFailed++
	}
	m.mu.Unlock()
}

// RecordBroadcast records a store state send. status is ok, error,
// no_peer or skipped.
func (m *Metrics) RecordBroadcast(destination, status string) {
	if m == nil {
		return
	}
	m.StoreBroadcasts.WithLabelValues(destination, status).Inc()
}

// SetTabContextsActive sets the number of live tab contexts
func (m *Metrics) SetTabContextsActive(count int) {
	if m == nil {
		return
	}
	m.TabContextsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveTabs = int64(count)
	m.mu.Unlock()
}

// IncTabContextsTotal increments the created tab contexts counter
func (m *Metrics) IncTabContextsTotal() {
	if m == nil {
		return
	}
	m.TabContextsTotal.Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, context string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, context).Inc()
}

// RecordWSDropped records a dropped inbound message
func (m *Metrics) RecordWSDropped(reason string) {
	if m == nil {
		return
	}
	m.WSDropped.WithLabelValues(reason).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections(context string) {
	if m == nil {
		return
	}
	m.WSConnections.WithLabelValues(context).Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections(context string) {
	if m == nil {
		return
	}
	m.WSConnections.WithLabelValues(context).Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// SetBreakerState records the state of the breaker guarding destination
func (m *Metrics) SetBreakerState(destination string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(destination).Set(float64(state))
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = int64(time.Since(m.startTime).Seconds())
	return s
}
