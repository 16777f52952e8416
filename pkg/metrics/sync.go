package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records remote cart calls, gate transitions and persistence failures.
type SyncMetrics struct {
	calls       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	skipped     *prometheus.CounterVec
	gate        prometheus.Gauge
	transitions *prometheus.CounterVec
	persistence *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer. A nil
// registerer yields a recorder whose methods are no-ops.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_remote_calls_total",
		Help: "Remote cart service calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_remote_call_duration_seconds",
		Help:    "Duration of remote cart service calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_remote_skipped_total",
		Help: "Remote calls not attempted, by operation and reason.",
	}, []string{"operation", "reason"})
	gate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_gate_available",
		Help: "1 when the cart service is believed reachable, 0 otherwise.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_gate_transitions_total",
		Help: "Availability gate status changes.",
	}, []string{"to"})
	persistence := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persistence_failures_total",
		Help: "Failed local persistence operations.",
	}, []string{"op"})
	reg.MustRegister(calls, duration, skipped, gate, transitions, persistence)
	gate.Set(1)
	return &SyncMetrics{
		calls:       calls,
		duration:    duration,
		skipped:     skipped,
		gate:        gate,
		transitions: transitions,
		persistence: persistence,
	}
}

// ObserveCall records one attempted remote call.
func (m *SyncMetrics) ObserveCall(operation, outcome string, took time.Duration) {
	if m == nil || m.calls == nil {
		return
	}
	op := normalizeLabel(operation)
	m.calls.WithLabelValues(op, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(op).Observe(took.Seconds())
}

// IncSkipped counts a remote call suppressed before any request was sent.
func (m *SyncMetrics) IncSkipped(operation, reason string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(operation), normalizeLabel(reason)).Inc()
}

// SetGateAvailable publishes the gate state and counts the transition.
func (m *SyncMetrics) SetGateAvailable(available bool) {
	if m == nil || m.gate == nil {
		return
	}
	if available {
		m.gate.Set(1)
		m.transitions.WithLabelValues("available").Inc()
		return
	}
	m.gate.Set(0)
	m.transitions.WithLabelValues("unavailable").Inc()
}

// IncPersistenceFailure counts a failed load, save or clear.
func (m *SyncMetrics) IncPersistenceFailure(op string) {
	if m == nil || m.persistence == nil {
		return
	}
	m.persistence.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
