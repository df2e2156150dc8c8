package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry sync module.
type Metrics struct {
	// Per-check latencies by check kind
	CheckLatency *prometheus.HistogramVec

	// Check outcomes by kind and result
	CheckOutcome *prometheus.CounterVec

	// Full sync duration per registry sync invocation
	SyncDuration prometheus.Histogram

	// Sync outcomes: consensus, no_consensus, failed
	SyncOutcome *prometheus.CounterVec

	// Registry snapshots rejected for breaking aggregate invariants
	InvariantViolations prometheus.Counter
}

// New creates a Metrics instance with all registry sync metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "concord_registry_check_duration_seconds",
			Help:    "Duration of individual proof checks by kind",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),

		CheckOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "concord_registry_check_outcomes_total",
			Help: "Total proof check outcomes by kind and result",
		}, []string{"kind", "result"}), // result: "pass", "fail"

		SyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "concord_registry_sync_duration_seconds",
			Help:    "Duration of full registry sync including fetch and validation",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		SyncOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "concord_registry_sync_outcomes_total",
			Help: "Total registry sync outcomes",
		}, []string{"outcome"}), // outcome: "consensus", "no_consensus", "failed"

		InvariantViolations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "concord_registry_invariant_violations_total",
			Help: "Registry snapshots rejected for violating aggregate invariants",
		}),
	}
}

// ObserveCheckLatency records the duration of one proof check.
func (m *Metrics) ObserveCheckLatency(kind string, d time.Duration) {
	if m != nil {
		m.CheckLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// IncrementCheck records a proof check outcome.
func (m *Metrics) IncrementCheck(kind string, passed bool) {
	if m != nil {
		result := "fail"
		if passed {
			result = "pass"
		}
		m.CheckOutcome.WithLabelValues(kind, result).Inc()
	}
}

// ObserveSyncDuration records the total duration of one sync invocation.
func (m *Metrics) ObserveSyncDuration(d time.Duration) {
	if m != nil {
		m.SyncDuration.Observe(d.Seconds())
	}
}

// IncrementSync records a sync outcome.
func (m *Metrics) IncrementSync(outcome string) {
	if m != nil {
		m.SyncOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementInvariantViolation records a rejected registry snapshot.
func (m *Metrics) IncrementInvariantViolation() {
	if m != nil {
		m.InvariantViolations.Inc()
	}
}
