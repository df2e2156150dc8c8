package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the proposal federation module.
type Metrics struct {
	// Accepted submissions by proposal type
	Submissions *prometheus.CounterVec

	// Submissions rejected at validation, by failing field
	Rejections *prometheus.CounterVec

	// Recorded ballots by vote kind
	Votes *prometheus.CounterVec

	// Ballots forwarded into the cross-deck overlay
	CrossDeckBallots prometheus.Counter

	// Full federation sync duration per proposal
	SyncDuration prometheus.Histogram

	// Per-node push outcomes: acked, failed, timeout, breaker_open
	NodePushOutcome *prometheus.CounterVec

	// Proposal-level sync outcomes: synchronized, failed
	SyncOutcome *prometheus.CounterVec

	// Inbound peer pushes: accepted, rejected
	PeerPushes *prometheus.CounterVec

	// Proposals currently held in the index arena
	IndexSize prometheus.Gauge
}

// New creates a Metrics instance with all proposal metrics registered.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "concord_proposal_submissions_total",
			Help: "Accepted proposal submissions by type",
		}, []string{"type"}),

		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "concord_proposal_rejections_total",
			Help: "Proposal submissions rejected at validation",
		}, []string{"constraint"}),

		Votes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "concord_proposal_votes_total",
			Help: "Recorded ballots by vote kind",
		}, []string{"kind"}),

		CrossDeckBallots: promauto.NewCounter(prometheus.CounterOpts{
			Name: "concord_proposal_crossdeck_ballots_total",
			Help: "Ballots forwarded into cross-deck overlays",
		}),

		SyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "concord_proposal_sync_duration_seconds",
			Help:    "Duration of full federation sync per proposal",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		NodePushOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "concord_proposal_node_push_outcomes_total",
			Help: "Per-node push outcomes during federation sync",
		}, []string{"outcome"}), // outcome: "acked", "failed", "timeout", "breaker_open"

		SyncOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "concord_proposal_sync_outcomes_total",
			Help: "Proposal sync outcomes after node fan-out",
		}, []string{"outcome"}), // outcome: "synchronized", "failed"

		PeerPushes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "concord_proposal_peer_pushes_total",
			Help: "Inbound proposal pushes from federation peers",
		}, []string{"outcome"}), // outcome: "accepted", "rejected"

		IndexSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "concord_proposal_index_size",
			Help: "Proposals currently held in the index",
		}),
	}
}

// IncrementSubmission records an accepted submission.
func (m *Metrics) IncrementSubmission(proposalType string) {
	if m != nil {
		m.Submissions.WithLabelValues(proposalType).Inc()
	}
}

// IncrementRejection records a validation rejection.
func (m *Metrics) IncrementRejection(constraint string) {
	if m != nil {
		m.Rejections.WithLabelValues(constraint).Inc()
	}
}

// IncrementVote records one ballot.
func (m *Metrics) IncrementVote(kind string) {
	if m != nil {
		m.Votes.WithLabelValues(kind).Inc()
	}
}

// IncrementCrossDeckBallot records a ballot forwarded to an overlay.
func (m *Metrics) IncrementCrossDeckBallot() {
	if m != nil {
		m.CrossDeckBallots.Inc()
	}
}

// ObserveSyncDuration records the duration of one federation sync.
func (m *Metrics) ObserveSyncDuration(d time.Duration) {
	if m != nil {
		m.SyncDuration.Observe(d.Seconds())
	}
}

// IncrementNodePush records one node push outcome.
func (m *Metrics) IncrementNodePush(outcome string) {
	if m != nil {
		m.NodePushOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementSync records a proposal sync outcome.
func (m *Metrics) IncrementSync(outcome string) {
	if m != nil {
		m.SyncOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementPeerPush records one inbound push from a federation peer.
func (m *Metrics) IncrementPeerPush(outcome string) {
	if m != nil {
		m.PeerPushes.WithLabelValues(outcome).Inc()
	}
}

// SetIndexSize records the current arena size.
func (m *Metrics) SetIndexSize(n int) {
	if m != nil {
		m.IndexSize.Set(float64(n))
	}
}
