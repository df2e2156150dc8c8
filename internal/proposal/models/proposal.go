// Package models defines the regional proposal aggregate and its value
// types: region scope, quorum configuration, voting window, vote tallies,
// and the federation sync status state machine.
package models

import (
	"time"

	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
)

const (
	minTitleLen       = 10
	minDescriptionLen = 50
)

// ProposalType classifies a proposal for filtering and routing.
type ProposalType string

// Supported proposal types.
const (
	TypePolicy      ProposalType = "policy"
	TypeBudget      ProposalType = "budget"
	TypeGovernance  ProposalType = "governance"
	TypeEmergency   ProposalType = "emergency"
	TypeCrossBorder ProposalType = "cross_border"
)

var validTypes = map[ProposalType]bool{
	TypePolicy:      true,
	TypeBudget:      true,
	TypeGovernance:  true,
	TypeEmergency:   true,
	TypeCrossBorder: true,
}

// IsValid checks if the type is one of the supported enum values.
func (t ProposalType) IsValid() bool { return validTypes[t] }

// String returns the string representation of the type.
func (t ProposalType) String() string { return string(t) }

// ParseProposalType constructs a ProposalType from external input.
//
// Errors: returns CodeInvalidInput when the value is unsupported.
func ParseProposalType(s string) (ProposalType, error) {
	t := ProposalType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid proposal type")
	}
	return t, nil
}

// Urgency ranks how quickly a proposal needs regional attention.
type Urgency string

// Urgency levels, lowest to highest.
const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

var validUrgencies = map[Urgency]bool{
	UrgencyLow:      true,
	UrgencyMedium:   true,
	UrgencyHigh:     true,
	UrgencyCritical: true,
}

// IsValid checks if the urgency is one of the supported enum values.
func (u Urgency) IsValid() bool { return validUrgencies[u] }

// String returns the string representation of the urgency.
func (u Urgency) String() string { return string(u) }

// ParseUrgency constructs an Urgency from external input.
//
// Errors: returns CodeInvalidInput when the value is unsupported. An empty
// value defaults to UrgencyMedium.
func ParseUrgency(s string) (Urgency, error) {
	if s == "" {
		return UrgencyMedium, nil
	}
	u := Urgency(s)
	if !u.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid urgency level")
	}
	return u, nil
}

// AllUrgencies returns every urgency level, lowest first.
func AllUrgencies() []Urgency {
	return []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}
}

// VoteKind is the ballot choice cast against a proposal.
type VoteKind string

// Supported vote kinds.
const (
	VoteSupport VoteKind = "support"
	VoteOppose  VoteKind = "oppose"
	VoteAbstain VoteKind = "abstain"
)

var validVoteKinds = map[VoteKind]bool{
	VoteSupport: true,
	VoteOppose:  true,
	VoteAbstain: true,
}

// IsValid checks if the vote kind is one of the supported enum values.
func (k VoteKind) IsValid() bool { return validVoteKinds[k] }

// String returns the string representation of the vote kind.
func (k VoteKind) String() string { return string(k) }

// ParseVoteKind constructs a VoteKind from external input.
//
// Errors: returns CodeInvalidInput when the value is unsupported.
func ParseVoteKind(s string) (VoteKind, error) {
	k := VoteKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid vote kind")
	}
	return k, nil
}

// SyncStatus tracks propagation of a proposal across its federation nodes.
//
// State machine:
//
//	pending → syncing → synchronized (all nodes acknowledged)
//	                  → failed       (one or more nodes did not)
//	failed  → syncing (retry of the failed subset)
//
// No status ever transitions back to pending, and synchronized is terminal.
type SyncStatus string

// Sync statuses.
const (
	SyncPending      SyncStatus = "pending"
	SyncSyncing      SyncStatus = "syncing"
	SyncSynchronized SyncStatus = "synchronized"
	SyncFailed       SyncStatus = "failed"
)

var validSyncStatuses = map[SyncStatus]bool{
	SyncPending:      true,
	SyncSyncing:      true,
	SyncSynchronized: true,
	SyncFailed:       true,
}

// IsValid checks if the status is one of the supported enum values.
func (s SyncStatus) IsValid() bool { return validSyncStatuses[s] }

// String returns the string representation of the status.
func (s SyncStatus) String() string { return string(s) }

// ParseSyncStatus constructs a SyncStatus from external input.
//
// Errors: returns CodeInvalidInput when the value is unsupported.
func ParseSyncStatus(s string) (SyncStatus, error) {
	status := SyncStatus(s)
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid sync status")
	}
	return status, nil
}

// CanTransition reports whether the status may move to target.
func (s SyncStatus) CanTransition(target SyncStatus) bool {
	switch s {
	case SyncPending:
		return target == SyncSyncing
	case SyncSyncing:
		return target == SyncSynchronized || target == SyncFailed
	case SyncFailed:
		return target == SyncSyncing
	default:
		return false
	}
}

// RegionScope names the jurisdictions a proposal applies to.
type RegionScope struct {
	Primary        id.Jurisdiction   `json:"primary"`
	Secondary      []id.Jurisdiction `json:"secondary,omitempty"`
	FederationWide bool              `json:"federation_wide"`
}

// Jurisdictions returns the primary followed by the secondary jurisdictions.
func (s RegionScope) Jurisdictions() []id.Jurisdiction {
	out := make([]id.Jurisdiction, 0, len(s.Secondary)+1)
	out = append(out, s.Primary)
	out = append(out, s.Secondary...)
	return out
}

// CrossDeckConfig lists the voting surfaces a proposal collects ballots on
// beyond the primary governance deck.
type CrossDeckConfig struct {
	Surfaces []id.Surface `json:"surfaces,omitempty"`
}

// Enabled reports whether cross-deck voting is active for the proposal.
func (c CrossDeckConfig) Enabled() bool { return len(c.Surfaces) > 0 }

// QuorumConfig captures the participation rules a proposal is judged by.
// Tier weighting, when set, is applied by the caller before ballots reach
// the cross-deck aggregator.
type QuorumConfig struct {
	MinParticipation float64 `json:"min_participation"`
	TierWeighting    bool    `json:"tier_weighting"`
	EmergencyBypass  bool    `json:"emergency_bypass"`
	EligibleVoters   int     `json:"eligible_voters"`
}

// VotingWindow is the period during which the proposal solicits ballots.
// The engine records and replicates the window; the voting surfaces that
// collect ballots enforce it.
type VotingWindow struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Extendable bool      `json:"extendable"`
}

// VoteTallies accumulates ballots cast against a proposal. Participation is
// a percentage of the quorum's eligible voters.
type VoteTallies struct {
	Support       int     `json:"support"`
	Oppose        int     `json:"oppose"`
	Abstain       int     `json:"abstain"`
	Participation float64 `json:"participation"`
}

// Total returns the number of ballots cast.
func (t VoteTallies) Total() int { return t.Support + t.Oppose + t.Abstain }

// ProposalMeta carries submission bookkeeping.
type ProposalMeta struct {
	Submitter     string    `json:"submitter"`
	SubmittedAt   time.Time `json:"submitted_at"`
	ModifiedAt    time.Time `json:"modified_at"`
	Urgency       Urgency   `json:"urgency"`
	ValidatorHash string    `json:"validator_hash"`
}

// RegionalProposal is the aggregate root for regional governance proposals.
//
// Invariants:
//   - Title is at least 10 characters and Description at least 50.
//   - Scope.Primary is non-empty and Nodes has at least one entry.
//   - SyncStatus only moves along the CanTransition table; the federation
//     coordinator is the sole writer.
//   - Tallies only grow; Participation is derived from Tallies and
//     Quorum.EligibleVoters, never set directly.
//   - Proposals are never deleted, only superseded by a new submission.
type RegionalProposal struct {
	ID          id.ProposalID   `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Scope       RegionScope     `json:"scope"`
	Type        ProposalType    `json:"type"`
	Nodes       []id.NodeID     `json:"nodes"`
	ContentHash string          `json:"content_hash"`
	CrossDeck   CrossDeckConfig `json:"cross_deck"`
	Quorum      QuorumConfig    `json:"quorum"`
	Window      VotingWindow    `json:"window"`
	SyncStatus  SyncStatus      `json:"sync_status"`
	Tallies     VoteTallies     `json:"tallies"`
	Meta        ProposalMeta    `json:"meta"`
}

// ValidateSubmission checks the minimum field constraints for accepting a
// proposal. It reports the first violated constraint so the submitter gets
// one actionable message.
//
// Errors: returns CodeInvalidInput naming the failing field.
func (p *RegionalProposal) ValidateSubmission() error {
	if len(p.Title) < minTitleLen {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"title must be at least %d characters", minTitleLen)
	}
	if len(p.Description) < minDescriptionLen {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"description must be at least %d characters", minDescriptionLen)
	}
	if p.Scope.Primary == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "primary jurisdiction is required")
	}
	if len(p.Nodes) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one federation node must be assigned")
	}
	return nil
}

// ApplyVote increments the tally for kind and recomputes participation.
// Unknown kinds are ignored.
func (p *RegionalProposal) ApplyVote(kind VoteKind, now time.Time) {
	switch kind {
	case VoteSupport:
		p.Tallies.Support++
	case VoteOppose:
		p.Tallies.Oppose++
	case VoteAbstain:
		p.Tallies.Abstain++
	default:
		return
	}
	p.Tallies.Participation = p.participation()
	p.Meta.ModifiedAt = now
}

// ApplySyncStatus moves the proposal to target if the state machine allows
// it.
//
// Errors: returns CodeInvalidState on a forbidden transition, so callers
// retriggering a finished or in-flight sync get a conflict, not a failure.
func (p *RegionalProposal) ApplySyncStatus(target SyncStatus, now time.Time) error {
	if !p.SyncStatus.CanTransition(target) {
		return dErrors.Newf(dErrors.CodeInvalidState,
			"sync status cannot move from %s to %s", p.SyncStatus, target)
	}
	p.SyncStatus = target
	p.Meta.ModifiedAt = now
	return nil
}

func (p *RegionalProposal) participation() float64 {
	if p.Quorum.EligibleVoters <= 0 {
		return 0
	}
	return float64(p.Tallies.Total()) / float64(p.Quorum.EligibleVoters) * 100
}
