package models

import (
	"time"

	id "concord/pkg/domain"
)

// Filter selects proposals from the index. Zero-valued fields match
// everything; set fields compose as logical AND.
type Filter struct {
	Jurisdiction    id.Jurisdiction
	Node            id.NodeID
	Type            ProposalType
	Urgency         Urgency
	SyncStatus      SyncStatus
	SubmittedAfter  time.Time
	SubmittedBefore time.Time
	CrossDeckOnly   bool
}

// IsZero reports whether no filter field is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether the proposal satisfies every set field.
func (f Filter) Matches(p *RegionalProposal) bool {
	if f.Jurisdiction != "" && !p.InJurisdiction(f.Jurisdiction) {
		return false
	}
	if f.Node != "" && !p.AssignedTo(f.Node) {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Urgency != "" && p.Meta.Urgency != f.Urgency {
		return false
	}
	if f.SyncStatus != "" && p.SyncStatus != f.SyncStatus {
		return false
	}
	if !f.SubmittedAfter.IsZero() && p.Meta.SubmittedAt.Before(f.SubmittedAfter) {
		return false
	}
	if !f.SubmittedBefore.IsZero() && p.Meta.SubmittedAt.After(f.SubmittedBefore) {
		return false
	}
	if f.CrossDeckOnly && !p.CrossDeck.Enabled() {
		return false
	}
	return true
}

// InJurisdiction reports whether the jurisdiction is the proposal's primary
// or one of its secondaries.
func (p *RegionalProposal) InJurisdiction(jurisdiction id.Jurisdiction) bool {
	if p.Scope.Primary == jurisdiction {
		return true
	}
	for _, secondary := range p.Scope.Secondary {
		if secondary == jurisdiction {
			return true
		}
	}
	return false
}

// AssignedTo reports whether the node is one of the proposal's federation
// nodes.
func (p *RegionalProposal) AssignedTo(node id.NodeID) bool {
	for _, assigned := range p.Nodes {
		if assigned == node {
			return true
		}
	}
	return false
}
