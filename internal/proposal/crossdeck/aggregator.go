// Package crossdeck aggregates ballots cast against one proposal through
// multiple voting surfaces into a single combined outcome.
package crossdeck

import (
	"sync"

	"concord/internal/proposal/models"
	id "concord/pkg/domain"
)

// SurfaceTally tracks ballots collected through one voting surface.
type SurfaceTally struct {
	Enabled bool `json:"enabled"`
	Ballots int  `json:"ballots"`
}

// Overlay is the cross-deck voting record for one proposal. Consensus is a
// simple majority of weighted support over total participants; the overlay
// is tier-unaware, so any tier weighting happens before ballots reach it.
type Overlay struct {
	ProposalID         id.ProposalID                `json:"proposal_id"`
	Surfaces           map[id.Surface]*SurfaceTally `json:"surfaces"`
	TotalParticipants  int                          `json:"total_participants"`
	WeightedSupport    int                          `json:"weighted_support"`
	CrossDeckConsensus bool                         `json:"cross_deck_consensus"`
}

// Aggregator holds the overlays for every cross-deck proposal, keyed by
// proposal ID. Overlay lifetime follows the proposal: created on
// submission, mutated on every counted ballot, never removed.
type Aggregator struct {
	mu       sync.RWMutex
	overlays map[id.ProposalID]*Overlay
}

// NewAggregator constructs an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{overlays: make(map[id.ProposalID]*Overlay)}
}

// Init creates a zeroed overlay for the proposal with one tally per enabled
// surface. No overlay is created when surfaces is empty. Re-initializing
// replaces any previous overlay.
func (a *Aggregator) Init(proposalID id.ProposalID, surfaces []id.Surface) {
	if len(surfaces) == 0 {
		return
	}

	overlay := &Overlay{
		ProposalID: proposalID,
		Surfaces:   make(map[id.Surface]*SurfaceTally, len(surfaces)),
	}
	for _, surface := range surfaces {
		overlay.Surfaces[surface] = &SurfaceTally{Enabled: true}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.overlays[proposalID] = overlay
}

// Record counts a ballot cast through the given surface. It reports false
// when the proposal has no overlay or the surface is not enabled on it; a
// rejected ballot changes nothing.
func (a *Aggregator) Record(proposalID id.ProposalID, kind models.VoteKind, surface id.Surface) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	overlay, ok := a.overlays[proposalID]
	if !ok {
		return false
	}
	tally, ok := overlay.Surfaces[surface]
	if !ok || !tally.Enabled {
		return false
	}

	tally.Ballots++
	overlay.TotalParticipants++
	if kind == models.VoteSupport {
		overlay.WeightedSupport++
	}
	overlay.CrossDeckConsensus =
		float64(overlay.WeightedSupport)/float64(overlay.TotalParticipants) > 0.5
	return true
}

// Overlay returns a copy of the proposal's overlay, and false when the
// proposal never opted into cross-deck voting.
func (a *Aggregator) Overlay(proposalID id.ProposalID) (*Overlay, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	overlay, ok := a.overlays[proposalID]
	if !ok {
		return nil, false
	}
	return copyOverlay(overlay), true
}

func copyOverlay(overlay *Overlay) *Overlay {
	clone := *overlay
	clone.Surfaces = make(map[id.Surface]*SurfaceTally, len(overlay.Surfaces))
	for surface, tally := range overlay.Surfaces {
		copied := *tally
		clone.Surfaces[surface] = &copied
	}
	return &clone
}
