// Package index keeps the canonical in-memory proposal store and its
// secondary indexes. The canonical map and all postings mutate together
// under one lock: a proposal is either visible everywhere or nowhere.
package index

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"concord/internal/proposal/models"
	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
	"concord/pkg/platform/sentinel"
)

// Index is the arena-and-index store for regional proposals. Proposals are
// held by ID in the canonical map; the jurisdiction, node, and urgency
// indexes hold postings into it. Reads run concurrently; every mutation
// takes the write lock across the arena and all indexes.
type Index struct {
	mu             sync.RWMutex
	proposals      map[id.ProposalID]*models.RegionalProposal
	order          []id.ProposalID
	byJurisdiction map[id.Jurisdiction][]id.ProposalID
	byNode         map[id.NodeID][]id.ProposalID
	byUrgency      map[models.Urgency][]id.ProposalID
}

// New constructs an empty index.
func New() *Index {
	idx := &Index{}
	idx.resetLocked()
	return idx
}

func (idx *Index) resetLocked() {
	idx.proposals = make(map[id.ProposalID]*models.RegionalProposal)
	idx.order = idx.order[:0]
	idx.byJurisdiction = make(map[id.Jurisdiction][]id.ProposalID)
	idx.byNode = make(map[id.NodeID][]id.ProposalID)
	idx.byUrgency = make(map[models.Urgency][]id.ProposalID)
}

// Insert adds a new proposal to the arena and all postings atomically.
//
// Errors: returns CodeConflict if the ID is already present.
func (idx *Index) Insert(p *models.RegionalProposal) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.proposals[p.ID]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "proposal %s already exists", p.ID)
	}
	idx.insertLocked(p)
	return nil
}

// Upsert inserts the proposal or replaces an existing one with the same ID,
// rewriting its postings. Federation peers re-push proposals; the latest
// state wins.
func (idx *Index) Upsert(p *models.RegionalProposal) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.proposals[p.ID]; exists {
		idx.removeLocked(p.ID)
	}
	idx.insertLocked(p)
}

func (idx *Index) insertLocked(p *models.RegionalProposal) {
	stored := copyProposal(p)
	idx.proposals[stored.ID] = stored
	idx.order = append(idx.order, stored.ID)

	seen := make(map[id.Jurisdiction]struct{}, len(stored.Scope.Secondary)+1)
	for _, jurisdiction := range stored.Scope.Jurisdictions() {
		if _, dup := seen[jurisdiction]; dup {
			continue
		}
		seen[jurisdiction] = struct{}{}
		idx.byJurisdiction[jurisdiction] = append(idx.byJurisdiction[jurisdiction], stored.ID)
	}
	for _, node := range stored.Nodes {
		idx.byNode[node] = append(idx.byNode[node], stored.ID)
	}
	idx.byUrgency[stored.Meta.Urgency] = append(idx.byUrgency[stored.Meta.Urgency], stored.ID)
}

func (idx *Index) removeLocked(proposalID id.ProposalID) {
	p, ok := idx.proposals[proposalID]
	if !ok {
		return
	}
	delete(idx.proposals, proposalID)
	idx.order = removeID(idx.order, proposalID)
	for _, jurisdiction := range p.Scope.Jurisdictions() {
		idx.byJurisdiction[jurisdiction] = removeID(idx.byJurisdiction[jurisdiction], proposalID)
	}
	for _, node := range p.Nodes {
		idx.byNode[node] = removeID(idx.byNode[node], proposalID)
	}
	idx.byUrgency[p.Meta.Urgency] = removeID(idx.byUrgency[p.Meta.Urgency], proposalID)
}

// Get returns a copy of the proposal, and false when it does not exist.
func (idx *Index) Get(proposalID id.ProposalID) (*models.RegionalProposal, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	p, ok := idx.proposals[proposalID]
	if !ok {
		return nil, false
	}
	return copyProposal(p), true
}

// Query returns copies of every proposal matching the filter, most recently
// submitted first. Filter fields compose as logical AND.
func (idx *Index) Query(filter models.Filter) []*models.RegionalProposal {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	candidates := idx.candidatesLocked(filter)
	out := make([]*models.RegionalProposal, 0, len(candidates))
	for i := len(candidates) - 1; i >= 0; i-- {
		p := idx.proposals[candidates[i]]
		if filter.Matches(p) {
			out = append(out, copyProposal(p))
		}
	}
	return out
}

// candidatesLocked narrows the scan using the most selective posting list
// the filter allows. Postings are insertion-ordered, so reverse iteration
// by the caller yields newest-first.
func (idx *Index) candidatesLocked(filter models.Filter) []id.ProposalID {
	switch {
	case filter.Jurisdiction != "":
		return idx.byJurisdiction[filter.Jurisdiction]
	case filter.Node != "":
		return idx.byNode[filter.Node]
	case filter.Urgency != "":
		return idx.byUrgency[filter.Urgency]
	default:
		return idx.order
	}
}

// RecordVote applies a ballot to the proposal's tallies. It returns the
// updated proposal and true, or nil and false when the ID is unknown:
// absence is an expected outcome, not an error.
func (idx *Index) RecordVote(proposalID id.ProposalID, kind models.VoteKind, now time.Time) (*models.RegionalProposal, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	p, ok := idx.proposals[proposalID]
	if !ok {
		return nil, false
	}
	p.ApplyVote(kind, now)
	return copyProposal(p), true
}

// SetSyncStatus moves the proposal through its sync state machine.
//
// Errors: wraps sentinel.ErrNotFound for unknown IDs; returns
// CodeInvalidState for transitions the state machine forbids.
func (idx *Index) SetSyncStatus(proposalID id.ProposalID, target models.SyncStatus, now time.Time) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	p, ok := idx.proposals[proposalID]
	if !ok {
		return fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
	}
	return p.ApplySyncStatus(target, now)
}

// AnalyticsFor aggregates the jurisdiction's proposals into regional
// analytics.
func (idx *Index) AnalyticsFor(jurisdiction id.Jurisdiction) models.RegionalAnalytics {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	postings := idx.byJurisdiction[jurisdiction]
	proposals := make([]*models.RegionalProposal, 0, len(postings))
	for _, proposalID := range postings {
		proposals = append(proposals, idx.proposals[proposalID])
	}
	return models.ComputeAnalytics(jurisdiction, proposals)
}

// Rebuild replaces the arena and all postings from a repository snapshot,
// oldest submission first so query order survives restarts.
//
// Errors: returns CodeInvariantViolation when the snapshot carries
// duplicate IDs.
func (idx *Index) Rebuild(proposals []*models.RegionalProposal) error {
	sorted := make([]*models.RegionalProposal, len(proposals))
	copy(sorted, proposals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Meta.SubmittedAt.Before(sorted[j].Meta.SubmittedAt)
	})

	seen := make(map[id.ProposalID]struct{}, len(sorted))
	for _, p := range sorted {
		if _, dup := seen[p.ID]; dup {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"snapshot contains proposal %s twice", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.resetLocked()
	for _, p := range sorted {
		idx.insertLocked(p)
	}
	return nil
}

// Len returns the number of proposals in the arena.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.proposals)
}

func removeID(ids []id.ProposalID, target id.ProposalID) []id.ProposalID {
	for i, candidate := range ids {
		if candidate == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func copyProposal(p *models.RegionalProposal) *models.RegionalProposal {
	clone := *p
	clone.Scope.Secondary = append([]id.Jurisdiction(nil), p.Scope.Secondary...)
	clone.Nodes = append([]id.NodeID(nil), p.Nodes...)
	clone.CrossDeck.Surfaces = append([]id.Surface(nil), p.CrossDeck.Surfaces...)
	return &clone
}
