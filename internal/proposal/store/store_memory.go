package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"concord/internal/proposal/models"
	id "concord/pkg/domain"
	"concord/pkg/platform/sentinel"
)

// InMemory is a map-backed Repository for development and tests.
type InMemory struct {
	mu        sync.RWMutex
	proposals map[id.ProposalID]*models.RegionalProposal
}

// NewInMemory constructs an empty in-memory repository.
func NewInMemory() *InMemory {
	return &InMemory{proposals: make(map[id.ProposalID]*models.RegionalProposal)}
}

// Save upserts the proposal.
func (s *InMemory) Save(_ context.Context, p *models.RegionalProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[p.ID] = copyProposal(p)
	return nil
}

// UpdateVotes persists the current tallies.
func (s *InMemory) UpdateVotes(_ context.Context, proposalID id.ProposalID, tallies models.VoteTallies, modifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[proposalID]
	if !ok {
		return fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
	}
	p.Tallies = tallies
	p.Meta.ModifiedAt = modifiedAt
	return nil
}

// UpdateSyncStatus persists a sync status transition.
func (s *InMemory) UpdateSyncStatus(_ context.Context, proposalID id.ProposalID, status models.SyncStatus, modifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[proposalID]
	if !ok {
		return fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
	}
	p.SyncStatus = status
	p.Meta.ModifiedAt = modifiedAt
	return nil
}

// LoadAll returns copies of every stored proposal.
func (s *InMemory) LoadAll(_ context.Context) ([]*models.RegionalProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.RegionalProposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		out = append(out, copyProposal(p))
	}
	return out, nil
}

func copyProposal(p *models.RegionalProposal) *models.RegionalProposal {
	clone := *p
	clone.Scope.Secondary = append([]id.Jurisdiction(nil), p.Scope.Secondary...)
	clone.Nodes = append([]id.NodeID(nil), p.Nodes...)
	clone.CrossDeck.Surfaces = append([]id.Surface(nil), p.CrossDeck.Surfaces...)
	return &clone
}
