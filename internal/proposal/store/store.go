// Package store persists regional proposals. The index owns the hot read
// path; the repository is the durable record the index rebuilds from on
// startup.
package store

import (
	"context"
	"time"

	"concord/internal/proposal/models"
	id "concord/pkg/domain"
)

// Repository is the durable store for regional proposals.
type Repository interface {
	// Save upserts the full proposal row.
	Save(ctx context.Context, p *models.RegionalProposal) error
	// UpdateVotes persists the current tallies.
	UpdateVotes(ctx context.Context, proposalID id.ProposalID, tallies models.VoteTallies, modifiedAt time.Time) error
	// UpdateSyncStatus persists a sync status transition.
	UpdateSyncStatus(ctx context.Context, proposalID id.ProposalID, status models.SyncStatus, modifiedAt time.Time) error
	// LoadAll returns every stored proposal for index rebuild.
	LoadAll(ctx context.Context) ([]*models.RegionalProposal, error)
}
