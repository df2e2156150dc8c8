//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"concord/internal/proposal/models"
	"concord/internal/proposal/store"
	id "concord/pkg/domain"
	"concord/pkg/platform/sentinel"
	"concord/pkg/testutil/containers"
)

type PostgresRepositorySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	repo     *store.Postgres
}

func TestPostgresRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRepositorySuite))
}

func (s *PostgresRepositorySuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())

	err := s.postgres.ApplySchema(context.Background(), store.Schema)
	s.Require().NoError(err)

	s.repo = store.NewPostgres(s.postgres.Pool)
}

func (s *PostgresRepositorySuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "regional_proposals")
	s.Require().NoError(err)
}

func (s *PostgresRepositorySuite) newProposal(minutes int) *models.RegionalProposal {
	submitted := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
	p := &models.RegionalProposal{
		ID:          id.NewProposalID(),
		Title:       "Cross-Border Water Rights Compact",
		Description: "Establishes a shared framework for allocating river basin water rights across member jurisdictions during drought years.",
		Scope: models.RegionScope{
			Primary:        "eu-west",
			Secondary:      []id.Jurisdiction{"eu-north", "eu-south"},
			FederationWide: true,
		},
		Type:  models.TypeCrossBorder,
		Nodes: []id.NodeID{"node-alpha", "node-beta"},
		CrossDeck: models.CrossDeckConfig{
			Surfaces: []id.Surface{id.SurfaceGovernance, id.SurfacePrivacy},
		},
		Quorum: models.QuorumConfig{
			MinParticipation: 25,
			TierWeighting:    true,
			EligibleVoters:   200,
		},
		Window: models.VotingWindow{
			Start:      submitted,
			End:        submitted.Add(14 * 24 * time.Hour),
			Extendable: true,
		},
		SyncStatus: models.SyncPending,
		Tallies:    models.VoteTallies{Support: 2, Oppose: 1, Participation: 1.5},
		Meta: models.ProposalMeta{
			Submitter:   "council-42",
			SubmittedAt: submitted,
			ModifiedAt:  submitted,
			Urgency:     models.UrgencyCritical,
		},
	}
	p.ContentHash = models.ComputeContentHash(p.Title, p.Description, p.Scope, p.Type)
	p.Meta.ValidatorHash = models.ComputeValidatorHash(p.ID, p.Meta.Submitter, p.Meta.SubmittedAt)
	return p
}

func (s *PostgresRepositorySuite) TestSaveAndLoadRoundTrip() {
	ctx := context.Background()
	p := s.newProposal(0)
	s.Require().NoError(s.repo.Save(ctx, p))

	loaded, err := s.repo.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded, 1)

	got := loaded[0]
	s.Equal(p.ID, got.ID)
	s.Equal(p.Title, got.Title)
	s.Equal(p.Scope.Primary, got.Scope.Primary)
	s.Equal(p.Scope.Secondary, got.Scope.Secondary)
	s.True(got.Scope.FederationWide)
	s.Equal(p.Type, got.Type)
	s.Equal(p.Nodes, got.Nodes)
	s.Equal(p.ContentHash, got.ContentHash)
	s.Equal(p.CrossDeck.Surfaces, got.CrossDeck.Surfaces)
	s.Equal(p.Quorum, got.Quorum)
	s.True(got.Window.Extendable)
	s.Equal(p.SyncStatus, got.SyncStatus)
	s.Equal(p.Tallies, got.Tallies)
	s.Equal(p.Meta.Submitter, got.Meta.Submitter)
	s.Equal(p.Meta.Urgency, got.Meta.Urgency)
	s.Equal(p.Meta.ValidatorHash, got.Meta.ValidatorHash)
	s.True(p.Meta.SubmittedAt.Equal(got.Meta.SubmittedAt))
	s.True(p.Window.End.Equal(got.Window.End))
}

func (s *PostgresRepositorySuite) TestSaveUpsertsOnConflict() {
	ctx := context.Background()
	p := s.newProposal(0)
	s.Require().NoError(s.repo.Save(ctx, p))

	p.Title = "Cross-Border Water Rights Compact (Amended)"
	p.SyncStatus = models.SyncSyncing
	s.Require().NoError(s.repo.Save(ctx, p))

	loaded, err := s.repo.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded, 1)
	s.Equal(p.Title, loaded[0].Title)
	s.Equal(models.SyncSyncing, loaded[0].SyncStatus)
}

func (s *PostgresRepositorySuite) TestLoadAllOrdersBySubmission() {
	ctx := context.Background()
	late := s.newProposal(30)
	early := s.newProposal(0)
	s.Require().NoError(s.repo.Save(ctx, late))
	s.Require().NoError(s.repo.Save(ctx, early))

	loaded, err := s.repo.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded, 2)
	s.Equal(early.ID, loaded[0].ID)
	s.Equal(late.ID, loaded[1].ID)
}

func (s *PostgresRepositorySuite) TestUpdateVotes() {
	ctx := context.Background()
	p := s.newProposal(0)
	s.Require().NoError(s.repo.Save(ctx, p))

	tallies := models.VoteTallies{Support: 10, Oppose: 4, Abstain: 2, Participation: 8}
	modified := p.Meta.SubmittedAt.Add(time.Hour)
	s.Require().NoError(s.repo.UpdateVotes(ctx, p.ID, tallies, modified))

	loaded, err := s.repo.LoadAll(ctx)
	s.Require().NoError(err)
	s.Equal(tallies, loaded[0].Tallies)
	s.True(modified.Equal(loaded[0].Meta.ModifiedAt))

	err = s.repo.UpdateVotes(ctx, id.NewProposalID(), tallies, modified)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRepositorySuite) TestUpdateSyncStatus() {
	ctx := context.Background()
	p := s.newProposal(0)
	s.Require().NoError(s.repo.Save(ctx, p))

	modified := p.Meta.SubmittedAt.Add(time.Hour)
	s.Require().NoError(s.repo.UpdateSyncStatus(ctx, p.ID, models.SyncSynchronized, modified))

	loaded, err := s.repo.LoadAll(ctx)
	s.Require().NoError(err)
	s.Equal(models.SyncSynchronized, loaded[0].SyncStatus)

	err = s.repo.UpdateSyncStatus(ctx, id.NewProposalID(), models.SyncFailed, modified)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
