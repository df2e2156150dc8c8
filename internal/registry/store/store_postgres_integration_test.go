//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"concord/internal/registry/models"
	"concord/internal/registry/store"
	id "concord/pkg/domain"
	"concord/pkg/testutil/containers"
)

type PostgresResultStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresResultStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresResultStoreSuite))
}

func (s *PostgresResultStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())

	err := s.postgres.ApplySchema(context.Background(), store.Schema)
	s.Require().NoError(err)

	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresResultStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "registry_sync_results")
	s.Require().NoError(err)
}

func (s *PostgresResultStoreSuite) record(registryID string, height int64, ts time.Time) *models.SyncResult {
	return &models.SyncResult{
		RegistryID:         id.RegistryID(registryID),
		Timestamp:          ts,
		ChainHeight:        height,
		ConsensusAchieved:  height%2 == 0,
		ConsensusPercent:   70,
		VerifiersProcessed: 10,
		VerifiersValidated: 7,
		VerifiersFailed:    3,
		Duration:           125 * time.Millisecond,
	}
}

func (s *PostgresResultStoreSuite) TestRecordAndListRecent() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := int64(1); i <= 3; i++ {
		result := s.record("reg-main", i, base.Add(time.Duration(i)*time.Second))
		s.Require().NoError(s.store.Record(ctx, result))
	}

	results, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(results, 2)

	s.Equal(int64(3), results[0].ChainHeight)
	s.Equal(int64(2), results[1].ChainHeight)
	s.Equal(125*time.Millisecond, results[0].Duration)
	s.Equal(10, results[0].VerifiersProcessed)
}

func (s *PostgresResultStoreSuite) TestErrorListsRoundTrip() {
	ctx := context.Background()

	result := s.record("reg-main", 1, time.Now().UTC())
	result.Errors = []string{"fetch registry: unreachable", "snapshot stale"}
	result.Warnings = []string{"3 verifiers failed validation"}
	s.Require().NoError(s.store.Record(ctx, result))

	results, err := s.store.ListRecent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(result.Errors, results[0].Errors)
	s.Equal(result.Warnings, results[0].Warnings)
	s.True(results[0].Failed())
}

func (s *PostgresResultStoreSuite) TestListByRegistryFilters() {
	ctx := context.Background()
	base := time.Now().UTC()

	s.Require().NoError(s.store.Record(ctx, s.record("reg-a", 1, base)))
	s.Require().NoError(s.store.Record(ctx, s.record("reg-b", 2, base.Add(time.Second))))
	s.Require().NoError(s.store.Record(ctx, s.record("reg-a", 3, base.Add(2*time.Second))))

	results, err := s.store.ListByRegistry(ctx, id.RegistryID("reg-a"), 10)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(int64(3), results[0].ChainHeight)
	s.Equal(int64(1), results[1].ChainHeight)
}
