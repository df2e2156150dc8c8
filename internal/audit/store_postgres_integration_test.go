//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"concord/internal/audit"
	"concord/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())

	err := s.postgres.ApplySchema(context.Background(), audit.Schema)
	s.Require().NoError(err)

	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "audit_events", "audit_outbox")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) event(subject string, action audit.Action) audit.Event {
	return audit.Event{
		ID:        uuid.New(),
		Category:  action.Category(),
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		Subject:   subject,
		Action:    string(action),
		Actor:     "node-alpha",
	}
}

func (s *PostgresStoreSuite) TestAppendAndListBySubject() {
	ctx := context.Background()

	first := s.event("proposal-1", audit.EventProposalSubmitted)
	second := s.event("proposal-1", audit.EventVoteRecorded)
	other := s.event("proposal-2", audit.EventVoteRecorded)

	s.Require().NoError(s.store.Append(ctx, first))
	s.Require().NoError(s.store.Append(ctx, second))
	s.Require().NoError(s.store.Append(ctx, other))

	events, err := s.store.ListBySubject(ctx, "proposal-1", 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	// Oldest first within the returned window
	s.Equal(first.ID, events[0].ID)
	s.Equal(second.ID, events[1].ID)
	s.Equal(audit.CategoryGovernance, events[0].Category)
}

func (s *PostgresStoreSuite) TestListBySubjectHonorsLimit() {
	ctx := context.Background()

	var last audit.Event
	for i := 0; i < 5; i++ {
		last = s.event("busy", audit.EventRegistrySyncFinished)
		last.Timestamp = last.Timestamp.Add(time.Duration(i) * time.Second)
		s.Require().NoError(s.store.Append(ctx, last))
	}

	events, err := s.store.ListBySubject(ctx, "busy", 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	// Limit keeps the newest rows
	s.Equal(last.ID, events[1].ID)
}

func (s *PostgresStoreSuite) TestAppendIsIdempotentPerID() {
	ctx := context.Background()

	event := s.event("proposal-9", audit.EventPeerPushReceived)
	s.Require().NoError(s.store.Append(ctx, event))
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListBySubject(ctx, "proposal-9", 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PostgresStoreSuite) TestOutboxLifecycle() {
	ctx := context.Background()

	event := s.event("proposal-3", audit.EventProposalSyncFinished)
	s.Require().NoError(s.store.Append(ctx, event))

	entries, err := s.store.UnpublishedOutbox(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(event.ID, entries[0].ID)
	s.Equal("proposal-3", entries[0].AggregateID)
	s.Equal(string(audit.EventProposalSyncFinished), entries[0].EventType)
	s.NotEmpty(entries[0].Payload)

	s.Require().NoError(s.store.MarkPublished(ctx, []uuid.UUID{event.ID}))

	entries, err = s.store.UnpublishedOutbox(ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}
