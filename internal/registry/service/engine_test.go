package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"concord/internal/audit"
	"concord/internal/registry/consensus"
	"concord/internal/registry/fetcher"
	"concord/internal/registry/fetcher/mocks"
	"concord/internal/registry/models"
	"concord/internal/registry/proof"
	"concord/internal/registry/store"
	id "concord/pkg/domain"
	"concord/pkg/requestcontext"
)

type EngineSuite struct {
	suite.Suite
	ctx context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
}

// registryFixture builds a registry of total entries where the first failing
// entries carry one malformed proof artifact each.
func registryFixture(registryID string, total, failing int) *models.VerifierRegistry {
	verifiers := make([]models.VerifierEntry, 0, total)
	for i := 0; i < total; i++ {
		entry := models.VerifierEntry{
			ID:             id.VerifierID(fmt.Sprintf("ver-%02d", i)),
			CredentialHash: "3a7bd3e2360a3d29eea436fcfb7e44c7",
			Status:         models.VerifierStatusPending,
			Tier:           models.TierBasic,
			Proofs: models.ProofBundle{
				Registration:   "reg-proof-0123456789abcdef",
				Identity:       "idn-proof-0123456789abcdef",
				Competency:     "cmp-proof-0123456789abcdef",
				ChainSignature: "sig-proof-0123456789abcdef",
			},
		}
		if i < failing {
			entry.Proofs.Identity = "bad"
		}
		verifiers = append(verifiers, entry)
	}
	registry := &models.VerifierRegistry{
		ID:        id.RegistryID(registryID),
		Version:   1,
		ChainID:   "concord-test",
		Verifiers: verifiers,
	}
	registry.Recount()
	return registry
}

func newEngine(f fetcher.Fetcher, opts ...Option) *Engine {
	validator := proof.New(proof.NewDigestStrategy(0))
	return New(f, validator, consensus.NewThresholdEvaluator(consensus.DefaultThreshold), opts...)
}

func (s *EngineSuite) TestZeroVerifiersYieldsNoConsensus() {
	engine := newEngine(fetcher.NewStatic(registryFixture("reg-empty", 0, 0)))

	result := engine.ValidateAndSync(s.ctx, id.RegistryID("reg-empty"))

	s.False(result.ConsensusAchieved)
	s.Zero(result.ConsensusPercent)
	s.Zero(result.VerifiersProcessed)
	s.Zero(result.VerifiersValidated)
	s.Empty(result.Errors)
}

func (s *EngineSuite) TestSevenOfTenReachesConsensus() {
	registry := registryFixture("reg-main", 10, 3)
	registry.Sync.ConsensusThreshold = 0.67
	engine := newEngine(fetcher.NewStatic(registry))

	result := engine.ValidateAndSync(s.ctx, id.RegistryID("reg-main"))

	s.Equal(10, result.VerifiersProcessed)
	s.Equal(7, result.VerifiersValidated)
	s.Equal(3, result.VerifiersFailed)
	s.True(result.ConsensusAchieved)
	s.InDelta(70.0, result.ConsensusPercent, 1e-9)
	s.Empty(result.Errors)
	s.NotEmpty(result.Warnings)
}

func (s *EngineSuite) TestFetchFailureDegradesToFailedResult() {
	ctrl := gomock.NewController(s.T())
	mockFetcher := mocks.NewMockFetcher(ctrl)
	mockFetcher.EXPECT().
		Fetch(gomock.Any(), id.RegistryID("reg-down")).
		Return(nil, errors.New("registry source unreachable"))

	engine := newEngine(mockFetcher)
	result := engine.ValidateAndSync(s.ctx, id.RegistryID("reg-down"))

	s.Zero(result.VerifiersProcessed)
	s.Zero(result.VerifiersValidated)
	s.False(result.ConsensusAchieved)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], "fetch registry")
	s.True(result.Failed())
}

func (s *EngineSuite) TestInvariantViolationFailsSync() {
	registry := registryFixture("reg-corrupt", 3, 0)
	registry.ActiveVerifiers = 99

	ctrl := gomock.NewController(s.T())
	mockFetcher := mocks.NewMockFetcher(ctrl)
	mockFetcher.EXPECT().
		Fetch(gomock.Any(), id.RegistryID("reg-corrupt")).
		Return(registry, nil)

	auditStore := audit.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := newEngine(mockFetcher,
		WithLogger(logger),
		WithAuditPublisher(audit.NewPublisher(auditStore)),
	)
	result := engine.ValidateAndSync(s.ctx, id.RegistryID("reg-corrupt"))

	s.True(result.Failed())
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], "exceeds total_verifiers")
	s.Zero(result.VerifiersProcessed)

	events, err := auditStore.ListBySubject(s.ctx, "reg-corrupt", 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventConsistencyViolation), events[0].Action)
	s.Equal(audit.CategorySecurity, events[0].Category)
}

func (s *EngineSuite) TestBatchSyncPreservesOrderAndIsolatesFailures() {
	static := fetcher.NewStatic(
		registryFixture("reg-a", 4, 0),
		registryFixture("reg-c", 2, 0),
	)
	engine := newEngine(static, WithWorkers(2))

	refs := []id.RegistryID{"reg-a", "reg-missing", "reg-c"}
	results := engine.BatchSync(s.ctx, refs)

	s.Require().Len(results, 3)
	s.Equal(id.RegistryID("reg-a"), results[0].RegistryID)
	s.Equal(id.RegistryID("reg-missing"), results[1].RegistryID)
	s.Equal(id.RegistryID("reg-c"), results[2].RegistryID)

	s.False(results[0].Failed())
	s.Equal(4, results[0].VerifiersValidated)
	s.True(results[1].Failed())
	s.False(results[2].Failed())
	s.Equal(2, results[2].VerifiersValidated)
}

func (s *EngineSuite) TestChainHeightMonotonic() {
	engine := newEngine(fetcher.NewStatic(registryFixture("reg-main", 1, 0)))

	first := engine.ValidateAndSync(s.ctx, id.RegistryID("reg-main"))
	second := engine.ValidateAndSync(s.ctx, id.RegistryID("reg-main"))

	s.Greater(second.ChainHeight, first.ChainHeight)
}

func (s *EngineSuite) TestRegistryThresholdOverridesEngineDefault() {
	s.Run("registry-published threshold wins", func() {
		registry := registryFixture("reg-lenient", 10, 4)
		registry.Sync.ConsensusThreshold = 0.5

		validator := proof.New(proof.NewDigestStrategy(0))
		engine := New(fetcher.NewStatic(registry), validator, consensus.NewThresholdEvaluator(0.9))

		result := engine.ValidateAndSync(s.ctx, id.RegistryID("reg-lenient"))
		s.Equal(6, result.VerifiersValidated)
		s.True(result.ConsensusAchieved)
	})

	s.Run("engine default applies when registry is silent", func() {
		registry := registryFixture("reg-strict", 10, 4)

		validator := proof.New(proof.NewDigestStrategy(0))
		engine := New(fetcher.NewStatic(registry), validator, consensus.NewThresholdEvaluator(0.9))

		result := engine.ValidateAndSync(s.ctx, id.RegistryID("reg-strict"))
		s.Equal(6, result.VerifiersValidated)
		s.False(result.ConsensusAchieved)
	})
}

func (s *EngineSuite) TestSyncTimestampComesFromRequestClock() {
	fixed := time.Date(2026, 7, 4, 8, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.ctx, fixed)

	engine := newEngine(fetcher.NewStatic(registryFixture("reg-main", 1, 0)))
	result := engine.ValidateAndSync(ctx, id.RegistryID("reg-main"))

	s.Equal(fixed, result.Timestamp)
}

func (s *EngineSuite) TestResultStoreReceivesEverySync() {
	history := store.NewInMemory(10)
	engine := newEngine(
		fetcher.NewStatic(registryFixture("reg-main", 2, 0)),
		WithResultStore(history),
	)

	engine.ValidateAndSync(s.ctx, id.RegistryID("reg-main"))
	engine.ValidateAndSync(s.ctx, id.RegistryID("reg-missing"))

	recent, err := history.ListRecent(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(recent, 2)
}

func (s *EngineSuite) TestAuditTrailRecordsSyncs() {
	auditStore := audit.NewInMemoryStore()
	engine := newEngine(
		fetcher.NewStatic(registryFixture("reg-main", 2, 1)),
		WithAuditPublisher(audit.NewPublisher(auditStore)),
	)

	engine.ValidateAndSync(s.ctx, id.RegistryID("reg-main"))

	events, err := auditStore.ListBySubject(s.ctx, "reg-main", 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventRegistrySyncFinished), events[0].Action)
	s.Contains(events[0].Reason, "validated 1 of 2")
}

func (s *EngineSuite) TestCanceledContextFailsOutstandingChecks() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	validator := proof.New(proof.NewDigestStrategy(20 * time.Millisecond))
	engine := New(
		fetcher.NewStatic(registryFixture("reg-main", 5, 0)),
		validator,
		consensus.NewThresholdEvaluator(consensus.DefaultThreshold),
	)

	result := engine.ValidateAndSync(ctx, id.RegistryID("reg-main"))

	s.Equal(5, result.VerifiersProcessed)
	s.Zero(result.VerifiersValidated)
	s.Equal(5, result.VerifiersFailed)
	s.False(result.ConsensusAchieved)
}

func (s *EngineSuite) TestSummaryMatchesModelAggregation() {
	engine := newEngine(fetcher.NewStatic(registryFixture("reg-main", 2, 0)))
	results := engine.BatchSync(s.ctx, []id.RegistryID{"reg-main", "reg-missing"})

	summary := engine.Summary(results)
	s.Equal(models.Summarize(results), summary)
	s.Equal(2, summary.TotalProcessed)
	s.Equal(1, summary.SuccessfulSyncs)
	s.Equal(1, summary.FailedSyncs)
}
