package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
)

func TestVerifierStatusTransitions(t *testing.T) {
	tests := []struct {
		from    VerifierStatus
		to      VerifierStatus
		allowed bool
	}{
		{VerifierStatusPending, VerifierStatusActive, true},
		{VerifierStatusPending, VerifierStatusSuspended, true},
		{VerifierStatusPending, VerifierStatusRevoked, true},
		{VerifierStatusActive, VerifierStatusSuspended, true},
		{VerifierStatusActive, VerifierStatusRevoked, true},
		{VerifierStatusActive, VerifierStatusPending, false},
		{VerifierStatusSuspended, VerifierStatusActive, true}, // reinstatement
		{VerifierStatusSuspended, VerifierStatusRevoked, true},
		{VerifierStatusSuspended, VerifierStatusPending, false},
		{VerifierStatusRevoked, VerifierStatusActive, false},
		{VerifierStatusRevoked, VerifierStatusPending, false},
		{VerifierStatusRevoked, VerifierStatusSuspended, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestVerifierStatusIsValid(t *testing.T) {
	assert.True(t, VerifierStatusActive.IsValid())
	assert.True(t, VerifierStatusPending.IsValid())
	assert.False(t, VerifierStatus("deleted").IsValid())
	assert.False(t, VerifierStatus("").IsValid())
}

func TestVerifierTierIsValid(t *testing.T) {
	for _, tier := range []VerifierTier{TierBasic, TierAdvanced, TierExpert, TierAuthority} {
		assert.True(t, tier.IsValid(), "tier %s", tier)
	}
	assert.False(t, VerifierTier("platinum").IsValid())
}

func validResult(verifierID id.VerifierID, now time.Time) *ValidationResult {
	return NewValidationResult(verifierID, map[string]bool{
		"credential_hash":    true,
		"registration_proof": true,
		"identity_proof":     true,
		"competency_proof":   true,
		"chain_signature":    true,
	}, nil, now)
}

func invalidResult(verifierID id.VerifierID, now time.Time) *ValidationResult {
	return NewValidationResult(verifierID, map[string]bool{
		"credential_hash":    true,
		"registration_proof": false,
		"identity_proof":     true,
		"competency_proof":   true,
		"chain_signature":    true,
	}, []string{"registration proof check failed"}, now)
}

func TestApplyOutcome(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	verifierID := id.VerifierID("ver-1")

	t.Run("valid outcome activates pending entry", func(t *testing.T) {
		entry := &VerifierEntry{ID: verifierID, Status: VerifierStatusPending}
		entry.ApplyOutcome(validResult(verifierID, now), now)

		assert.Equal(t, VerifierStatusActive, entry.Status)
		assert.Equal(t, 1, entry.VerificationCount)
		assert.Equal(t, now, entry.LastValidatedAt)
		assert.InDelta(t, 1.0, entry.SuccessRate, 1e-9)
	})

	t.Run("valid outcome reinstates suspended entry", func(t *testing.T) {
		entry := &VerifierEntry{ID: verifierID, Status: VerifierStatusSuspended}
		entry.ApplyOutcome(validResult(verifierID, now), now)
		assert.Equal(t, VerifierStatusActive, entry.Status)
	})

	t.Run("invalid outcome suspends active entry", func(t *testing.T) {
		entry := &VerifierEntry{
			ID:                verifierID,
			Status:            VerifierStatusActive,
			VerificationCount: 3,
			SuccessRate:       1.0,
		}
		entry.ApplyOutcome(invalidResult(verifierID, now), now)

		assert.Equal(t, VerifierStatusSuspended, entry.Status)
		assert.Equal(t, 4, entry.VerificationCount)
		assert.InDelta(t, 0.75, entry.SuccessRate, 1e-9)
	})

	t.Run("invalid outcome leaves pending entry pending", func(t *testing.T) {
		entry := &VerifierEntry{ID: verifierID, Status: VerifierStatusPending}
		entry.ApplyOutcome(invalidResult(verifierID, now), now)
		assert.Equal(t, VerifierStatusPending, entry.Status)
	})

	t.Run("revoked entry never changes status", func(t *testing.T) {
		entry := &VerifierEntry{ID: verifierID, Status: VerifierStatusRevoked}
		entry.ApplyOutcome(validResult(verifierID, now), now)
		assert.Equal(t, VerifierStatusRevoked, entry.Status)
		assert.Equal(t, 1, entry.VerificationCount)
	})
}

func TestRegistryValidate(t *testing.T) {
	registry := func() *VerifierRegistry {
		return &VerifierRegistry{
			ID:              id.RegistryID("reg-main"),
			Verifiers:       []VerifierEntry{{Status: VerifierStatusActive}, {Status: VerifierStatusPending}},
			TotalVerifiers:  2,
			ActiveVerifiers: 1,
		}
	}

	t.Run("consistent registry passes", func(t *testing.T) {
		require.NoError(t, registry().Validate())
	})

	t.Run("total mismatch fails", func(t *testing.T) {
		r := registry()
		r.TotalVerifiers = 5
		err := r.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("active exceeding total fails", func(t *testing.T) {
		r := registry()
		r.ActiveVerifiers = 3
		err := r.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("negative active fails", func(t *testing.T) {
		r := registry()
		r.ActiveVerifiers = -1
		require.Error(t, r.Validate())
	})
}

func TestRegistryRecount(t *testing.T) {
	r := &VerifierRegistry{
		Verifiers: []VerifierEntry{
			{Status: VerifierStatusActive},
			{Status: VerifierStatusSuspended},
			{Status: VerifierStatusActive},
		},
	}
	r.Recount()
	assert.Equal(t, 3, r.TotalVerifiers)
	assert.Equal(t, 2, r.ActiveVerifiers)
	assert.NoError(t, r.Validate())
}

func TestNewValidationResult(t *testing.T) {
	now := time.Now()

	t.Run("valid only when all checks pass", func(t *testing.T) {
		result := validResult(id.VerifierID("v"), now)
		assert.True(t, result.IsValid)
		assert.Empty(t, result.ErrorMessages)
	})

	t.Run("any failing check invalidates", func(t *testing.T) {
		result := invalidResult(id.VerifierID("v"), now)
		assert.False(t, result.IsValid)
		assert.NotEmpty(t, result.ErrorMessages)
	})

	t.Run("empty check map is never valid", func(t *testing.T) {
		result := NewValidationResult(id.VerifierID("v"), nil, nil, now)
		assert.False(t, result.IsValid)
	})
}

func TestSummarize(t *testing.T) {
	t.Run("empty input yields zero summary", func(t *testing.T) {
		summary := Summarize(nil)
		assert.Equal(t, SyncSummary{}, summary)
	})

	t.Run("aggregates mixed results", func(t *testing.T) {
		results := []*SyncResult{
			{VerifiersValidated: 7, VerifiersFailed: 3, ConsensusAchieved: true, Duration: 100 * time.Millisecond},
			{VerifiersValidated: 2, VerifiersFailed: 8, ConsensusAchieved: false, Duration: 300 * time.Millisecond},
			{Errors: []string{"fetch registry: unreachable"}, Duration: 50 * time.Millisecond},
		}

		summary := Summarize(results)
		assert.Equal(t, 3, summary.TotalProcessed)
		assert.Equal(t, 2, summary.SuccessfulSyncs)
		assert.Equal(t, 1, summary.FailedSyncs)
		assert.Equal(t, 9, summary.TotalValidated)
		assert.Equal(t, 11, summary.TotalFailures)
		assert.Equal(t, 150*time.Millisecond, summary.AverageDuration)
		assert.InDelta(t, 100.0/3, summary.ConsensusRate, 1e-9)
	})

	t.Run("pure function yields identical output on repeat", func(t *testing.T) {
		results := []*SyncResult{
			{VerifiersValidated: 5, ConsensusAchieved: true, Duration: time.Second},
			{VerifiersValidated: 1, VerifiersFailed: 4, Duration: time.Second},
		}
		first := Summarize(results)
		second := Summarize(results)
		assert.Equal(t, first, second)
	})
}
