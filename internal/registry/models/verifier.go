package models

import (
	"time"

	id "concord/pkg/domain"
)

// VerifierStatus is the lifecycle state of a verifier entry.
type VerifierStatus string

const (
	VerifierStatusPending   VerifierStatus = "pending"
	VerifierStatusActive    VerifierStatus = "active"
	VerifierStatusSuspended VerifierStatus = "suspended"
	VerifierStatusRevoked   VerifierStatus = "revoked"
)

func (s VerifierStatus) IsValid() bool {
	switch s {
	case VerifierStatusPending, VerifierStatusActive, VerifierStatusSuspended, VerifierStatusRevoked:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to target. Transitions
// only advance through the lifecycle, with one exception: a suspended
// verifier may be reinstated to active. Revoked is terminal.
func (s VerifierStatus) CanTransitionTo(target VerifierStatus) bool {
	switch s {
	case VerifierStatusPending:
		return target == VerifierStatusActive || target == VerifierStatusSuspended || target == VerifierStatusRevoked
	case VerifierStatusActive:
		return target == VerifierStatusSuspended || target == VerifierStatusRevoked
	case VerifierStatusSuspended:
		return target == VerifierStatusActive || target == VerifierStatusRevoked
	case VerifierStatusRevoked:
		return false
	}
	return false
}

// VerifierTier classifies a verifier's certification level.
type VerifierTier string

const (
	TierBasic     VerifierTier = "basic"
	TierAdvanced  VerifierTier = "advanced"
	TierExpert    VerifierTier = "expert"
	TierAuthority VerifierTier = "authority"
)

func (t VerifierTier) IsValid() bool {
	switch t {
	case TierBasic, TierAdvanced, TierExpert, TierAuthority:
		return true
	}
	return false
}

// ProofBundle carries the opaque proof artifacts attached to a verifier
// entry. The engine treats each artifact as an opaque string; only the
// check strategies interpret them.
type ProofBundle struct {
	Registration   string `json:"registration"`
	Identity       string `json:"identity"`
	Competency     string `json:"competency"`
	ChainSignature string `json:"chain_signature"`
}

// VerifierMetadata is descriptive, non-lifecycle state attached to an entry.
type VerifierMetadata struct {
	ReputationScore float64         `json:"reputation_score"`
	Jurisdiction    id.Jurisdiction `json:"jurisdiction"`
	Certifications  []string        `json:"certifications,omitempty"`
}

// VerifierEntry is one credentialed verifier inside a registry snapshot.
//
// Invariants:
//   - Status transitions follow VerifierStatus.CanTransitionTo
//   - Entries are never deleted; revocation is the terminal state
//   - SuccessRate is the running fraction of validation passes in [0, 1]
//   - Mutated only through ApplyOutcome; snapshots fetched from a registry
//     source are otherwise read-only
type VerifierEntry struct {
	ID                id.VerifierID    `json:"id"`
	PublicKey         string           `json:"public_key"`
	CredentialHash    string           `json:"credential_hash"`
	RegisteredAt      time.Time        `json:"registered_at"`
	LastValidatedAt   time.Time        `json:"last_validated_at"`
	Status            VerifierStatus   `json:"status"`
	Tier              VerifierTier     `json:"tier"`
	Specializations   []string         `json:"specializations,omitempty"`
	VerificationCount int              `json:"verification_count"`
	SuccessRate       float64          `json:"success_rate"`
	Proofs            ProofBundle      `json:"proofs"`
	Metadata          VerifierMetadata `json:"metadata"`
}

// ApplyOutcome folds one validation pass into the entry: it stamps the
// validation time, advances the running success rate, and moves the status.
// A valid outcome activates the entry (including reinstating a suspended
// one); an invalid outcome suspends an active entry. Revoked entries never
// change. Transitions the lifecycle forbids are skipped, not errors.
func (v *VerifierEntry) ApplyOutcome(result *ValidationResult, now time.Time) {
	v.LastValidatedAt = now
	v.VerificationCount++

	pass := 0.0
	if result.IsValid {
		pass = 1.0
	}
	v.SuccessRate += (pass - v.SuccessRate) / float64(v.VerificationCount)

	target := v.Status
	switch {
	case result.IsValid && v.Status != VerifierStatusActive:
		target = VerifierStatusActive
	case !result.IsValid && v.Status == VerifierStatusActive:
		target = VerifierStatusSuspended
	}
	if target != v.Status && v.Status.CanTransitionTo(target) {
		v.Status = target
	}
}

func (v *VerifierEntry) IsActive() bool {
	return v.Status == VerifierStatusActive
}
