package models

import (
	"time"

	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
)

// SyncConfig is the registry's sync policy as published by its operator.
type SyncConfig struct {
	Operator           string        `json:"operator"`
	Frequency          time.Duration `json:"frequency"`
	ConsensusThreshold float64       `json:"consensus_threshold"`
}

// VerifierRegistry is a versioned snapshot of verifier entries fetched from
// a registry source.
//
// Invariants:
//   - TotalVerifiers == len(Verifiers)
//   - ActiveVerifiers <= TotalVerifiers
//
// A snapshot violating these indicates a corrupt source or a bug upstream,
// never an environmental failure, so Validate surfaces it as an invariant
// violation rather than a fetch error.
type VerifierRegistry struct {
	ID              id.RegistryID   `json:"id"`
	Version         int64           `json:"version"`
	ChainID         string          `json:"chain_id"`
	ConsensusHash   string          `json:"consensus_hash"`
	Verifiers       []VerifierEntry `json:"verifiers"`
	TotalVerifiers  int             `json:"total_verifiers"`
	ActiveVerifiers int             `json:"active_verifiers"`
	Sync            SyncConfig      `json:"sync"`
}

// Validate checks the registry's aggregate invariants.
func (r *VerifierRegistry) Validate() error {
	if r.TotalVerifiers != len(r.Verifiers) {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"registry %s: total_verifiers %d does not match %d entries",
			r.ID, r.TotalVerifiers, len(r.Verifiers))
	}
	if r.ActiveVerifiers > r.TotalVerifiers {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"registry %s: active_verifiers %d exceeds total_verifiers %d",
			r.ID, r.ActiveVerifiers, r.TotalVerifiers)
	}
	if r.ActiveVerifiers < 0 {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"registry %s: negative active_verifiers %d", r.ID, r.ActiveVerifiers)
	}
	return nil
}

// Recount recomputes the aggregate counters from the entries. Sources that
// assemble snapshots by hand call this before publishing.
func (r *VerifierRegistry) Recount() {
	r.TotalVerifiers = len(r.Verifiers)
	active := 0
	for i := range r.Verifiers {
		if r.Verifiers[i].IsActive() {
			active++
		}
	}
	r.ActiveVerifiers = active
}
