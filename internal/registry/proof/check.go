// Package proof runs the independent validation checks that decide whether a
// verifier entry's credentials hold up. The check set is fixed; what each
// check actually does is pluggable through CheckStrategy so deterministic
// test doubles and a real cryptographic backend share one pipeline.
package proof

import "context"

// CheckKind names one of the independent validation checks run against a
// verifier entry.
type CheckKind string

const (
	CheckCredentialHash    CheckKind = "credential_hash"
	CheckRegistrationProof CheckKind = "registration_proof"
	CheckIdentityProof     CheckKind = "identity_proof"
	CheckCompetencyProof   CheckKind = "competency_proof"
	CheckChainSignature    CheckKind = "chain_signature"
)

func (k CheckKind) String() string { return string(k) }

func (k CheckKind) IsValid() bool {
	switch k {
	case CheckCredentialHash, CheckRegistrationProof, CheckIdentityProof,
		CheckCompetencyProof, CheckChainSignature:
		return true
	}
	return false
}

// AllCheckKinds returns the full check set in canonical order.
func AllCheckKinds() []CheckKind {
	return []CheckKind{
		CheckCredentialHash,
		CheckRegistrationProof,
		CheckIdentityProof,
		CheckCompetencyProof,
		CheckChainSignature,
	}
}

// CheckStrategy decides a single check against a single proof artifact.
// A nil return means the check passed; a non-nil error describes why it
// failed. Strategies must be safe for concurrent use: the validator runs
// all checks for an entry in parallel.
type CheckStrategy interface {
	Check(ctx context.Context, kind CheckKind, artifact string) error
}

// StrategyFunc adapts a function to the CheckStrategy interface.
type StrategyFunc func(ctx context.Context, kind CheckKind, artifact string) error

func (f StrategyFunc) Check(ctx context.Context, kind CheckKind, artifact string) error {
	return f(ctx, kind, artifact)
}
