// Package domain holds shared domain primitives: typed identifiers and
// cross-module value types. Validation happens at parse time so the rest of
// the codebase can trust a constructed value.
package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "concord/pkg/domain-errors"
)

// ProposalID uniquely identifies a regional proposal.
// Invariant: must be a valid, non-nil UUID.
type ProposalID uuid.UUID

// NewProposalID generates a fresh proposal ID.
func NewProposalID() ProposalID {
	return ProposalID(uuid.New())
}

// ParseProposalID constructs a ProposalID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed, or the
// nil UUID.
func ParseProposalID(s string) (ProposalID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ProposalID{}, err
	}
	return ProposalID(u), nil
}

func (p ProposalID) String() string { return uuid.UUID(p).String() }

// IsZero reports whether the ID is the nil UUID.
func (p ProposalID) IsZero() bool { return uuid.UUID(p) == uuid.Nil }

// MarshalText encodes the ID as its canonical UUID string.
func (p ProposalID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses an ID from its canonical UUID string.
func (p *ProposalID) UnmarshalText(text []byte) error {
	parsed, err := ParseProposalID(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	if !utf8.ValidString(s) || len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// RegistryID identifies a verifier registry snapshot source (e.g. a chain or
// operator namespace). Free-form but bounded; opaque to the engine.
type RegistryID string

// ParseRegistryID constructs a RegistryID from external input.
func ParseRegistryID(s string) (RegistryID, error) {
	v, err := parseShortToken(s, "registry id")
	if err != nil {
		return "", err
	}
	return RegistryID(v), nil
}

func (r RegistryID) String() string { return string(r) }

// VerifierID identifies a verifier within a registry.
type VerifierID string

// ParseVerifierID constructs a VerifierID from external input.
func ParseVerifierID(s string) (VerifierID, error) {
	v, err := parseShortToken(s, "verifier id")
	if err != nil {
		return "", err
	}
	return VerifierID(v), nil
}

func (v VerifierID) String() string { return string(v) }

// NodeID identifies a federation node.
type NodeID string

// ParseNodeID constructs a NodeID from external input.
func ParseNodeID(s string) (NodeID, error) {
	v, err := parseShortToken(s, "node id")
	if err != nil {
		return "", err
	}
	return NodeID(v), nil
}

func (n NodeID) String() string { return string(n) }

// Jurisdiction is an opaque regional code ("EU-DE", "apac-east"). The engine
// compares jurisdictions for equality only and never interprets structure.
type Jurisdiction string

// ParseJurisdiction constructs a Jurisdiction from external input.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	v, err := parseShortToken(s, "jurisdiction")
	if err != nil {
		return "", err
	}
	return Jurisdiction(v), nil
}

func (j Jurisdiction) String() string { return string(j) }

// parseShortToken enforces the common rules for opaque string identifiers:
// non-empty after trimming, valid UTF-8, single-line, at most 128 bytes.
func parseShortToken(s, what string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", what)
	}
	if !utf8.ValidString(v) {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "%s must be valid UTF-8", what)
	}
	if len(v) > 128 {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "%s must be at most 128 bytes", what)
	}
	if strings.ContainsAny(v, "\n\r\x00") {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "%s contains control characters", what)
	}
	return v, nil
}
