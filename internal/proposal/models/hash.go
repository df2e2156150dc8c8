package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	id "concord/pkg/domain"
)

// ComputeContentHash derives the content address of a submission from its
// canonical fields. Two submissions with the same content hash identically,
// independent of who submitted them or when.
func ComputeContentHash(title, description string, scope RegionScope, proposalType ProposalType) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(description)
	b.WriteByte('\n')
	b.WriteString(scope.Primary.String())
	for _, jurisdiction := range scope.Secondary {
		b.WriteByte('\n')
		b.WriteString(jurisdiction.String())
	}
	b.WriteByte('\n')
	b.WriteString(strconv.FormatBool(scope.FederationWide))
	b.WriteByte('\n')
	b.WriteString(proposalType.String())

	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ComputeValidatorHash derives the short validator fingerprint stamped on a
// proposal at submission time.
func ComputeValidatorHash(proposalID id.ProposalID, submitter string, submittedAt time.Time) string {
	payload := proposalID.String() + "\n" + submitter + "\n" +
		submittedAt.UTC().Format(time.RFC3339Nano)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:8])
}
