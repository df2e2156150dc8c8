package domain

import (
	"fmt"
)

// SyncProtocolVersion represents a valid federation sync protocol version.
// This is a domain primitive that enforces validity at parse time.
type SyncProtocolVersion string

// Supported sync protocol versions.
const (
	SyncProtocolV1 SyncProtocolVersion = "v1"
	// Future versions: SyncProtocolV2 SyncProtocolVersion = "v2"
)

// protocolOrder defines the ordering of versions for comparison.
// Higher numbers represent newer versions.
var protocolOrder = map[SyncProtocolVersion]int{
	SyncProtocolV1: 1,
}

// ParseSyncProtocolVersion validates and returns a SyncProtocolVersion.
// Returns an error if the version is unknown.
func ParseSyncProtocolVersion(s string) (SyncProtocolVersion, error) {
	v := SyncProtocolVersion(s)
	if _, ok := protocolOrder[v]; !ok {
		return "", fmt.Errorf("unknown sync protocol version: %s", s)
	}
	return v, nil
}

// String returns the string representation of the protocol version.
func (v SyncProtocolVersion) String() string {
	return string(v)
}

// IsNil returns true if the protocol version is empty.
func (v SyncProtocolVersion) IsNil() bool {
	return v == ""
}

// IsAtLeast returns true if this version is >= other.
// Used when deciding whether a peer node can accept an envelope:
//   - v1 envelope to v2 node: nodeVersion(v2).IsAtLeast(envelopeVersion(v1)) = true (OK)
//   - v2 envelope to v1 node: nodeVersion(v1).IsAtLeast(envelopeVersion(v2)) = false (REJECTED)
func (v SyncProtocolVersion) IsAtLeast(other SyncProtocolVersion) bool {
	thisOrder, thisOK := protocolOrder[v]
	otherOrder, otherOK := protocolOrder[other]

	// Unknown versions are treated as lower than any known version
	if !thisOK {
		return false
	}
	if !otherOK {
		return true // Any known version is >= unknown
	}

	return thisOrder >= otherOrder
}

// SupportedSyncProtocols returns all currently supported protocol versions.
func SupportedSyncProtocols() []SyncProtocolVersion {
	return []SyncProtocolVersion{SyncProtocolV1}
}

// DefaultSyncProtocol returns the version stamped on new envelopes.
func DefaultSyncProtocol() SyncProtocolVersion {
	return SyncProtocolV1
}
