package domain

import dErrors "concord/pkg/domain-errors"

// Surface is a voting overlay on a proposal. Cross-deck proposals collect
// ballots on several surfaces at once and aggregate them into one outcome.
//
// Usage: construct via ParseSurface at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Surface string

// Supported voting surfaces.
const (
	SurfaceGovernance Surface = "governance"
	SurfacePrivacy    Surface = "privacy"
	SurfaceAudit      Surface = "audit"
)

// validSurfaces is the single source of truth for valid surfaces.
var validSurfaces = map[Surface]bool{
	SurfaceGovernance: true,
	SurfacePrivacy:    true,
	SurfaceAudit:      true,
}

// ParseSurface constructs a Surface from external input.
//
// Errors: returns CodeInvalidInput when the value is unsupported. An empty
// value defaults to SurfaceGovernance, the primary deck.
func ParseSurface(s string) (Surface, error) {
	if s == "" {
		return SurfaceGovernance, nil
	}
	v := Surface(s)
	if !v.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid surface")
	}
	return v, nil
}

// IsValid checks if the surface is one of the supported enum values.
func (s Surface) IsValid() bool {
	return validSurfaces[s]
}

// String returns the string representation of the surface.
func (s Surface) String() string {
	return string(s)
}

// AllSurfaces returns every supported surface in a stable order.
func AllSurfaces() []Surface {
	return []Surface{SurfaceGovernance, SurfacePrivacy, SurfaceAudit}
}
