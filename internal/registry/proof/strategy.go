package proof

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// minArtifactLen is the shortest artifact the digest strategy accepts. Real
// proof material is a digest or signature, never a handful of bytes.
const minArtifactLen = 16

var (
	errEmptyArtifact    = errors.New("artifact is empty")
	errArtifactTooShort = errors.New("artifact shorter than minimum length")
	errArtifactNotToken = errors.New("artifact contains whitespace")
	errArtifactEncoding = errors.New("artifact is not valid UTF-8")
	errUnknownCheckKind = errors.New("unknown check kind")
)

// DigestStrategy is the default check backend: deterministic structural
// checks over the opaque artifact, with a configurable per-check latency
// standing in for the round trip a real backend would make. The latency
// wait honors context cancellation, so an expired deadline surfaces as a
// failed check rather than a hung one.
type DigestStrategy struct {
	Latency time.Duration
}

func NewDigestStrategy(latency time.Duration) *DigestStrategy {
	return &DigestStrategy{Latency: latency}
}

func (s *DigestStrategy) Check(ctx context.Context, kind CheckKind, artifact string) error {
	if !kind.IsValid() {
		return errUnknownCheckKind
	}
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	trimmed := strings.TrimSpace(artifact)
	switch {
	case trimmed == "":
		return errEmptyArtifact
	case strings.ContainsAny(trimmed, " \t\n\r"):
		return errArtifactNotToken
	case !utf8.ValidString(trimmed):
		return errArtifactEncoding
	case len(trimmed) < minArtifactLen:
		return errArtifactTooShort
	}
	return nil
}
