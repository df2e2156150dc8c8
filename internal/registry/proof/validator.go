package proof

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"concord/internal/registry/metrics"
	"concord/internal/registry/models"
	"concord/pkg/requestcontext"
)

// Validator runs the full check set against a verifier entry. Checks are
// independent, so all five run concurrently; a failed check is recorded in
// the result, never escalated. The strategy decides individual checks, the
// validator owns fan-out, aggregation, and observability.
type Validator struct {
	strategy CheckStrategy
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(v *Validator)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

// New constructs a Validator backed by the given strategy.
func New(strategy CheckStrategy, opts ...Option) *Validator {
	v := &Validator{strategy: strategy}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs every check against the entry and assembles the immutable
// result. Aggregation happens only after all checks have finished; a
// canceled context fails the outstanding checks rather than dropping them.
func (v *Validator) Validate(ctx context.Context, entry *models.VerifierEntry) *models.ValidationResult {
	kinds := AllCheckKinds()
	failures := make([]error, len(kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			start := time.Now()
			err := v.strategy.Check(ctx, kind, v.artifactFor(entry, kind))
			elapsed := time.Since(start)

			v.metrics.ObserveCheckLatency(kind.String(), elapsed)
			v.metrics.IncrementCheck(kind.String(), err == nil)

			failures[i] = err
			return nil
		})
	}
	_ = g.Wait()

	checks := make(map[string]bool, len(kinds))
	var messages []string
	for i, kind := range kinds {
		passed := failures[i] == nil
		checks[kind.String()] = passed
		if !passed {
			messages = append(messages, fmt.Sprintf("%s check failed: %v", kind, failures[i]))
		}
	}

	result := models.NewValidationResult(entry.ID, checks, messages, requestcontext.Now(ctx))
	if !result.IsValid && v.logger != nil {
		v.logger.DebugContext(ctx, "verifier failed validation",
			"verifier_id", entry.ID,
			"failed_checks", len(messages),
		)
	}
	return result
}

// artifactFor maps a check kind to the entry field it examines.
func (v *Validator) artifactFor(entry *models.VerifierEntry, kind CheckKind) string {
	switch kind {
	case CheckCredentialHash:
		return entry.CredentialHash
	case CheckRegistrationProof:
		return entry.Proofs.Registration
	case CheckIdentityProof:
		return entry.Proofs.Identity
	case CheckCompetencyProof:
		return entry.Proofs.Competency
	case CheckChainSignature:
		return entry.Proofs.ChainSignature
	}
	return ""
}
