// Package service implements the registry sync engine: fetch a registry
// snapshot, validate every verifier concurrently, decide consensus, and
// report the outcome as data. A sync never raises an error to its caller;
// failures degrade to a failed SyncResult so every invocation stays
// reportable.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"concord/internal/audit"
	"concord/internal/registry/consensus"
	"concord/internal/registry/fetcher"
	"concord/internal/registry/metrics"
	"concord/internal/registry/models"
	"concord/internal/registry/proof"
	"concord/internal/registry/store"
	id "concord/pkg/domain"
	"concord/pkg/requestcontext"
)

var tracer = otel.Tracer("concord/internal/registry/service")

const defaultWorkers = 8

// Sync outcome labels shared by metrics and audit decisions.
const (
	outcomeConsensus   = "consensus"
	outcomeNoConsensus = "no_consensus"
	outcomeFailed      = "failed"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Engine orchestrates registry synchronization.
type Engine struct {
	fetcher   fetcher.Fetcher
	validator *proof.Validator
	consensus consensus.Evaluator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     AuditPublisher
	results   store.ResultStore
	workers   int

	// Simulated chain height: monotonic across syncs, seeded from the
	// wall clock at construction.
	height atomic.Int64
}

type Option func(e *Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(e *Engine) {
		e.audit = publisher
	}
}

func WithResultStore(results store.ResultStore) Option {
	return func(e *Engine) {
		e.results = results
	}
}

// WithWorkers bounds the validation fan-out. Values below one fall back to
// the default.
func WithWorkers(workers int) Option {
	return func(e *Engine) {
		if workers >= 1 {
			e.workers = workers
		}
	}
}

// New constructs an Engine.
func New(f fetcher.Fetcher, validator *proof.Validator, evaluator consensus.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		fetcher:   f,
		validator: validator,
		consensus: evaluator,
		workers:   defaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.height.Store(time.Now().Unix())
	return e
}

// ValidateAndSync fetches the registry, validates every entry, and computes
// consensus. It always returns a result: fetch failures and invariant
// violations are captured in the result's error list instead of propagating.
func (e *Engine) ValidateAndSync(ctx context.Context, registryID id.RegistryID) *models.SyncResult {
	ctx, span := tracer.Start(ctx, "registry.sync",
		trace.WithAttributes(attribute.String("registry.id", string(registryID))))
	defer span.End()

	start := time.Now()
	result := &models.SyncResult{
		RegistryID:  registryID,
		Timestamp:   requestcontext.Now(ctx),
		ChainHeight: e.height.Add(1),
	}

	registry, err := e.fetcher.Fetch(ctx, registryID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetch registry: %v", err))
		if e.logger != nil {
			e.logger.WarnContext(ctx, "registry fetch failed",
				"registry_id", registryID,
				"error", err,
			)
		}
		e.finish(ctx, result, start, outcomeFailed)
		return result
	}

	if err := registry.Validate(); err != nil {
		// A snapshot breaking its own invariants is a bug upstream, not an
		// environmental failure. Alert loudly, then degrade like any other
		// failed sync.
		e.metrics.IncrementInvariantViolation()
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "registry snapshot violates invariants",
				"registry_id", registryID,
				"error", err,
			)
		}
		// nil logger: the violation is already on the Error line above.
		audit.Log(ctx, nil, e.audit, string(audit.EventConsistencyViolation),
			"subject", string(registryID),
			"decision", outcomeFailed,
			"reason", err.Error(),
		)
		result.Errors = append(result.Errors, err.Error())
		e.finish(ctx, result, start, outcomeFailed)
		return result
	}

	result.VerifiersProcessed = len(registry.Verifiers)

	outcomes := make([]*models.ValidationResult, len(registry.Verifiers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range registry.Verifiers {
		g.Go(func() error {
			outcomes[i] = e.validator.Validate(gctx, &registry.Verifiers[i])
			return nil
		})
	}
	_ = g.Wait()

	now := requestcontext.Now(ctx)
	valid := 0
	for i, outcome := range outcomes {
		registry.Verifiers[i].ApplyOutcome(outcome, now)
		if outcome.IsValid {
			valid++
		}
	}
	result.VerifiersValidated = valid
	result.VerifiersFailed = result.VerifiersProcessed - valid
	if result.VerifiersFailed > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d of %d verifiers failed validation", result.VerifiersFailed, result.VerifiersProcessed))
	}

	decision := e.evaluatorFor(registry).Evaluate(result.VerifiersProcessed, valid)
	result.ConsensusAchieved = decision.Achieved
	result.ConsensusPercent = decision.Percent

	outcome := outcomeNoConsensus
	if decision.Achieved {
		outcome = outcomeConsensus
	}
	e.finish(ctx, result, start, outcome)
	return result
}

// BatchSync processes each registry independently with bounded concurrency.
// One registry's failure never aborts the others, and results come back in
// input order.
func (e *Engine) BatchSync(ctx context.Context, registryIDs []id.RegistryID) []*models.SyncResult {
	ctx, span := tracer.Start(ctx, "registry.batch_sync",
		trace.WithAttributes(attribute.Int("registry.count", len(registryIDs))))
	defer span.End()

	results := make([]*models.SyncResult, len(registryIDs))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, registryID := range registryIDs {
		g.Go(func() error {
			results[i] = e.ValidateAndSync(ctx, registryID)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Summary aggregates a batch of results. Pure passthrough to the model
// aggregation, kept on the engine so callers need only one dependency.
func (e *Engine) Summary(results []*models.SyncResult) models.SyncSummary {
	return models.Summarize(results)
}

// evaluatorFor prefers the threshold published in the registry's own sync
// policy over the engine default.
func (e *Engine) evaluatorFor(registry *models.VerifierRegistry) consensus.Evaluator {
	if registry.Sync.ConsensusThreshold > 0 {
		return consensus.NewThresholdEvaluator(registry.Sync.ConsensusThreshold)
	}
	return e.consensus
}

func (e *Engine) finish(ctx context.Context, result *models.SyncResult, start time.Time, outcome string) {
	result.Duration = time.Since(start)

	e.metrics.ObserveSyncDuration(result.Duration)
	e.metrics.IncrementSync(outcome)

	if e.results != nil {
		if err := e.results.Record(ctx, result); err != nil && e.logger != nil {
			e.logger.WarnContext(ctx, "failed to record sync result",
				"registry_id", result.RegistryID,
				"error", err,
			)
		}
	}

	audit.Log(ctx, e.logger, e.audit, string(audit.EventRegistrySyncFinished),
		"subject", string(result.RegistryID),
		"decision", outcome,
		"reason", fmt.Sprintf("validated %d of %d verifiers at height %d",
			result.VerifiersValidated, result.VerifiersProcessed, result.ChainHeight),
	)
}
