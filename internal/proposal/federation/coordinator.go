package federation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"concord/internal/audit"
	"concord/internal/proposal/index"
	"concord/internal/proposal/metrics"
	"concord/internal/proposal/models"
	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
	"concord/pkg/platform/circuit"
	"concord/pkg/platform/sentinel"
	"concord/pkg/requestcontext"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("concord/internal/proposal/federation")

const (
	defaultPushTimeout = 10 * time.Second
	defaultWorkers     = 8
)

// Per-node push outcome labels shared by metrics and logs.
const (
	outcomeAcked       = "acked"
	outcomeFailed      = "failed"
	outcomeTimeout     = "timeout"
	outcomeBreakerOpen = "breaker_open"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// StatusStore persists sync status changes so the index can be rebuilt with
// accurate state after a restart.
type StatusStore interface {
	UpdateSyncStatus(ctx context.Context, proposalID id.ProposalID, status models.SyncStatus, modifiedAt time.Time) error
}

// SyncReport summarizes one synchronization attempt. Synced and Failed
// preserve the order nodes were requested in.
type SyncReport struct {
	ProposalID id.ProposalID
	Status     models.SyncStatus
	Synced     []id.NodeID
	Failed     []id.NodeID
	Duration   time.Duration
}

// Coordinator fans a proposal out to its assigned nodes and settles the
// proposal's sync status from the per-node outcomes. A proposal reaches
// synchronized only when every requested node acks; one failure marks the
// whole attempt failed, and a later attempt may retry just the failed
// subset. Each node gets its own circuit breaker so a flapping peer fails
// fast instead of burning the push timeout on every attempt.
type Coordinator struct {
	index     *index.Index
	transport NodeTransport
	store     StatusStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     AuditPublisher
	timeout   time.Duration
	workers   int

	breakerOpts []circuit.Option
	mu          sync.Mutex
	breakers    map[id.NodeID]*circuit.Breaker
}

type Option func(c *Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *Coordinator) {
		c.audit = publisher
	}
}

func WithStatusStore(store StatusStore) Option {
	return func(c *Coordinator) {
		c.store = store
	}
}

// WithPushTimeout bounds each per-node push. A node that has not acked when
// the timeout passes counts as failed.
func WithPushTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithWorkers bounds the push fan-out. Values below one fall back to the
// default.
func WithWorkers(workers int) Option {
	return func(c *Coordinator) {
		if workers >= 1 {
			c.workers = workers
		}
	}
}

// WithBreakerOptions configures the per-node circuit breakers.
func WithBreakerOptions(opts ...circuit.Option) Option {
	return func(c *Coordinator) {
		c.breakerOpts = opts
	}
}

// NewCoordinator constructs a Coordinator over the given index and transport.
func NewCoordinator(idx *index.Index, transport NodeTransport, opts ...Option) *Coordinator {
	c := &Coordinator{
		index:     idx,
		transport: transport,
		timeout:   defaultPushTimeout,
		workers:   defaultWorkers,
		breakers:  make(map[id.NodeID]*circuit.Breaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SyncProposal synchronizes a proposal to every node it is assigned to.
func (c *Coordinator) SyncProposal(ctx context.Context, proposalID id.ProposalID) (*SyncReport, error) {
	p, ok := c.index.Get(proposalID)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "proposal %s not found", proposalID)
	}
	return c.SyncNodes(ctx, proposalID, p.Nodes)
}

// SyncNodes synchronizes a proposal to the given subset of nodes, typically
// the failed subset of an earlier attempt. It marks the proposal syncing for
// the duration of the fan-out; a concurrent attempt on the same proposal is
// rejected by the status transition rules.
func (c *Coordinator) SyncNodes(ctx context.Context, proposalID id.ProposalID, nodes []id.NodeID) (*SyncReport, error) {
	ctx, span := tracer.Start(ctx, "federation.sync",
		trace.WithAttributes(
			attribute.String("proposal.id", proposalID.String()),
			attribute.Int("federation.nodes", len(nodes)),
		))
	defer span.End()

	if len(nodes) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no nodes to synchronize")
	}

	start := time.Now()
	now := requestcontext.Now(ctx)
	if err := c.index.SetSyncStatus(proposalID, models.SyncSyncing, now); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "proposal %s not found", proposalID)
		}
		return nil, err
	}
	c.persistStatus(ctx, proposalID, models.SyncSyncing, now)

	p, ok := c.index.Get(proposalID)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "proposal %s not found", proposalID)
	}

	pushErrs := make([]error, len(nodes))
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, node := range nodes {
		g.Go(func() error {
			pushErrs[i] = c.push(ctx, node, p)
			return nil
		})
	}
	_ = g.Wait()

	report := &SyncReport{ProposalID: proposalID}
	for i, node := range nodes {
		if pushErrs[i] == nil {
			report.Synced = append(report.Synced, node)
		} else {
			report.Failed = append(report.Failed, node)
		}
	}

	report.Status = models.SyncSynchronized
	if len(report.Failed) > 0 {
		report.Status = models.SyncFailed
	}

	now = requestcontext.Now(ctx)
	if err := c.index.SetSyncStatus(proposalID, report.Status, now); err != nil {
		return nil, err
	}
	c.persistStatus(ctx, proposalID, report.Status, now)

	report.Duration = time.Since(start)
	c.metrics.ObserveSyncDuration(report.Duration)
	c.metrics.IncrementSync(string(report.Status))

	audit.Log(ctx, c.logger, c.audit, string(audit.EventProposalSyncFinished),
		"subject", proposalID.String(),
		"decision", string(report.Status),
		"reason", fmt.Sprintf("synced %d of %d nodes", len(report.Synced), len(nodes)),
	)
	return report, nil
}

// push delivers the proposal to one node and classifies the outcome. An open
// breaker fails fast without touching the transport.
func (c *Coordinator) push(ctx context.Context, node id.NodeID, p *models.RegionalProposal) error {
	breaker := c.breakerFor(node)
	if breaker.IsOpen() {
		c.metrics.IncrementNodePush(outcomeBreakerOpen)
		return dErrors.Newf(dErrors.CodeUnavailable, "breaker open for node %s", node)
	}

	pushCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.transport.Push(pushCtx, node, p)
	if err == nil {
		if _, change := breaker.RecordSuccess(); change.Closed && c.logger != nil {
			c.logger.InfoContext(ctx, "node breaker closed", "node", string(node))
		}
		c.metrics.IncrementNodePush(outcomeAcked)
		return nil
	}

	if _, change := breaker.RecordFailure(); change.Opened && c.logger != nil {
		c.logger.WarnContext(ctx, "node breaker opened", "node", string(node))
	}

	outcome := outcomeFailed
	if errors.Is(err, context.DeadlineExceeded) {
		outcome = outcomeTimeout
	}
	c.metrics.IncrementNodePush(outcome)
	if c.logger != nil {
		c.logger.WarnContext(ctx, "node push failed",
			"node", string(node),
			"proposal_id", p.ID.String(),
			"outcome", outcome,
			"error", err,
		)
	}
	return err
}

func (c *Coordinator) breakerFor(node id.NodeID) *circuit.Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[node]
	if !ok {
		b = circuit.New("node:"+string(node), c.breakerOpts...)
		c.breakers[node] = b
	}
	return b
}

func (c *Coordinator) persistStatus(ctx context.Context, proposalID id.ProposalID, status models.SyncStatus, modifiedAt time.Time) {
	if c.store == nil {
		return
	}
	if err := c.store.UpdateSyncStatus(ctx, proposalID, status, modifiedAt); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "failed to persist sync status",
			"proposal_id", proposalID.String(),
			"status", string(status),
			"error", err,
		)
	}
}
