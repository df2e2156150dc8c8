// Package service implements the proposal lifecycle: submission, voting,
// querying, analytics, and ingestion of proposals pushed by federation
// peers. Outbound synchronization lives in the federation coordinator.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"concord/internal/audit"
	"concord/internal/clientinfo"
	"concord/internal/proposal/crossdeck"
	"concord/internal/proposal/index"
	"concord/internal/proposal/metrics"
	"concord/internal/proposal/models"
	"concord/internal/proposal/store"
	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
	"concord/pkg/requestcontext"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("concord/internal/proposal/service")

// Peer push outcome labels.
const (
	pushAccepted = "accepted"
	pushRejected = "rejected"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Ballot is one vote on a proposal. Surface routes the ballot into the
// cross-deck overlay when the proposal has one.
type Ballot struct {
	Voter   string
	Kind    models.VoteKind
	Surface id.Surface
}

// Service owns proposal state. All reads and writes go through the shared
// index so every caller sees the same snapshot; the repository, when
// configured, trails the index for durability.
type Service struct {
	index     *index.Index
	crossdeck *crossdeck.Aggregator
	repo      store.Repository
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     AuditPublisher
	clients   *clientinfo.Service
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithRepository(repo store.Repository) Option {
	return func(s *Service) {
		s.repo = repo
	}
}

// WithClientInfo enables client fingerprints on vote audit events.
func WithClientInfo(clients *clientinfo.Service) Option {
	return func(s *Service) {
		s.clients = clients
	}
}

// New constructs a Service over the shared index and cross-deck aggregator.
func New(idx *index.Index, aggregator *crossdeck.Aggregator, opts ...Option) *Service {
	s := &Service{
		index:     idx,
		crossdeck: aggregator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore rebuilds the index and cross-deck overlays from the repository.
// Called once at startup, before the service takes traffic. Overlay ballots
// are not persisted, so restored overlays start from zero.
func (s *Service) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	proposals, err := s.repo.LoadAll(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load proposals")
	}
	if err := s.index.Rebuild(proposals); err != nil {
		return err
	}
	for _, p := range proposals {
		if p.CrossDeck.Enabled() {
			s.crossdeck.Init(p.ID, p.CrossDeck.Surfaces)
		}
	}

	s.metrics.SetIndexSize(s.index.Len())
	if s.logger != nil {
		s.logger.InfoContext(ctx, "proposal index restored", "proposals", s.index.Len())
	}
	return nil
}

// Submit validates a draft against the submission constraints and, on
// success, stamps identity, hashes, and timestamps and makes the proposal
// visible in every index at once. A draft that fails any constraint leaves
// no trace anywhere.
func (s *Service) Submit(ctx context.Context, draft *models.RegionalProposal) (*models.RegionalProposal, error) {
	ctx, span := tracer.Start(ctx, "proposal.submit")
	defer span.End()

	if draft == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "proposal is required")
	}
	if err := draft.ValidateSubmission(); err != nil {
		s.metrics.IncrementRejection(rejectionConstraint(err))
		return nil, err
	}

	now := requestcontext.Now(ctx)
	p := *draft
	p.ID = id.NewProposalID()
	p.SyncStatus = models.SyncPending
	p.Tallies = models.VoteTallies{}
	p.ContentHash = models.ComputeContentHash(p.Title, p.Description, p.Scope, p.Type)
	p.Meta.SubmittedAt = now
	p.Meta.ModifiedAt = now
	if !p.Meta.Urgency.IsValid() {
		p.Meta.Urgency = models.UrgencyMedium
	}
	p.Meta.ValidatorHash = models.ComputeValidatorHash(p.ID, p.Meta.Submitter, p.Meta.SubmittedAt)

	if s.repo != nil {
		if err := s.repo.Save(ctx, &p); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist proposal")
		}
	}
	if err := s.index.Insert(&p); err != nil {
		return nil, err
	}
	if p.CrossDeck.Enabled() {
		s.crossdeck.Init(p.ID, p.CrossDeck.Surfaces)
	}

	s.metrics.IncrementSubmission(string(p.Type))
	s.metrics.SetIndexSize(s.index.Len())
	audit.Log(ctx, s.logger, s.audit, string(audit.EventProposalSubmitted),
		"subject", p.ID.String(),
		"actor", p.Meta.Submitter,
		"decision", "accepted",
		"reason", fmt.Sprintf("type %s, urgency %s, %d nodes", p.Type, p.Meta.Urgency, len(p.Nodes)),
	)
	return &p, nil
}

// Get returns one proposal by ID.
func (s *Service) Get(ctx context.Context, proposalID id.ProposalID) (*models.RegionalProposal, error) {
	p, ok := s.index.Get(proposalID)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "proposal %s not found", proposalID)
	}
	return p, nil
}

// Query returns proposals matching the filter, newest first.
func (s *Service) Query(ctx context.Context, filter models.Filter) []*models.RegionalProposal {
	return s.index.Query(filter)
}

// RecordVote applies one ballot to a proposal's tallies and, when the
// proposal carries a cross-deck configuration, forwards it into the surface
// overlay. Ballots on surfaces the proposal does not span count toward the
// regional tally only.
func (s *Service) RecordVote(ctx context.Context, proposalID id.ProposalID, ballot Ballot) (*models.RegionalProposal, error) {
	ctx, span := tracer.Start(ctx, "proposal.vote",
		trace.WithAttributes(attribute.String("proposal.id", proposalID.String())))
	defer span.End()

	kind, err := models.ParseVoteKind(string(ballot.Kind))
	if err != nil {
		return nil, err
	}

	updated, ok := s.index.RecordVote(proposalID, kind, requestcontext.Now(ctx))
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "proposal %s not found", proposalID)
	}

	if updated.CrossDeck.Enabled() {
		if s.crossdeck.Record(proposalID, kind, ballot.Surface) {
			s.metrics.IncrementCrossDeckBallot()
		}
	}

	if s.repo != nil {
		if err := s.repo.UpdateVotes(ctx, proposalID, updated.Tallies, updated.Meta.ModifiedAt); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to persist vote tallies",
				"proposal_id", proposalID.String(),
				"error", err,
			)
		}
	}

	s.metrics.IncrementVote(string(kind))
	userAgent := requestcontext.UserAgent(ctx)
	voteAttrs := []any{
		"subject", proposalID.String(),
		"actor", ballot.Voter,
		"decision", string(kind),
		"reason", fmt.Sprintf("ballot on surface %s", ballot.Surface),
		"client", clientinfo.Describe(userAgent),
	}
	if fp := s.clients.ComputeFingerprint(userAgent); fp != "" {
		voteAttrs = append(voteAttrs, "client_fingerprint", fp)
	}
	audit.Log(ctx, s.logger, s.audit, string(audit.EventVoteRecorded), voteAttrs...)
	return updated, nil
}

// CrossDeckOverlay returns the aggregated cross-surface tally for one
// proposal.
func (s *Service) CrossDeckOverlay(proposalID id.ProposalID) (*crossdeck.Overlay, error) {
	overlay, ok := s.crossdeck.Overlay(proposalID)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no cross-deck overlay for proposal %s", proposalID)
	}
	return overlay, nil
}

// AnalyticsFor aggregates participation and sync health for one jurisdiction.
func (s *Service) AnalyticsFor(ctx context.Context, jurisdiction id.Jurisdiction) models.RegionalAnalytics {
	return s.index.AnalyticsFor(jurisdiction)
}

// ReceivePush ingests a proposal pushed by a federation peer. The local copy
// is upserted as synchronized: the origin node drove the sync, this node
// only holds the replica. Envelopes at a protocol version newer than ours
// are rejected so a mixed-version federation fails loudly instead of
// corrupting replicas.
func (s *Service) ReceivePush(ctx context.Context, origin string, protocol id.SyncProtocolVersion, p *models.RegionalProposal) error {
	ctx, span := tracer.Start(ctx, "proposal.receive_push")
	defer span.End()

	subject := ""
	if p != nil {
		subject = p.ID.String()
	}

	parsed, err := id.ParseSyncProtocolVersion(string(protocol))
	if err != nil || !id.DefaultSyncProtocol().IsAtLeast(parsed) {
		s.metrics.IncrementPeerPush(pushRejected)
		audit.Log(ctx, s.logger, s.audit, string(audit.EventPeerPushRejected),
			"subject", subject,
			"actor", origin,
			"decision", pushRejected,
			"reason", fmt.Sprintf("unsupported sync protocol %q", protocol),
		)
		return dErrors.Newf(dErrors.CodeInvalidInput, "unsupported sync protocol %q", protocol)
	}
	if p == nil {
		s.metrics.IncrementPeerPush(pushRejected)
		return dErrors.New(dErrors.CodeInvalidInput, "push envelope has no proposal")
	}
	if p.ID.IsZero() {
		s.metrics.IncrementPeerPush(pushRejected)
		audit.Log(ctx, s.logger, s.audit, string(audit.EventPeerPushRejected),
			"actor", origin,
			"decision", pushRejected,
			"reason", "pushed proposal has no id",
		)
		return dErrors.New(dErrors.CodeInvalidInput, "pushed proposal has no id")
	}

	p.SyncStatus = models.SyncSynchronized
	p.Meta.ModifiedAt = requestcontext.Now(ctx)
	s.index.Upsert(p)
	if p.CrossDeck.Enabled() {
		// Keep an existing overlay: re-initializing would drop local ballots.
		if _, ok := s.crossdeck.Overlay(p.ID); !ok {
			s.crossdeck.Init(p.ID, p.CrossDeck.Surfaces)
		}
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, p); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to persist pushed proposal",
				"proposal_id", p.ID.String(),
				"origin", origin,
				"error", err,
			)
		}
	}

	s.metrics.IncrementPeerPush(pushAccepted)
	s.metrics.SetIndexSize(s.index.Len())
	audit.Log(ctx, s.logger, s.audit, string(audit.EventPeerPushReceived),
		"subject", p.ID.String(),
		"actor", origin,
		"decision", pushAccepted,
		"reason", fmt.Sprintf("replica upserted at protocol %s", parsed),
	)
	return nil
}

// rejectionConstraint maps a submission violation onto a bounded label set
// for the rejection counter.
func rejectionConstraint(err error) string {
	msg := dErrors.MessageOf(err)
	switch {
	case strings.HasPrefix(msg, "title"):
		return "title"
	case strings.HasPrefix(msg, "description"):
		return "description"
	case strings.Contains(msg, "jurisdiction"):
		return "jurisdiction"
	default:
		return "nodes"
	}
}
