// Package handler wires proposal submission, voting, querying, federation
// sync, and peer push ingestion into the HTTP layer.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"concord/internal/proposal/crossdeck"
	"concord/internal/proposal/federation"
	"concord/internal/proposal/models"
	"concord/internal/proposal/service"
	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
	"concord/pkg/platform/httputil"
	"concord/pkg/platform/middleware/auth"
	"concord/pkg/requestcontext"
)

// Service defines the proposal operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, draft *models.RegionalProposal) (*models.RegionalProposal, error)
	Get(ctx context.Context, proposalID id.ProposalID) (*models.RegionalProposal, error)
	Query(ctx context.Context, filter models.Filter) []*models.RegionalProposal
	RecordVote(ctx context.Context, proposalID id.ProposalID, ballot service.Ballot) (*models.RegionalProposal, error)
	CrossDeckOverlay(proposalID id.ProposalID) (*crossdeck.Overlay, error)
	AnalyticsFor(ctx context.Context, jurisdiction id.Jurisdiction) models.RegionalAnalytics
	ReceivePush(ctx context.Context, origin string, protocol id.SyncProtocolVersion, p *models.RegionalProposal) error
}

// Syncer defines the federation sync operations the handler depends on.
type Syncer interface {
	SyncProposal(ctx context.Context, proposalID id.ProposalID) (*federation.SyncReport, error)
	SyncNodes(ctx context.Context, proposalID id.ProposalID, nodes []id.NodeID) (*federation.SyncReport, error)
}

// Handler serves proposal and federation endpoints.
type Handler struct {
	service Service
	syncer  Syncer
	logger  *slog.Logger
}

// New constructs a proposal handler with its dependencies.
func New(svc Service, syncer Syncer, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		syncer:  syncer,
		logger:  logger,
	}
}

// Register mounts the public proposal endpoints on the router. The sync
// trigger and the federation receive endpoint are registered separately so
// the router can wrap them in admin and peer authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/proposals", h.HandleSubmit)
	r.Get("/proposals", h.HandleQuery)
	r.Get("/proposals/{proposalID}", h.HandleGet)
	r.Post("/proposals/{proposalID}/votes", h.HandleVote)
	r.Get("/proposals/{proposalID}/crossdeck", h.HandleCrossDeck)
	r.Get("/analytics/regions/{jurisdiction}", h.HandleAnalytics)
}

// RegisterSync mounts the operator-facing sync trigger.
func (h *Handler) RegisterSync(r chi.Router) {
	r.Post("/proposals/{proposalID}/sync", h.HandleSync)
}

// RegisterFederation mounts the peer push endpoint.
func (h *Handler) RegisterFederation(r chi.Router) {
	r.Post("/federation/proposals", h.HandlePush)
}

// HandleSubmit handles POST /proposals requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[SubmitProposalRequest](w, r, h.logger)
	if !ok {
		return
	}

	p, err := h.service.Submit(ctx, req.ParsedDraft())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "proposal submitted",
		"request_id", requestcontext.RequestID(ctx),
		"proposal_id", p.ID.String(),
		"type", string(p.Type),
		"nodes", len(p.Nodes),
	)

	httputil.WriteJSON(w, http.StatusCreated, p)
}

// HandleQuery handles GET /proposals requests.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	proposals := h.service.Query(ctx, filter)
	if proposals == nil {
		proposals = []*models.RegionalProposal{}
	}
	httputil.WriteJSON(w, http.StatusOK, &ProposalListResponse{Proposals: proposals})
}

// HandleGet handles GET /proposals/{proposalID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Get(ctx, proposalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleVote handles POST /proposals/{proposalID}/votes requests.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[VoteRequest](w, r, h.logger)
	if !ok {
		return
	}

	updated, err := h.service.RecordVote(ctx, proposalID, service.Ballot{
		Voter:   req.Voter,
		Kind:    req.ParsedKind(),
		Surface: req.ParsedSurface(),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &VoteResponse{
		ProposalID: updated.ID.String(),
		Tallies:    updated.Tallies,
	})
}

// HandleSync handles POST /proposals/{proposalID}/sync requests. The body is
// optional: without one the sync targets every assigned node.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req SyncProposalRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var report *federation.SyncReport
	if nodes := req.ParsedNodes(); len(nodes) > 0 {
		report, err = h.syncer.SyncNodes(ctx, proposalID, nodes)
	} else {
		report, err = h.syncer.SyncProposal(ctx, proposalID)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "proposal sync completed",
		"request_id", requestcontext.RequestID(ctx),
		"proposal_id", proposalID.String(),
		"status", string(report.Status),
		"synced", len(report.Synced),
		"failed", len(report.Failed),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromSyncReport(report))
}

// HandleCrossDeck handles GET /proposals/{proposalID}/crossdeck requests.
func (h *Handler) HandleCrossDeck(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	overlay, err := h.service.CrossDeckOverlay(proposalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overlay)
}

// HandleAnalytics handles GET /analytics/regions/{jurisdiction} requests.
func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jurisdiction, err := id.ParseJurisdiction(chi.URLParam(r, "jurisdiction"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.service.AnalyticsFor(ctx, jurisdiction))
}

// HandlePush handles POST /federation/proposals requests from peers. The
// peer auth middleware has already verified the bearer token and stored the
// signing origin on the context.
func (h *Handler) HandlePush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	origin := auth.GetPeerOrigin(ctx)
	if origin == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "peer identity missing"))
		return
	}

	var envelope federation.Envelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	if err := h.service.ReceivePush(ctx, origin, envelope.Protocol, envelope.Proposal); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "peer push accepted",
		"request_id", requestcontext.RequestID(ctx),
		"origin", origin,
		"proposal_id", envelope.Proposal.ID.String(),
	)

	httputil.WriteJSON(w, http.StatusAccepted, &PushAck{
		Status:     "accepted",
		ProposalID: envelope.Proposal.ID.String(),
	})
}

// parseFilter builds a proposal filter from query parameters.
func parseFilter(r *http.Request) (models.Filter, error) {
	var filter models.Filter
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("jurisdiction")); raw != "" {
		jurisdiction, err := id.ParseJurisdiction(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Jurisdiction = jurisdiction
	}
	if raw := strings.TrimSpace(query.Get("node")); raw != "" {
		node, err := id.ParseNodeID(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Node = node
	}
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		proposalType, err := models.ParseProposalType(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Type = proposalType
	}
	if raw := strings.TrimSpace(query.Get("urgency")); raw != "" {
		urgency, err := models.ParseUrgency(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Urgency = urgency
	}
	if raw := strings.TrimSpace(query.Get("sync_status")); raw != "" {
		status, err := models.ParseSyncStatus(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.SyncStatus = status
	}
	if raw := strings.TrimSpace(query.Get("submitted_after")); raw != "" {
		after, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeInvalidInput, "submitted_after must be an RFC 3339 timestamp")
		}
		filter.SubmittedAfter = after
	}
	if raw := strings.TrimSpace(query.Get("submitted_before")); raw != "" {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeInvalidInput, "submitted_before must be an RFC 3339 timestamp")
		}
		filter.SubmittedBefore = before
	}
	if raw := strings.TrimSpace(query.Get("cross_deck")); raw != "" {
		crossDeck, err := strconv.ParseBool(raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeInvalidInput, "cross_deck must be a boolean")
		}
		filter.CrossDeckOnly = crossDeck
	}
	return filter, nil
}
