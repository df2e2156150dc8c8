// Package handler wires registry synchronization into the HTTP layer.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"concord/internal/registry/models"
	"concord/internal/registry/store"
	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
	"concord/pkg/platform/httputil"
	"concord/pkg/requestcontext"
)

// Engine defines the registry sync operations the handler depends on.
type Engine interface {
	ValidateAndSync(ctx context.Context, registryID id.RegistryID) *models.SyncResult
	BatchSync(ctx context.Context, registryIDs []id.RegistryID) []*models.SyncResult
	Summary(results []*models.SyncResult) models.SyncSummary
}

// Handler serves registry synchronization endpoints.
type Handler struct {
	engine  Engine
	results store.ResultStore
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(engine Engine, results store.ResultStore, logger *slog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		results: results,
		logger:  logger,
	}
}

// Register mounts registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registry/sync", h.HandleSync)
	r.Post("/registry/sync/batch", h.HandleBatchSync)
	r.Get("/registry/syncs", h.HandleListSyncs)
	r.Get("/registry/syncs/summary", h.HandleSyncSummary)
}

// HandleSync handles POST /registry/sync requests.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[SyncRequest](w, r, h.logger)
	if !ok {
		return
	}

	result := h.engine.ValidateAndSync(ctx, req.ParsedRegistryID())

	h.logger.InfoContext(ctx, "registry sync completed",
		"request_id", requestID,
		"registry_id", result.RegistryID,
		"consensus_achieved", result.ConsensusAchieved,
		"verifiers_validated", result.VerifiersValidated,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromSyncResult(result))
}

// HandleBatchSync handles POST /registry/sync/batch requests.
func (h *Handler) HandleBatchSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BatchSyncRequest](w, r, h.logger)
	if !ok {
		return
	}

	results := h.engine.BatchSync(ctx, req.ParsedRegistryIDs())
	summary := h.engine.Summary(results)

	h.logger.InfoContext(ctx, "registry batch sync completed",
		"request_id", requestID,
		"registries", summary.TotalProcessed,
		"successful", summary.SuccessfulSyncs,
		"failed", summary.FailedSyncs,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, &BatchSyncResponse{
		Results: FromSyncResults(results),
		Summary: FromSummary(summary),
	})
}

// HandleListSyncs handles GET /registry/syncs requests.
func (h *Handler) HandleListSyncs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.results == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "sync history is not configured"))
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var (
		results []*models.SyncResult
		listErr error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("registry_id")); raw != "" {
		registryID, parseErr := id.ParseRegistryID(raw)
		if parseErr != nil {
			httputil.WriteError(w, parseErr)
			return
		}
		results, listErr = h.results.ListByRegistry(ctx, registryID, limit)
	} else {
		results, listErr = h.results.ListRecent(ctx, limit)
	}
	if listErr != nil {
		h.logger.ErrorContext(ctx, "sync history lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", listErr,
		)
		httputil.WriteError(w, listErr)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &SyncListResponse{Syncs: FromSyncResults(results)})
}

// HandleSyncSummary handles GET /registry/syncs/summary requests.
func (h *Handler) HandleSyncSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.results == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "sync history is not configured"))
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	results, err := h.results.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync history lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSummary(h.engine.Summary(results)))
}

func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer")
	}
	return limit, nil
}
