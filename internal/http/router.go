// Package httpapi assembles the node's HTTP surface: the middleware chain,
// the per-context routers, and the operational endpoints. Business logic
// stays in the context services; this package only mounts and guards routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"concord/internal/platform/metrics"
	"concord/pkg/platform/httputil"
	"concord/pkg/platform/middleware/admin"
	"concord/pkg/platform/middleware/auth"
	"concord/pkg/platform/middleware/metadata"
	"concord/pkg/platform/middleware/request"
	"concord/pkg/platform/middleware/requesttime"
)

// healthProbeTimeout bounds each dependency probe so one hung backend cannot
// stall the health endpoint.
const healthProbeTimeout = 2 * time.Second

// RegistryRoutes mounts the registry synchronization endpoints.
type RegistryRoutes interface {
	Register(r chi.Router)
}

// ProposalRoutes mounts the proposal endpoints. Register carries the public
// governance surface; RegisterSync the operator sync trigger; and
// RegisterFederation the peer-facing push endpoint.
type ProposalRoutes interface {
	Register(r chi.Router)
	RegisterSync(r chi.Router)
	RegisterFederation(r chi.Router)
}

// HealthCheck probes one backing dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps carries everything the router assembles. Metrics may be nil; tests
// build routers without touching the global Prometheus registry.
type Deps struct {
	Logger       *slog.Logger
	Registry     RegistryRoutes
	Proposals    ProposalRoutes
	PeerVerifier auth.PeerVerifier
	AdminToken   string
	Metrics      *metrics.HTTP
	Checks       []HealthCheck

	// ClientMetadata captures caller IP and user agent for audit
	// attribution. Deployments behind anonymizing proxies turn it off.
	ClientMetadata bool
}

// New wires the process router. The public governance surface stays open;
// sync triggers sit behind the admin token, and the federation receive
// endpoint behind peer authentication.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)
	if deps.ClientMetadata {
		r.Use(metadata.ClientMetadata)
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", handleHealth(deps.Logger, deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	deps.Proposals.Register(r)

	// Sync triggers fan out real work to peers and sources, so they are
	// operator actions, not public API.
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(deps.AdminToken, deps.Logger))
		deps.Registry.Register(r)
		deps.Proposals.RegisterSync(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePeerAuth(deps.PeerVerifier, deps.Logger))
		deps.Proposals.RegisterFederation(r)
	})

	return r
}

// healthResponse reports per-dependency probe outcomes.
type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func handleHealth(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if len(checks) > 0 {
			resp.Dependencies = make(map[string]string, len(checks))
		}

		healthy := true
		for _, check := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
			err := check.Check(ctx)
			cancel()

			if err != nil {
				healthy = false
				resp.Dependencies[check.Name] = err.Error()
				logger.WarnContext(r.Context(), "health probe failed",
					"dependency", check.Name,
					"error", err,
				)
				continue
			}
			resp.Dependencies[check.Name] = "ok"
		}

		status := http.StatusOK
		if !healthy {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
