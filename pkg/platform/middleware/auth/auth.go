// Package auth guards the federation receive endpoints. Peers authenticate
// pushes with a bearer token signed under the federation's shared key; the
// verified origin node is stored on the request context for handlers and
// audit events.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	request "concord/pkg/platform/middleware/request"
)

// PeerVerifier validates a federation bearer token and returns the origin
// node that signed it.
type PeerVerifier interface {
	VerifyPeer(token string) (origin string, err error)
}

type contextKeyPeerOrigin struct{}

// ContextKeyPeerOrigin is exported for use in handlers.
var ContextKeyPeerOrigin = contextKeyPeerOrigin{}

// GetPeerOrigin retrieves the verified peer origin from the context. Empty
// means the request did not pass peer authentication.
func GetPeerOrigin(ctx context.Context) string {
	origin, ok := ctx.Value(ContextKeyPeerOrigin).(string)
	if !ok {
		return ""
	}
	return origin
}

// writeJSONError writes a JSON error response with the given status code and
// error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequirePeerAuth rejects requests that do not carry a valid federation
// peer token.
func RequirePeerAuth(verifier PeerVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "peer push without bearer token",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			origin, err := verifier.VerifyPeer(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "peer push with invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired peer token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPeerOrigin, origin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
