// Package request assigns every inbound request a correlation ID.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"concord/pkg/requestcontext"
)

// HeaderRequestID is the wire header for request correlation.
const HeaderRequestID = "X-Request-ID"

// Middleware reuses a caller-supplied request ID when present and valid,
// otherwise generates one. The ID is stored in the context and echoed on the
// response so clients and logs can be correlated.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
