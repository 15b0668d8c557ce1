// Package request assigns a unique ID to every request for log correlation.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"streamgate/pkg/requestcontext"
)

// HeaderRequestID is echoed to clients so they can quote the ID in support
// requests.
const HeaderRequestID = "X-Request-ID"

// RequestID attaches a UUID to the request context and response headers.
// An inbound X-Request-ID from a trusted proxy is preserved.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
