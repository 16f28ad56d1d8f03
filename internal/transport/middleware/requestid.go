package middleware

import (
	"net/http"

	"github.com/frahmantamala/beacon/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the id assigned by chi's RequestID middleware when
// present, otherwise the caller's header or a fresh uuid. The id is echoed
// back and attached to the request logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := chiMiddleware.GetReqID(r.Context())
		if reqID == "" {
			reqID = r.Header.Get(RequestIDHeader)
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "request_id", reqID)
		w.Header().Set(RequestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
