package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/beacon/internal"
	"github.com/rs/zerolog"
)

// RecoveryMiddleware turns a panic into a 500 and logs the stack.
func RecoveryMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("url", r.URL.String()).
						Str("stack", string(debug.Stack())).
						Msg("panic recovered")

					status, body := internal.NewInternalError("internal server error", nil).ToHTTPResponse()
					writeJSON(w, status, body)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
