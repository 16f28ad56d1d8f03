package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/auth"
	"github.com/frahmantamala/beacon/pkg/logger"
)

// RequireRoles lets the request through only when the authenticated user
// holds one of roles. It must run after the auth middleware.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				status, body := internal.ErrInvalidToken.ToHTTPResponse()
				writeJSON(w, status, body)
				return
			}

			if !user.HasRole(roles...) {
				logger.From(r.Context()).Warn().
					Str("user_id", user.ID).
					Str("role", user.Role).
					Strs("required_roles", roles).
					Msg("access denied: insufficient role")
				status, body := internal.ErrInsufficientRole.ToHTTPResponse()
				writeJSON(w, status, body)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
