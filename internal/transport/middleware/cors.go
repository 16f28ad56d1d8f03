package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS lets the browser front end call the API. allowedOrigins is the
// comma separated http_server.allowed_origins value; empty or "*" allows any
// origin without credentials.
func CORS(allowedOrigins string) func(http.Handler) http.Handler {
	origins := splitOrigins(allowedOrigins)
	allowAll := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")

	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: !allowAll,
		MaxAge:           600,
	}
	if allowAll {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts).Handler
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
