package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/beacon/internal/transport/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		body      string
		status    int
		wantLevel string
		contains  []string
		absent    []string
	}{
		{
			name:      "signup password is redacted",
			path:      "/api/v1/organizations",
			body:      `{"admin_email":"ada@acme.io","admin_password":"hunter22"}`,
			status:    http.StatusCreated,
			wantLevel: "info",
			contains:  []string{"ada@acme.io", "[FILTERED]"},
			absent:    []string{"hunter22"},
		},
		{
			name:      "webhook payload is not logged",
			path:      "/api/v1/billing/webhook",
			body:      `{"id":"evt_123","type":"customer.subscription.updated"}`,
			status:    http.StatusBadRequest,
			wantLevel: "warn",
			absent:    []string{"evt_123"},
		},
		{
			name:      "server errors log at error",
			path:      "/api/v1/users",
			status:    http.StatusInternalServerError,
			wantLevel: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			logger := zerolog.New(&out)

			h := middleware.LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer abc.def.ghi")
			req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)

			var line map[string]interface{}
			require.NoError(t, json.Unmarshal(out.Bytes(), &line))
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.EqualValues(t, tt.status, line["status_code"])

			logged := out.String()
			assert.NotContains(t, logged, "abc.def.ghi")
			assert.NotContains(t, logged, "deadbeef")
			for _, s := range tt.contains {
				assert.Contains(t, logged, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, logged, s)
			}
		})
	}
}
