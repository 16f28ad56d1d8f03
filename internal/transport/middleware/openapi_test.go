package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/beacon/api"
	"github.com/frahmantamala/beacon/internal/transport/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPIValidator(t *testing.T) {
	validator, err := middleware.NewOpenAPIValidator(context.Background(), api.OpenAPI)
	require.NoError(t, err)

	var seenBody string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seenBody = string(b)
		w.WriteHeader(http.StatusTeapot)
	})
	h := validator.Middleware(next)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid signup reaches the handler",
			method:     http.MethodPost,
			path:       "/api/v1/organizations",
			body:       `{"organization_name":"Acme","admin_name":"Ada","admin_email":"ada@acme.io","admin_password":"supersecret"}`,
			wantStatus: http.StatusTeapot,
		},
		{
			name:       "missing required field",
			method:     http.MethodPost,
			path:       "/api/v1/organizations",
			body:       `{"organization_name":"Acme","admin_name":"Ada","admin_email":"ada@acme.io"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong field type",
			method:     http.MethodPost,
			path:       "/api/v1/invitations/accept",
			body:       `{"token":42,"password":"supersecret"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown settings category",
			method:     http.MethodGet,
			path:       "/api/v1/settings/colors",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "undocumented route passes through",
			method:     http.MethodGet,
			path:       "/api/v1/nope",
			wantStatus: http.StatusTeapot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusBadRequest {
				var resp map[string]map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "VALIDATION_FAILED", resp["error"]["code"])
			}
		})
	}

	t.Run("body is still readable downstream", func(t *testing.T) {
		payload := `{"token":"abc","password":"supersecret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/accept", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.JSONEq(t, payload, seenBody)
	})
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := middleware.RequireRoles("SUPER_ADMIN", "HR_ADMIN")(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invitations", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
