package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/auth"
	"github.com/frahmantamala/beacon/internal/user"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	users map[string]*user.User
}

func (s *stubService) GetByID(ctx context.Context, id string) (*user.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, internal.ErrUserNotFound
}

func (s *stubService) ListByOrganization(ctx context.Context, orgID string) ([]*user.User, error) {
	var out []*user.User
	for _, u := range s.users {
		if u.OrganizationID == orgID {
			out = append(out, u)
		}
	}
	return out, nil
}

func newHandler() *user.Handler {
	lg := zerolog.Nop()
	return user.NewHandler(&stubService{users: map[string]*user.User{
		"u-1": {ID: "u-1", Email: "ada@acme.io", OrganizationID: "org-1", Role: user.RoleSuperAdmin},
		"u-2": {ID: "u-2", Email: "grace@acme.io", OrganizationID: "org-1", Role: user.RoleEmployee},
		"u-3": {ID: "u-3", Email: "bob@globex.io", OrganizationID: "org-2", Role: user.RoleEmployee},
	}}, &lg)
}

func TestHandler_GetCurrentUser(t *testing.T) {
	tests := []struct {
		name       string
		caller     *auth.User
		wantStatus int
		wantEmail  string
	}{
		{name: "authenticated", caller: &auth.User{ID: "u-1", OrganizationID: "org-1"}, wantStatus: http.StatusOK, wantEmail: "ada@acme.io"},
		{name: "no caller", wantStatus: http.StatusUnauthorized},
		{name: "profile gone", caller: &auth.User{ID: "u-9", OrganizationID: "org-1"}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if tt.caller != nil {
				req = req.WithContext(auth.WithUser(req.Context(), tt.caller))
			}
			rec := httptest.NewRecorder()

			newHandler().GetCurrentUser(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantEmail != "" {
				var got user.User
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, tt.wantEmail, got.Email)
			}
		})
	}
}

func TestHandler_ListUsersIsTenantScoped(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req = req.WithContext(auth.WithUser(req.Context(), &auth.User{ID: "u-1", OrganizationID: "org-1"}))
	rec := httptest.NewRecorder()

	newHandler().ListUsers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got user.ListUsersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Total)
	for _, u := range got.Users {
		assert.Equal(t, "org-1", u.OrganizationID)
	}
}
