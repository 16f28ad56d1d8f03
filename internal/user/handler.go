package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/beacon/internal/auth"
	"github.com/frahmantamala/beacon/internal/transport"
	"github.com/rs/zerolog"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID string) (*User, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, lg *zerolog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error().Msg("GetCurrentUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.GetByID(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error().Err(err).Str("user_id", user.ID).Msg("GetCurrentUser: service GetByID failed")
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.Service.ListByOrganization(r.Context(), user.OrganizationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ListUsersResponse{Users: users, Total: len(users)})
}
