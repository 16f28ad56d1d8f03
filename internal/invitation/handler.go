package invitation

import (
	"context"
	"net/http"

	"github.com/frahmantamala/beacon/internal/auth"
	"github.com/frahmantamala/beacon/internal/transport"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
)

type ServiceAPI interface {
	Create(ctx context.Context, inviter *auth.User, dto CreateInvitationDTO) (*Invitation, error)
	Cancel(ctx context.Context, actor *auth.User, invitationID string) error
	Lookup(ctx context.Context, token string) (*Summary, error)
	ListPending(ctx context.Context, actor *auth.User) ([]*Invitation, error)
	Accept(ctx context.Context, dto AcceptDTO) (*AcceptResult, error)
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

// AcceptInvitation handles POST /invitations/accept
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var dto AcceptDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	result, err := h.Service.Accept(r.Context(), dto)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("invitation acceptance failed")
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

// LookupInvitation handles GET /invitations/{token}
func (h *Handler) LookupInvitation(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Lookup(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

// CreateInvitation handles POST /invitations
func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateInvitationDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	inv, err := h.Service.Create(r.Context(), user, dto)
	if err != nil {
		h.Logger.Warn().Err(err).Str("user_id", user.ID).Msg("create invitation failed")
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, inv)
}

// ListInvitations handles GET /invitations
func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	invitations, err := h.Service.ListPending(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"invitations": invitations})
}

// CancelInvitation handles DELETE /invitations/{id}
func (h *Handler) CancelInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.Cancel(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
