package settings

import (
	"context"
	"net/http"

	"github.com/frahmantamala/beacon/internal/auth"
	"github.com/frahmantamala/beacon/internal/transport"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
)

type ServiceAPI interface {
	Get(ctx context.Context, organizationID, category string) (*Setting, error)
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

// GetSetting handles GET /settings/{category}
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	setting, err := h.Service.Get(r.Context(), user.OrganizationID, chi.URLParam(r, "category"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, setting)
}
