package organization

import (
	"context"
	"net/http"

	"github.com/frahmantamala/beacon/internal/auth"
	"github.com/frahmantamala/beacon/internal/transport"
	"github.com/rs/zerolog"
)

type ProvisionerAPI interface {
	Provision(ctx context.Context, dto ProvisionDTO) (*ProvisionResult, error)
}

type ServiceAPI interface {
	Current(ctx context.Context, organizationID string) (*Organization, error)
}

type Handler struct {
	*transport.BaseHandler
	Provisioner ProvisionerAPI
	Service     ServiceAPI
}

func NewHandler(provisioner ProvisionerAPI, svc ServiceAPI, lg *zerolog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Provisioner: provisioner,
		Service:     svc,
	}
}

// CreateOrganization handles POST /organizations
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var dto ProvisionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	result, err := h.Provisioner.Provision(r.Context(), dto)
	if err != nil {
		h.Logger.Warn().Err(err).Str("organization_name", dto.OrganizationName).Msg("provisioning failed")
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

// GetCurrent handles GET /organizations/current
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	org, err := h.Service.Current(r.Context(), user.OrganizationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, org)
}
