package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/transport"
	"github.com/frahmantamala/beacon/pkg/logger"
	"github.com/rs/zerolog"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*AuthTokens, error)
	RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (*AuthTokens, error)
	Authenticate(ctx context.Context, token string) (*User, error)
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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	tokens, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("authentication failed")
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("token refresh failed")
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout is stateless: tokens are short-lived and the client discards them.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.Authenticate(r.Context(), token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		u, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.Logger.Warn().Err(err).Msg("auth middleware: token rejected")
			h.HandleServiceError(w, err)
			return
		}

		ctx := WithUser(r.Context(), u)
		ctx = internal.ContextWithUserID(ctx, u.ID)
		ctx = internal.ContextWithOrganizationID(ctx, u.OrganizationID)
		ctx = logger.With(ctx, "user_id", u.ID, "organization_id", u.OrganizationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
