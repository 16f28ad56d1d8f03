package rest

import (
	"database/sql"
	"net/http"

	"github.com/frahmantamala/beacon/api"
	"github.com/frahmantamala/beacon/internal/auth"
	"github.com/frahmantamala/beacon/internal/billing"
	"github.com/frahmantamala/beacon/internal/invitation"
	"github.com/frahmantamala/beacon/internal/organization"
	"github.com/frahmantamala/beacon/internal/settings"
	"github.com/frahmantamala/beacon/internal/transport/middleware"
	"github.com/frahmantamala/beacon/internal/transport/swagger"
	"github.com/frahmantamala/beacon/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups everything mounted under /api/v1. Nil handlers are not
// mounted.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Organization *organization.Handler
	Invitation   *invitation.Handler
	Settings     *settings.Handler
	Billing      *billing.WebhookHandler
	Validator    *middleware.OpenAPIValidator

	// AllowedOrigins is the raw http_server.allowed_origins value.
	AllowedOrigins string
}

const OpenAPIPath = "/openapi.yml"

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, version string, h Handlers, logger zerolog.Logger) {
	healthHandler := NewHealthHandler(db, version)

	router.Use(middleware.CORS(h.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get(OpenAPIPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler(OpenAPIPath))

	router.Route("/api/v1", func(r chi.Router) {
		if h.Validator != nil {
			r.Use(h.Validator.Middleware)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Billing != nil {
			r.Post("/billing/webhook", h.Billing.HandleStripeWebhook)
		}

		// Public onboarding routes
		if h.Organization != nil {
			r.Post("/organizations", h.Organization.CreateOrganization)
		}
		if h.Invitation != nil {
			r.Post("/invitations/accept", h.Invitation.AcceptInvitation)
			r.Get("/invitations/{token}", h.Invitation.LookupInvitation)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.Get("/users", h.User.ListUsers)
			}
			if h.Organization != nil {
				pr.Get("/organizations/current", h.Organization.GetCurrent)
			}
			if h.Settings != nil {
				pr.Get("/settings/{category}", h.Settings.GetSetting)
			}

			if h.Invitation != nil {
				pr.Group(func(ir chi.Router) {
					ir.Use(middleware.RequireRoles(auth.InviterRoles...))
					ir.Post("/invitations", h.Invitation.CreateInvitation)
					ir.Get("/invitations", h.Invitation.ListInvitations)
					ir.Delete("/invitations/{id}", h.Invitation.CancelInvitation)
				})
			}
		})
	})
}
