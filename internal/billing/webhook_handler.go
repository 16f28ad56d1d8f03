package billing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	organizationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/organization"
	"github.com/frahmantamala/beacon/internal/transport"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

const maxWebhookBodyBytes = int64(65536)

// SubscriptionUpdater applies a mapped subscription to the organization that
// owns the Stripe customer.
type SubscriptionUpdater interface {
	UpdateSubscriptionByCustomer(ctx context.Context, customerID, status, tier string) error
}

type WebhookHandler struct {
	*transport.BaseHandler
	secret  string
	updater SubscriptionUpdater
}

func NewWebhookHandler(secret string, updater SubscriptionUpdater, lg *zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		secret:      secret,
		updater:     updater,
	}
}

type webhookResponse struct {
	Status string `json:"status"`
}

// HandleStripeWebhook handles POST /billing/webhook
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		h.WriteError(w, http.StatusServiceUnavailable, "billing webhooks are not configured")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.Logger.Warn().Err(err).Msg("stripe webhook signature verification failed")
		h.WriteError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
	default:
		h.Logger.Debug().Str("event_type", string(event.Type)).Msg("ignoring stripe event")
		h.WriteJSON(w, http.StatusOK, webhookResponse{Status: "ignored"})
		return
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.Logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to decode subscription")
		h.WriteError(w, http.StatusBadRequest, "invalid subscription payload")
		return
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		h.WriteError(w, http.StatusBadRequest, "subscription has no customer")
		return
	}

	status := MapSubscriptionStatus(sub.Status)
	tier := MapSubscriptionTier(&sub)
	if event.Type == stripe.EventTypeCustomerSubscriptionDeleted {
		status = organizationDatamodel.StatusCanceled
		tier = organizationDatamodel.TierFree
	}

	if err := h.updater.UpdateSubscriptionByCustomer(r.Context(), sub.Customer.ID, status, tier); err != nil {
		h.Logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("customer_id", sub.Customer.ID).
			Msg("failed to apply subscription update")
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info().
		Str("event_id", event.ID).
		Str("customer_id", sub.Customer.ID).
		Str("status", status).
		Str("tier", tier).
		Msg("subscription updated")
	h.WriteJSON(w, http.StatusOK, webhookResponse{Status: "processed"})
}
