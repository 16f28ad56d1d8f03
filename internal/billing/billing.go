// Package billing talks to Stripe: customer creation at signup and
// subscription status updates from webhooks.
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/beacon/internal"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

var ErrNotConfigured = errors.New("billing: stripe secret key not configured")

// CustomerAPI is the part of the Stripe customers client we use.
type CustomerAPI interface {
	New(params *stripe.CustomerParams) (*stripe.Customer, error)
}

type Client struct {
	customers CustomerAPI
	logger    zerolog.Logger
}

func NewClient(cfg internal.BillingConfig, logger zerolog.Logger) *Client {
	c := &Client{logger: logger.With().Str("component", "billing").Logger()}
	if cfg.StripeSecretKey == "" {
		c.logger.Warn().Msg("stripe secret key not set, billing customers will not be created")
		return c
	}
	c.customers = client.New(cfg.StripeSecretKey, nil).Customers
	return c
}

// NewClientWithAPI builds a client over an existing customers API.
func NewClientWithAPI(customers CustomerAPI, logger zerolog.Logger) *Client {
	return &Client{customers: customers, logger: logger}
}

func (c *Client) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	if c.customers == nil {
		return "", ErrNotConfigured
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	customer, err := c.customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}

	c.logger.Info().
		Str("customer_id", customer.ID).
		Str("organization_id", metadata["organization_id"]).
		Msg("billing customer created")
	return customer.ID, nil
}
