package organization

import (
	"context"
	"time"

	organizationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/organization"
	"github.com/frahmantamala/beacon/internal/user"
)

type Organization struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	BillingCustomerID  *string   `json:"billing_customer_id,omitempty"`
	SubscriptionStatus string    `json:"subscription_status"`
	SubscriptionTier   string    `json:"subscription_tier"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func FromDatamodel(m *organizationDatamodel.Organization) *Organization {
	if m == nil {
		return nil
	}
	return &Organization{
		ID:                 m.ID,
		Name:               m.Name,
		Slug:               m.Slug,
		BillingCustomerID:  m.BillingCustomerID,
		SubscriptionStatus: m.SubscriptionStatus,
		SubscriptionTier:   m.SubscriptionTier,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

type ProvisionResult struct {
	Organization *Organization `json:"organization"`
	User         *user.User    `json:"user"`
}

// Repository persists organizations. Lookups return nil, nil when no row
// matches.
type Repository interface {
	Create(ctx context.Context, org *organizationDatamodel.Organization) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*organizationDatamodel.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*organizationDatamodel.Organization, error)
	GetByBillingCustomerID(ctx context.Context, customerID string) (*organizationDatamodel.Organization, error)
	SetBillingCustomerID(ctx context.Context, id, customerID string) error
	UpdateSubscription(ctx context.Context, id, status, tier string) error
}

// BillingProvider opens a customer record with the payment processor.
type BillingProvider interface {
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error)
}

// SettingsSeeder writes an organization's default settings rows.
type SettingsSeeder interface {
	SeedDefaults(ctx context.Context, organizationID string) error
}
