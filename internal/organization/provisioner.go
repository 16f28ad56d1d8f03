package organization

import (
	"context"
	stdErrors "errors"
	"fmt"

	errors "github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/audit"
	"github.com/frahmantamala/beacon/internal/core/common/dberr"
	auditDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/audit"
	organizationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/user"
	"github.com/frahmantamala/beacon/internal/core/events"
	"github.com/frahmantamala/beacon/internal/core/saga"
	"github.com/frahmantamala/beacon/internal/identity"
	"github.com/frahmantamala/beacon/internal/user"
	"github.com/rs/zerolog"
)

const SagaProvision = "provision_organization"

// ProvisionerDeps are the collaborators of a signup. Billing, Settings,
// Audit and Events may be nil; their steps are then skipped.
type ProvisionerDeps struct {
	Organizations Repository
	Users         user.Repository
	Identity      identity.Provider
	Billing       BillingProvider
	Settings      SettingsSeeder
	Audit         audit.Recorder
	Events        events.Publisher
	Runner        *saga.Runner
}

// Provisioner creates an organization together with its first SUPER_ADMIN.
type Provisioner struct {
	deps   ProvisionerDeps
	logger zerolog.Logger
}

func NewProvisioner(deps ProvisionerDeps, logger zerolog.Logger) *Provisioner {
	if deps.Runner == nil {
		deps.Runner = saga.NewRunner(logger)
	}
	return &Provisioner{
		deps:   deps,
		logger: logger.With().Str("component", "provisioner").Logger(),
	}
}

func (p *Provisioner) Provision(ctx context.Context, dto ProvisionDTO) (*ProvisionResult, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	slug := Slugify(dto.OrganizationName)

	existing, err := p.deps.Organizations.GetBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NewInternalError("failed to check organization slug", err)
	}
	if existing != nil {
		return nil, errors.ErrOrganizationExists
	}

	taken, err := p.deps.Users.ExistsByEmail(ctx, dto.AdminEmail)
	if err != nil {
		return nil, errors.NewInternalError("failed to check admin email", err)
	}
	if taken {
		return nil, errors.ErrUserExists
	}

	org := &organizationDatamodel.Organization{
		Name:               dto.OrganizationName,
		Slug:               slug,
		SubscriptionStatus: organizationDatamodel.StatusTrialing,
		SubscriptionTier:   organizationDatamodel.TierFree,
	}
	admin := &userDatamodel.User{
		Email:    dto.AdminEmail,
		Name:     dto.AdminName,
		Role:     userDatamodel.RoleSuperAdmin,
		IsActive: true,
	}
	var accountID string

	steps := []saga.Step{
		{
			Name:        "create_identity",
			Criticality: saga.Critical,
			Action: func(ctx context.Context) error {
				id, err := p.deps.Identity.CreateAccount(ctx, identity.AccountRequest{
					Email:         dto.AdminEmail,
					Password:      dto.AdminPassword,
					EmailVerified: true,
					Metadata:      map[string]string{"role": userDatamodel.RoleSuperAdmin},
				})
				if err != nil {
					if stdErrors.Is(err, identity.ErrEmailExists) {
						return errors.ErrUserExists.WithCause(err)
					}
					return errors.NewProvisioningError("failed to create account", err)
				}
				accountID = id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return p.deps.Identity.DeleteAccount(ctx, accountID)
			},
		},
		{
			Name:        "create_organization",
			Criticality: saga.Critical,
			Action: func(ctx context.Context) error {
				if err := p.deps.Organizations.Create(ctx, org); err != nil {
					if dberr.IsUniqueViolation(err) {
						return errors.ErrOrganizationExists.WithCause(err)
					}
					return errors.NewProvisioningError("failed to create organization", err)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return p.deps.Organizations.Delete(ctx, org.ID)
			},
		},
		{
			Name:        "create_admin_user",
			Criticality: saga.Critical,
			Action: func(ctx context.Context) error {
				admin.ID = accountID
				admin.OrganizationID = org.ID
				if err := p.deps.Users.Create(ctx, admin); err != nil {
					if dberr.IsUniqueViolation(err) {
						return errors.ErrUserExists.WithCause(err)
					}
					return errors.NewProvisioningError("failed to create user profile", err)
				}
				return nil
			},
		},
		{
			Name:        "create_billing_customer",
			Criticality: saga.BestEffort,
			Action: func(ctx context.Context) error {
				if p.deps.Billing == nil {
					return nil
				}
				customerID, err := p.deps.Billing.CreateCustomer(ctx, admin.Email, org.Name, map[string]string{
					"organization_id": org.ID,
				})
				if err != nil {
					return err
				}
				if err := p.deps.Organizations.SetBillingCustomerID(ctx, org.ID, customerID); err != nil {
					// The customer exists upstream; keep its id so it can be re-attached.
					p.logger.Error().Err(err).
						Str("organization_id", org.ID).
						Str("customer_id", customerID).
						Msg("billing customer not attached to organization")
					return fmt.Errorf("attach billing customer %s: %w", customerID, err)
				}
				org.BillingCustomerID = &customerID
				return nil
			},
		},
		{
			Name:        "seed_settings",
			Criticality: saga.BestEffort,
			Action: func(ctx context.Context) error {
				if p.deps.Settings == nil {
					return nil
				}
				return p.deps.Settings.SeedDefaults(ctx, org.ID)
			},
		},
		{
			Name:        "record_audit",
			Criticality: saga.BestEffort,
			Action: func(ctx context.Context) error {
				if p.deps.Audit == nil {
					return nil
				}
				return p.deps.Audit.Record(ctx, audit.Entry{
					OrganizationID: org.ID,
					ActorID:        admin.ID,
					Action:         audit.ActionOrganizationCreated,
					EntityType:     auditDatamodel.EntityOrganization,
					EntityID:       org.ID,
					Details: map[string]interface{}{
						"name": org.Name,
						"slug": org.Slug,
					},
				})
			},
		},
	}

	if _, err := p.deps.Runner.Run(ctx, SagaProvision, steps); err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("organization_id", org.ID).
		Str("slug", org.Slug).
		Str("admin_user_id", admin.ID).
		Msg("organization provisioned")

	if p.deps.Events != nil {
		event := events.NewOrganizationProvisionedEvent(org.ID, org.Slug, admin.ID, admin.Email)
		if err := p.deps.Events.Publish(ctx, event); err != nil {
			p.logger.Error().Err(err).Str("organization_id", org.ID).Msg("failed to publish organization.provisioned")
		}
	}

	return &ProvisionResult{
		Organization: FromDatamodel(org),
		User:         user.FromDataModel(admin),
	}, nil
}
