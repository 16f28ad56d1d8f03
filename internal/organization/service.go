package organization

import (
	"context"
	"fmt"

	errors "github.com/frahmantamala/beacon/internal"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "organization").Logger(),
	}
}

func (s *Service) Current(ctx context.Context, organizationID string) (*Organization, error) {
	org, err := s.repo.GetByID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}
	if org == nil {
		return nil, errors.ErrOrganizationNotFound
	}
	return FromDatamodel(org), nil
}

// UpdateSubscriptionByCustomer applies a billing subscription change to the
// organization that owns customerID.
func (s *Service) UpdateSubscriptionByCustomer(ctx context.Context, customerID, status, tier string) error {
	dto := UpdateSubscriptionDTO{CustomerID: customerID, Status: status, Tier: tier}

	org, err := s.repo.GetByBillingCustomerID(ctx, dto.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load organization by customer: %w", err)
	}
	if org == nil {
		s.logger.Warn().Str("customer_id", dto.CustomerID).Msg("no organization for billing customer")
		return errors.ErrOrganizationNotFound
	}

	if err := s.repo.UpdateSubscription(ctx, org.ID, dto.Status, dto.Tier); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	s.logger.Info().
		Str("organization_id", org.ID).
		Str("status", dto.Status).
		Str("tier", dto.Tier).
		Msg("subscription changed")
	return nil
}
