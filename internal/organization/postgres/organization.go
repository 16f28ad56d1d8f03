package postgres

import (
	"context"
	"errors"
	"fmt"

	organizationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/organization"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create inserts org. A clash on organizations.slug surfaces as
// gorm.ErrDuplicatedKey.
func (r *OrganizationRepository) Create(ctx context.Context, org *organizationDatamodel.Organization) error {
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&organizationDatamodel.Organization{}).Error
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*organizationDatamodel.Organization, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*organizationDatamodel.Organization, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *OrganizationRepository) GetByBillingCustomerID(ctx context.Context, customerID string) (*organizationDatamodel.Organization, error) {
	return r.first(ctx, "billing_customer_id = ?", customerID)
}

func (r *OrganizationRepository) first(ctx context.Context, query string, arg interface{}) (*organizationDatamodel.Organization, error) {
	var org organizationDatamodel.Organization
	err := r.db.WithContext(ctx).Where(query, arg).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) SetBillingCustomerID(ctx context.Context, id, customerID string) error {
	return r.db.WithContext(ctx).
		Model(&organizationDatamodel.Organization{}).
		Where("id = ?", id).
		Update("billing_customer_id", customerID).Error
}

func (r *OrganizationRepository) UpdateSubscription(ctx context.Context, id, status, tier string) error {
	result := r.db.WithContext(ctx).
		Model(&organizationDatamodel.Organization{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"subscription_status": status,
			"subscription_tier":   tier,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
