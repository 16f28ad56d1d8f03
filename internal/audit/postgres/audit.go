package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/audit"
	auditDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends entry. Missing actor and organization ids are taken from
// the authenticated request in ctx.
func (r *AuditRepository) Record(ctx context.Context, entry audit.Entry) error {
	if entry.ActorID == "" {
		entry.ActorID = internal.UserIDFromContext(ctx)
	}
	if entry.OrganizationID == "" {
		entry.OrganizationID = internal.OrganizationIDFromContext(ctx)
	}
	row := &auditDatamodel.AuditLog{
		OrganizationID: entry.OrganizationID,
		Action:         entry.Action,
		EntityType:     entry.EntityType,
		EntityID:       entry.EntityID,
	}
	if entry.ActorID != "" {
		actor := entry.ActorID
		row.ActorID = &actor
	}
	if len(entry.Details) > 0 {
		details, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		row.Details = details
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Exists reports whether an entry with action already exists for entityID.
func (r *AuditRepository) Exists(ctx context.Context, organizationID, action, entityID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&auditDatamodel.AuditLog{}).
		Where("organization_id = ? AND action = ? AND entity_id = ?", organizationID, action, entityID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AuditRepository) ListByOrganization(ctx context.Context, organizationID string, limit int) ([]*auditDatamodel.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []*auditDatamodel.AuditLog
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
