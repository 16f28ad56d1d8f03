package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionOrganizationCreated = "organization.created"
	ActionUserJoined          = "user.joined"
	ActionInvitationCreated   = "invitation.created"
	ActionInvitationCanceled  = "invitation.canceled"
)

const (
	EntityOrganization = "organization"
	EntityUser         = "user"
	EntityInvitation   = "invitation"
)

// AuditLog rows are append-only.
type AuditLog struct {
	ID             string          `gorm:"primaryKey;type:varchar(64)"`
	OrganizationID string          `gorm:"column:organization_id;index;not null"`
	ActorID        *string         `gorm:"column:actor_id"`
	Action         string          `gorm:"column:action;not null"`
	EntityType     string          `gorm:"column:entity_type;not null"`
	EntityID       string          `gorm:"column:entity_id;not null"`
	Details        json.RawMessage `gorm:"column:details;type:jsonb"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
