package invitation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusCanceled = "CANCELED"
)

type Invitation struct {
	ID             string     `gorm:"primaryKey;type:varchar(64)"`
	OrganizationID string     `gorm:"column:organization_id;index;not null"`
	Email          string     `gorm:"column:email;index;not null"`
	Name           string     `gorm:"column:name;not null"`
	Title          string     `gorm:"column:title"`
	Role           string     `gorm:"column:role;not null"`
	DepartmentID   *string    `gorm:"column:department_id"`
	ManagerID      *string    `gorm:"column:manager_id"`
	InvitedBy      string     `gorm:"column:invited_by;not null"`
	Token          string     `gorm:"column:token;uniqueIndex;not null"`
	Status         string     `gorm:"column:status;index;not null"`
	ExpiresAt      time.Time  `gorm:"column:expires_at;not null"`
	AcceptedAt     *time.Time `gorm:"column:accepted_at"`
	CanceledAt     *time.Time `gorm:"column:canceled_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// IsExpired reports whether the invitation can no longer be used at now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}
