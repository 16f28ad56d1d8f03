package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleHRAdmin    = "HR_ADMIN"
	RoleManager    = "MANAGER"
	RoleEmployee   = "EMPLOYEE"
)

// User is a member of exactly one organization. ID is the identity
// provider's account id.
type User struct {
	ID             string    `gorm:"primaryKey;type:varchar(128)"`
	Email          string    `gorm:"column:email;uniqueIndex;not null"`
	Name           string    `gorm:"column:name;not null"`
	Title          string    `gorm:"column:title"`
	Role           string    `gorm:"column:role;not null"`
	OrganizationID string    `gorm:"column:organization_id;index;not null"`
	DepartmentID   *string   `gorm:"column:department_id"`
	ManagerID      *string   `gorm:"column:manager_id"`
	IsActive       bool      `gorm:"column:is_active;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func IsValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleHRAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}
