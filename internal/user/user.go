package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/user"
)

const (
	RoleSuperAdmin = userDatamodel.RoleSuperAdmin
	RoleHRAdmin    = userDatamodel.RoleHRAdmin
	RoleManager    = userDatamodel.RoleManager
	RoleEmployee   = userDatamodel.RoleEmployee
)

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Title          string    `json:"title,omitempty"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organization_id"`
	DepartmentID   *string   `json:"department_id,omitempty"`
	ManagerID      *string   `json:"manager_id,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleHRAdmin
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Title:          u.Title,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		DepartmentID:   u.DepartmentID,
		ManagerID:      u.ManagerID,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Title:          u.Title,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		DepartmentID:   u.DepartmentID,
		ManagerID:      u.ManagerID,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
