package invitation

import (
	"strings"

	errors "github.com/frahmantamala/beacon/internal"
	userDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/user"
	"github.com/frahmantamala/beacon/internal/core/common/validation"
)

const MinPasswordLength = 8

type AcceptDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (d *AcceptDTO) Normalize() {
	d.Token = strings.TrimSpace(d.Token)
}

func (d AcceptDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	v.Field("password", d.Password).Required().Password(MinPasswordLength)
	return v.Validate()
}

type CreateInvitationDTO struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Role         string  `json:"role"`
	DepartmentID *string `json:"department_id,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
}

func (d *CreateInvitationDTO) Normalize() {
	d.Email = validation.NormalizeEmail(d.Email)
	d.Name = strings.TrimSpace(d.Name)
	d.Title = strings.TrimSpace(d.Title)
	d.Role = strings.ToUpper(strings.TrimSpace(d.Role))
}

func (d CreateInvitationDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("title", d.Title).MaxLength(200)
	v.Field("role", d.Role).Required().OneOf(errors.ErrCodeInvalidRole,
		userDatamodel.RoleSuperAdmin, userDatamodel.RoleHRAdmin, userDatamodel.RoleManager, userDatamodel.RoleEmployee)
	return v.Validate()
}
