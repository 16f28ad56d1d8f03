package organization

import (
	"strings"

	errors "github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/core/common/validation"
)

const MinPasswordLength = 8

type ProvisionDTO struct {
	OrganizationName string `json:"organization_name"`
	AdminName        string `json:"admin_name"`
	AdminEmail       string `json:"admin_email"`
	AdminPassword    string `json:"admin_password"`
}

func (d *ProvisionDTO) Normalize() {
	d.OrganizationName = strings.TrimSpace(d.OrganizationName)
	d.AdminName = strings.TrimSpace(d.AdminName)
	d.AdminEmail = validation.NormalizeEmail(d.AdminEmail)
}

func (d ProvisionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("organization_name", d.OrganizationName).Required().MaxLength(200).
		Custom(func(value interface{}) *errors.AppError {
			if name, ok := value.(string); ok && Slugify(name) == "" {
				return errors.NewValidationFieldError("organization_name", "organization_name must contain letters or digits", errors.ErrCodeValidationFailed)
			}
			return nil
		})
	v.Field("admin_name", d.AdminName).Required().MaxLength(200)
	v.Field("admin_email", d.AdminEmail).Required().Email()
	v.Field("admin_password", d.AdminPassword).Required().Password(MinPasswordLength)
	return v.Validate()
}

type UpdateSubscriptionDTO struct {
	CustomerID string
	Status     string
	Tier       string
}
