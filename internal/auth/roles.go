package auth

import (
	userDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/user"
)

// AdminRoles may manage invitations for any non-owner role.
var AdminRoles = []string{userDatamodel.RoleSuperAdmin, userDatamodel.RoleHRAdmin}

// InviterRoles may send invitations at all.
var InviterRoles = []string{userDatamodel.RoleSuperAdmin, userDatamodel.RoleHRAdmin, userDatamodel.RoleManager}

// CanInvite reports whether a user holding inviterRole may invite someone
// into inviteeRole. SUPER_ADMIN is only ever granted at signup.
func CanInvite(inviterRole, inviteeRole string) bool {
	if inviteeRole == userDatamodel.RoleSuperAdmin {
		return false
	}
	switch inviterRole {
	case userDatamodel.RoleSuperAdmin, userDatamodel.RoleHRAdmin:
		return userDatamodel.IsValidRole(inviteeRole)
	case userDatamodel.RoleManager:
		return inviteeRole == userDatamodel.RoleEmployee
	}
	return false
}

// SameOrganization reports whether u belongs to the tenant that owns a
// resource.
func SameOrganization(u *User, organizationID string) bool {
	return u != nil && organizationID != "" && u.OrganizationID == organizationID
}
