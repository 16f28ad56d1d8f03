package invitation

import (
	"context"
	"time"

	"github.com/frahmantamala/beacon/internal/audit"
	invitationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/invitation"
	organizationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/organization"
)

const (
	StatusPending  = invitationDatamodel.StatusPending
	StatusAccepted = invitationDatamodel.StatusAccepted
	StatusCanceled = invitationDatamodel.StatusCanceled

	DefaultTTL = 7 * 24 * time.Hour
)

// Invitation is the admin-facing view. The token only travels by e-mail.
type Invitation struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Title          string     `json:"title,omitempty"`
	Role           string     `json:"role"`
	DepartmentID   *string    `json:"department_id,omitempty"`
	ManagerID      *string    `json:"manager_id,omitempty"`
	InvitedBy      string     `json:"invited_by"`
	Status         string     `json:"status"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CanceledAt     *time.Time `json:"canceled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func FromDatamodel(m *invitationDatamodel.Invitation) *Invitation {
	if m == nil {
		return nil
	}
	return &Invitation{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Email:          m.Email,
		Name:           m.Name,
		Title:          m.Title,
		Role:           m.Role,
		DepartmentID:   m.DepartmentID,
		ManagerID:      m.ManagerID,
		InvitedBy:      m.InvitedBy,
		Status:         m.Status,
		ExpiresAt:      m.ExpiresAt,
		AcceptedAt:     m.AcceptedAt,
		CanceledAt:     m.CanceledAt,
		CreatedAt:      m.CreatedAt,
	}
}

// Summary is what the public accept page shows before the invitee sets a
// password.
type Summary struct {
	OrganizationName string    `json:"organization_name"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Title            string    `json:"title,omitempty"`
	Role             string    `json:"role"`
	ExpiresAt        time.Time `json:"expires_at"`
}

type AcceptResult struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Repository lookups return nil, nil when no row matches.
type Repository interface {
	Create(ctx context.Context, inv *invitationDatamodel.Invitation) error
	GetByID(ctx context.Context, id string) (*invitationDatamodel.Invitation, error)
	GetPendingByToken(ctx context.Context, token string) (*invitationDatamodel.Invitation, error)
	GetPendingByEmail(ctx context.Context, organizationID, email string) (*invitationDatamodel.Invitation, error)
	ListPending(ctx context.Context, organizationID string) ([]*invitationDatamodel.Invitation, error)
	// MarkAccepted and Cancel only move PENDING rows and report whether
	// the row moved.
	MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error)
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)
	// ListPendingWithMember returns PENDING invitations whose e-mail already
	// belongs to a user of the same organization.
	ListPendingWithMember(ctx context.Context, limit int) ([]*invitationDatamodel.Invitation, error)
}

type OrganizationReader interface {
	GetByID(ctx context.Context, id string) (*organizationDatamodel.Organization, error)
}

type AuditLog interface {
	audit.Recorder
	Exists(ctx context.Context, organizationID, action, entityID string) (bool, error)
}
