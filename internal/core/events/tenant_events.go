package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeOrganizationProvisioned = "organization.provisioned"
	EventTypeInvitationCreated       = "invitation.created"
	EventTypeInvitationAccepted      = "invitation.accepted"
)

type OrganizationProvisionedEvent struct {
	BaseEvent
	OrganizationID string `json:"organization_id"`
	Slug           string `json:"slug"`
	AdminUserID    string `json:"admin_user_id"`
	AdminEmail     string `json:"admin_email"`
}

func NewOrganizationProvisionedEvent(orgID, slug, adminUserID, adminEmail string) *OrganizationProvisionedEvent {
	return &OrganizationProvisionedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeOrganizationProvisioned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"organization_id": orgID,
				"slug":            slug,
				"admin_user_id":   adminUserID,
				"admin_email":     adminEmail,
			},
		},
		OrganizationID: orgID,
		Slug:           slug,
		AdminUserID:    adminUserID,
		AdminEmail:     adminEmail,
	}
}

type InvitationCreatedEvent struct {
	BaseEvent
	InvitationID     string    `json:"invitation_id"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	Token            string    `json:"token"`
	InviterName      string    `json:"inviter_name"`
	ExpiresAt        time.Time `json:"expires_at"`
}

func NewInvitationCreatedEvent(invitationID, orgID, orgName, email, name, role, token, inviterName string, expiresAt time.Time) *InvitationCreatedEvent {
	return &InvitationCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeInvitationCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"invitation_id":   invitationID,
				"organization_id": orgID,
				"email":           email,
				"role":            role,
			},
		},
		InvitationID:     invitationID,
		OrganizationID:   orgID,
		OrganizationName: orgName,
		Email:            email,
		Name:             name,
		Role:             role,
		Token:            token,
		InviterName:      inviterName,
		ExpiresAt:        expiresAt,
	}
}

type InvitationAcceptedEvent struct {
	BaseEvent
	InvitationID   string `json:"invitation_id"`
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
}

func NewInvitationAcceptedEvent(invitationID, orgID, userID, email string) *InvitationAcceptedEvent {
	return &InvitationAcceptedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeInvitationAccepted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"invitation_id":   invitationID,
				"organization_id": orgID,
				"user_id":         userID,
				"email":           email,
			},
		},
		InvitationID:   invitationID,
		OrganizationID: orgID,
		UserID:         userID,
		Email:          email,
	}
}
