package invitation

import (
	"context"
	stdErrors "errors"

	errors "github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/audit"
	"github.com/frahmantamala/beacon/internal/core/common/dberr"
	auditDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/audit"
	userDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/user"
	"github.com/frahmantamala/beacon/internal/core/events"
	"github.com/frahmantamala/beacon/internal/core/saga"
	"github.com/frahmantamala/beacon/internal/identity"
)

const SagaAccept = "accept_invitation"

// Accept turns a pending invitation into an active user. A token can be
// redeemed once: replays fail on the PENDING lookup, or on the e-mail
// check when marking the invitation accepted did not stick.
func (s *Service) Accept(ctx context.Context, dto AcceptDTO) (*AcceptResult, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.pendingByToken(ctx, dto.Token)
	if err != nil {
		return nil, err
	}

	exists, err := s.deps.Users.ExistsByEmail(ctx, inv.Email)
	if err != nil {
		return nil, errors.NewInternalError("failed to check invitee email", err)
	}
	if exists {
		return nil, errors.ErrAccountExists
	}

	member := &userDatamodel.User{
		Email:          inv.Email,
		Name:           inv.Name,
		Title:          inv.Title,
		Role:           inv.Role,
		OrganizationID: inv.OrganizationID,
		DepartmentID:   inv.DepartmentID,
		ManagerID:      inv.ManagerID,
		IsActive:       true,
	}
	var accountID string

	steps := []saga.Step{
		{
			Name:        "create_identity",
			Criticality: saga.Critical,
			Action: func(ctx context.Context) error {
				id, err := s.deps.Identity.CreateAccount(ctx, identity.AccountRequest{
					Email:         inv.Email,
					Password:      dto.Password,
					EmailVerified: true,
					Metadata: map[string]string{
						"organization_id": inv.OrganizationID,
						"role":            inv.Role,
					},
				})
				if err != nil {
					if stdErrors.Is(err, identity.ErrEmailExists) {
						return errors.ErrAccountExists.WithCause(err)
					}
					return errors.NewProvisioningError("failed to create account", err)
				}
				accountID = id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.deps.Identity.DeleteAccount(ctx, accountID)
			},
		},
		{
			Name:        "create_user_profile",
			Criticality: saga.Critical,
			Action: func(ctx context.Context) error {
				member.ID = accountID
				if err := s.deps.Users.Create(ctx, member); err != nil {
					if dberr.IsUniqueViolation(err) {
						return errors.ErrAccountExists.WithCause(err)
					}
					return errors.NewProvisioningError("failed to create user profile", err)
				}
				return nil
			},
		},
		{
			Name:        "mark_invitation_accepted",
			Criticality: saga.BestEffort,
			Action: func(ctx context.Context) error {
				moved, err := s.deps.Invitations.MarkAccepted(ctx, inv.ID, s.deps.Now())
				if err != nil {
					return err
				}
				if !moved {
					return errors.ErrInvitationInactive
				}
				return nil
			},
		},
		{
			Name:        "record_audit",
			Criticality: saga.BestEffort,
			Action: func(ctx context.Context) error {
				if s.deps.Audit == nil {
					return nil
				}
				return s.deps.Audit.Record(ctx, audit.Entry{
					OrganizationID: inv.OrganizationID,
					ActorID:        member.ID,
					Action:         audit.ActionUserJoined,
					EntityType:     auditDatamodel.EntityUser,
					EntityID:       member.ID,
					Details: map[string]interface{}{
						"invited_by":    inv.InvitedBy,
						"invitation_id": inv.ID,
						"role":          inv.Role,
					},
				})
			},
		},
	}

	if _, err := s.deps.Runner.Run(ctx, SagaAccept, steps); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("invitation_id", inv.ID).
		Str("organization_id", inv.OrganizationID).
		Str("user_id", member.ID).
		Msg("invitation accepted")

	s.publish(ctx, events.NewInvitationAcceptedEvent(inv.ID, inv.OrganizationID, member.ID, member.Email))

	return &AcceptResult{UserID: member.ID, Email: member.Email}, nil
}
