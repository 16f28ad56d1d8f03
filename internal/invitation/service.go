package invitation

import (
	"context"
	"fmt"
	"time"

	errors "github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/audit"
	"github.com/frahmantamala/beacon/internal/auth"
	auditDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/audit"
	invitationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/invitation"
	"github.com/frahmantamala/beacon/internal/core/events"
	"github.com/frahmantamala/beacon/internal/core/saga"
	"github.com/frahmantamala/beacon/internal/identity"
	"github.com/frahmantamala/beacon/internal/user"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Deps are the collaborators of the invitation service. Audit and Events
// may be nil.
type Deps struct {
	Invitations   Repository
	Organizations OrganizationReader
	Users         user.Repository
	Identity      identity.Provider
	Audit         audit.Recorder
	Events        events.Publisher
	Runner        *saga.Runner
	TTL           time.Duration
	// Now is overridden in tests.
	Now func() time.Time
}

type Service struct {
	deps   Deps
	logger zerolog.Logger
}

func NewService(deps Deps, logger zerolog.Logger) *Service {
	if deps.Runner == nil {
		deps.Runner = saga.NewRunner(logger)
	}
	if deps.TTL <= 0 {
		deps.TTL = DefaultTTL
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		deps:   deps,
		logger: logger.With().Str("component", "invitation").Logger(),
	}
}

// Create invites someone into the inviter's organization.
func (s *Service) Create(ctx context.Context, inviter *auth.User, dto CreateInvitationDTO) (*Invitation, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if !auth.CanInvite(inviter.Role, dto.Role) {
		return nil, errors.ErrInsufficientRole
	}

	exists, err := s.deps.Users.ExistsByEmail(ctx, dto.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check invitee email: %w", err)
	}
	if exists {
		return nil, errors.ErrUserExists
	}

	now := s.deps.Now()
	pending, err := s.deps.Invitations.GetPendingByEmail(ctx, inviter.OrganizationID, dto.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending != nil && !pending.IsExpired(now) {
		return nil, errors.ErrInvitationPending
	}

	org, err := s.deps.Organizations.GetByID(ctx, inviter.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}
	if org == nil {
		return nil, errors.ErrOrganizationNotFound
	}

	inv := &invitationDatamodel.Invitation{
		OrganizationID: inviter.OrganizationID,
		Email:          dto.Email,
		Name:           dto.Name,
		Title:          dto.Title,
		Role:           dto.Role,
		DepartmentID:   dto.DepartmentID,
		ManagerID:      dto.ManagerID,
		InvitedBy:      inviter.ID,
		Token:          uuid.New().String(),
		Status:         StatusPending,
		ExpiresAt:      now.Add(s.deps.TTL),
	}
	if err := s.deps.Invitations.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.record(ctx, audit.Entry{
		OrganizationID: inv.OrganizationID,
		ActorID:        inviter.ID,
		Action:         audit.ActionInvitationCreated,
		EntityType:     auditDatamodel.EntityInvitation,
		EntityID:       inv.ID,
		Details:        map[string]interface{}{"email": inv.Email, "role": inv.Role},
	})

	s.publish(ctx, events.NewInvitationCreatedEvent(
		inv.ID, org.ID, org.Name, inv.Email, inv.Name, inv.Role, inv.Token, inviter.Name, inv.ExpiresAt,
	))

	s.logger.Info().
		Str("invitation_id", inv.ID).
		Str("organization_id", inv.OrganizationID).
		Str("role", inv.Role).
		Msg("invitation created")

	return FromDatamodel(inv), nil
}

// Cancel moves a pending invitation of the actor's organization to CANCELED.
func (s *Service) Cancel(ctx context.Context, actor *auth.User, invitationID string) error {
	if !actor.HasRole(auth.InviterRoles...) {
		return errors.ErrInsufficientRole
	}

	inv, err := s.deps.Invitations.GetByID(ctx, invitationID)
	if err != nil {
		return fmt.Errorf("failed to load invitation: %w", err)
	}
	if inv == nil || !auth.SameOrganization(actor, inv.OrganizationID) {
		return errors.ErrInvitationNotFound
	}
	if inv.Status != StatusPending {
		return errors.ErrInvitationInactive
	}

	moved, err := s.deps.Invitations.Cancel(ctx, inv.ID, s.deps.Now())
	if err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}
	if !moved {
		return errors.ErrInvitationInactive
	}

	s.record(ctx, audit.Entry{
		OrganizationID: inv.OrganizationID,
		ActorID:        actor.ID,
		Action:         audit.ActionInvitationCanceled,
		EntityType:     auditDatamodel.EntityInvitation,
		EntityID:       inv.ID,
	})
	return nil
}

// Lookup resolves a token for the public accept page.
func (s *Service) Lookup(ctx context.Context, token string) (*Summary, error) {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Email:     inv.Email,
		Name:      inv.Name,
		Title:     inv.Title,
		Role:      inv.Role,
		ExpiresAt: inv.ExpiresAt,
	}
	org, err := s.deps.Organizations.GetByID(ctx, inv.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}
	if org != nil {
		summary.OrganizationName = org.Name
	}
	return summary, nil
}

func (s *Service) ListPending(ctx context.Context, actor *auth.User) ([]*Invitation, error) {
	if !actor.HasRole(auth.InviterRoles...) {
		return nil, errors.ErrInsufficientRole
	}

	rows, err := s.deps.Invitations.ListPending(ctx, actor.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	out := make([]*Invitation, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDatamodel(row))
	}
	return out, nil
}

// pendingByToken applies the token checks shared by Lookup and Accept. An
// expired row is reported but left PENDING.
func (s *Service) pendingByToken(ctx context.Context, token string) (*invitationDatamodel.Invitation, error) {
	if token == "" {
		return nil, errors.ErrInvalidInvitation
	}
	inv, err := s.deps.Invitations.GetPendingByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load invitation: %w", err)
	}
	if inv == nil {
		return nil, errors.ErrInvalidInvitation
	}
	if inv.IsExpired(s.deps.Now()) {
		return nil, errors.ErrInvitationExpired
	}
	return inv, nil
}

func (s *Service) record(ctx context.Context, entry audit.Entry) {
	if s.deps.Audit == nil {
		return
	}
	if err := s.deps.Audit.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).
			Str("action", entry.Action).
			Str("entity_id", entry.EntityID).
			Msg("failed to write audit entry")
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("event_type", event.EventType()).Msg("failed to publish event")
	}
}
