package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/beacon/internal/audit"
	auditDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/audit"
	"github.com/frahmantamala/beacon/internal/telemetry"
	"github.com/frahmantamala/beacon/internal/user"
	"github.com/rs/zerolog"
)

const DefaultReconcileBatch = 100

// Reconciler repairs acceptances whose user row committed but whose
// invitation stayed PENDING or whose user.joined entry is missing.
type Reconciler struct {
	invitations Repository
	users       user.Repository
	audit       AuditLog
	batchSize   int
	now         func() time.Time
	logger      zerolog.Logger
}

func NewReconciler(invitations Repository, users user.Repository, auditLog AuditLog, batchSize int, logger zerolog.Logger) *Reconciler {
	if batchSize <= 0 {
		batchSize = DefaultReconcileBatch
	}
	return &Reconciler{
		invitations: invitations,
		users:       users,
		audit:       auditLog,
		batchSize:   batchSize,
		now:         time.Now,
		logger:      logger.With().Str("component", "invitation_reconciler").Logger(),
	}
}

// Reconcile processes one batch and returns how many invitations it fixed.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	stuck, err := r.invitations.ListPendingWithMember(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list stuck invitations: %w", err)
	}

	fixed := 0
	for _, inv := range stuck {
		if err := ctx.Err(); err != nil {
			return fixed, err
		}

		member, err := r.users.GetByEmail(ctx, inv.Email)
		if err != nil {
			r.logger.Error().Err(err).Str("invitation_id", inv.ID).Msg("failed to load member")
			continue
		}
		if member == nil || member.OrganizationID != inv.OrganizationID {
			continue
		}

		acceptedAt := member.CreatedAt
		if acceptedAt.IsZero() {
			acceptedAt = r.now()
		}
		// Only an invitation that was live when the member joined can have
		// produced that member. Stale rows stay PENDING.
		if inv.IsExpired(acceptedAt) || inv.CreatedAt.After(acceptedAt) {
			continue
		}
		moved, err := r.invitations.MarkAccepted(ctx, inv.ID, acceptedAt)
		if err != nil {
			r.logger.Error().Err(err).Str("invitation_id", inv.ID).Msg("failed to mark invitation accepted")
			continue
		}

		if err := r.ensureJoinedEntry(ctx, inv.OrganizationID, inv.InvitedBy, inv.ID, member.ID); err != nil {
			r.logger.Error().Err(err).Str("invitation_id", inv.ID).Msg("failed to backfill audit entry")
		}

		if moved {
			fixed++
			r.logger.Info().
				Str("invitation_id", inv.ID).
				Str("user_id", member.ID).
				Msg("reconciled stuck invitation")
		}
	}

	if fixed > 0 {
		telemetry.GetMetrics().InvitationsReconciledTotal.Add(ctx, int64(fixed))
	}
	return fixed, nil
}

func (r *Reconciler) ensureJoinedEntry(ctx context.Context, organizationID, invitedBy, invitationID, userID string) error {
	if r.audit == nil {
		return nil
	}
	exists, err := r.audit.Exists(ctx, organizationID, audit.ActionUserJoined, userID)
	if err != nil || exists {
		return err
	}
	return r.audit.Record(ctx, audit.Entry{
		OrganizationID: organizationID,
		ActorID:        userID,
		Action:         audit.ActionUserJoined,
		EntityType:     auditDatamodel.EntityUser,
		EntityID:       userID,
		Details: map[string]interface{}{
			"invited_by":    invitedBy,
			"invitation_id": invitationID,
			"reconciled":    true,
		},
	})
}
