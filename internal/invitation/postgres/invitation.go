package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	invitationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/invitation"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *invitationDatamodel.Invitation) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*invitationDatamodel.Invitation, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *InvitationRepository) GetPendingByToken(ctx context.Context, token string) (*invitationDatamodel.Invitation, error) {
	return r.first(r.db.WithContext(ctx).
		Where("token = ? AND status = ?", token, invitationDatamodel.StatusPending))
}

// GetPendingByEmail returns the newest pending invitation for email.
func (r *InvitationRepository) GetPendingByEmail(ctx context.Context, organizationID, email string) (*invitationDatamodel.Invitation, error) {
	return r.first(r.db.WithContext(ctx).
		Where("organization_id = ? AND email = ? AND status = ?", organizationID, email, invitationDatamodel.StatusPending).
		Order("expires_at DESC"))
}

func (r *InvitationRepository) first(q *gorm.DB) (*invitationDatamodel.Invitation, error) {
	var inv invitationDatamodel.Invitation
	if err := q.First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepository) ListPending(ctx context.Context, organizationID string) ([]*invitationDatamodel.Invitation, error) {
	var rows []*invitationDatamodel.Invitation
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", organizationID, invitationDatamodel.StatusPending).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *InvitationRepository) MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.transition(ctx, id, map[string]interface{}{
		"status":      invitationDatamodel.StatusAccepted,
		"accepted_at": at,
	})
}

func (r *InvitationRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.transition(ctx, id, map[string]interface{}{
		"status":      invitationDatamodel.StatusCanceled,
		"canceled_at": at,
	})
}

// transition only touches rows still PENDING, so concurrent writers cannot
// move a terminal invitation.
func (r *InvitationRepository) transition(ctx context.Context, id string, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&invitationDatamodel.Invitation{}).
		Where("id = ? AND status = ?", id, invitationDatamodel.StatusPending).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *InvitationRepository) ListPendingWithMember(ctx context.Context, limit int) ([]*invitationDatamodel.Invitation, error) {
	var rows []*invitationDatamodel.Invitation
	err := r.db.WithContext(ctx).
		Where("status = ?", invitationDatamodel.StatusPending).
		Where("EXISTS (SELECT 1 FROM users u WHERE u.email = invitations.email AND u.organization_id = invitations.organization_id" +
			" AND invitations.created_at <= u.created_at AND invitations.expires_at >= u.created_at)").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
