package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/board-collab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create inserts a pending invitation
func (r *GormInvitationRepository) Create(ctx context.Context, invitation *models.BoardInvitation) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePendingInvitation
		}
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

// FindByID finds an invitation by ID
func (r *GormInvitationRepository) FindByID(ctx context.Context, id uint64) (*models.BoardInvitation, error) {
	var invitation models.BoardInvitation
	if err := r.db.WithContext(ctx).First(&invitation, id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindByToken finds an invitation by token with board and inviter
func (r *GormInvitationRepository) FindByToken(ctx context.Context, token string) (*models.BoardInvitation, error) {
	var invitation models.BoardInvitation
	if err := r.db.WithContext(ctx).
		Preload("Board").
		Preload("Inviter").
		Where("token = ?", token).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindPending finds the pending invitation for a board and email
func (r *GormInvitationRepository) FindPending(ctx context.Context, boardID uint64, email string) (*models.BoardInvitation, error) {
	var invitation models.BoardInvitation
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND invitee_email = ? AND status = ?", boardID, email, models.InvitationStatusPending).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListByBoard lists every invitation of a board, newest first
func (r *GormInvitationRepository) ListByBoard(ctx context.Context, boardID uint64) ([]models.BoardInvitation, error) {
	var invitations []models.BoardInvitation
	if err := r.db.WithContext(ctx).
		Preload("Inviter").
		Where("board_id = ?", boardID).
		Order("created_at DESC, id DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// ListPendingForEmail lists pending invitations addressed to an email
func (r *GormInvitationRepository) ListPendingForEmail(ctx context.Context, email string) ([]models.BoardInvitation, error) {
	var invitations []models.BoardInvitation
	if err := r.db.WithContext(ctx).
		Preload("Board").
		Preload("Inviter").
		Where("invitee_email = ? AND status = ?", email, models.InvitationStatusPending).
		Order("created_at DESC, id DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// Transition moves a pending invitation to status
func (r *GormInvitationRepository) Transition(ctx context.Context, id uint64, status models.InvitationStatus) error {
	return transitionInvitation(r.db.WithContext(ctx), id, status, nil)
}

// Accept flips the invitation to ACCEPTED and inserts the membership atomically
func (r *GormInvitationRepository) Accept(ctx context.Context, invitation *models.BoardInvitation, member *models.BoardMember, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transitionInvitation(tx, invitation.ID, models.InvitationStatusAccepted, &at); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrMemberExists
			}
			return fmt.Errorf("create board member: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	invitation.Status = models.InvitationStatusAccepted
	invitation.AcceptedAt = &at
	invitation.PendingKey = nil
	return nil
}

// transitionInvitation only touches rows still PENDING, so concurrent resolutions
// cannot both succeed.
func transitionInvitation(db *gorm.DB, id uint64, status models.InvitationStatus, acceptedAt *time.Time) error {
	updates := map[string]interface{}{
		"status":      status,
		"pending_key": nil,
	}
	if acceptedAt != nil {
		updates["accepted_at"] = *acceptedAt
	}

	result := db.Model(&models.BoardInvitation{}).
		Where("id = ? AND status = ?", id, models.InvitationStatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotPending
	}
	return nil
}

// Delete deletes an invitation
func (r *GormInvitationRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.BoardInvitation{}, id).Error
}
