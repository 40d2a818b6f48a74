package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/board-collab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// Create adds a member to a board
func (r *GormMemberRepository) Create(ctx context.Context, member *models.BoardMember) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrMemberExists
		}
		return fmt.Errorf("create board member: %w", err)
	}
	return nil
}

// Find finds a specific board member
func (r *GormMemberRepository) Find(ctx context.Context, boardID, userID uint64) (*models.BoardMember, error) {
	var member models.BoardMember
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByBoard lists all members of a board
func (r *GormMemberRepository) ListByBoard(ctx context.Context, boardID uint64) ([]models.BoardMember, error) {
	var members []models.BoardMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Order("joined_at ASC, id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateRole changes a member's role
func (r *GormMemberRepository) UpdateRole(ctx context.Context, boardID, userID uint64, role models.BoardRole) error {
	result := r.db.WithContext(ctx).Model(&models.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a member from a board
func (r *GormMemberRepository) Delete(ctx context.Context, boardID, userID uint64) error {
	result := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&models.BoardMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
