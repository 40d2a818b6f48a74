package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/board-collab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCardMemberExists is returned when a user is already assigned to a card.
var ErrCardMemberExists = errors.New("content repository: card member already exists")

// GormContentRepository is a GORM implementation of ContentRepository
type GormContentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &GormContentRepository{db: db}
}

// CreateList creates a new list
func (r *GormContentRepository) CreateList(ctx context.Context, list *models.List) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(list).Error
}

// FindList finds a list by ID with its cards in display order
func (r *GormContentRepository) FindList(ctx context.Context, id uint64) (*models.List, error) {
	var list models.List
	if err := r.db.WithContext(ctx).
		Preload("Cards", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&list, id).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateList updates a list
func (r *GormContentRepository) UpdateList(ctx context.Context, list *models.List) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(list).Error
}

// DeleteList deletes a list with its cards in a transaction
func (r *GormContentRepository) DeleteList(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteListContent(tx, []uint64{id}); err != nil {
			return err
		}
		return tx.Delete(&models.List{}, id).Error
	})
}

// MaxListPosition returns the highest list position on a board, or -1 when it has none
func (r *GormContentRepository) MaxListPosition(ctx context.Context, boardID uint64) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&models.List{}).
		Select("COALESCE(MAX(position), -1) as max").
		Where("board_id = ?", boardID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

// CreateCard creates a new card
func (r *GormContentRepository) CreateCard(ctx context.Context, card *models.Card) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(card).Error
}

// FindCard finds a card by ID with its list preloaded
func (r *GormContentRepository) FindCard(ctx context.Context, id uint64) (*models.Card, error) {
	var card models.Card
	if err := r.db.WithContext(ctx).Preload("List").First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCard updates a card
func (r *GormContentRepository) UpdateCard(ctx context.Context, card *models.Card) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(card).Error
}

// DeleteCard deletes a card and its member assignments
func (r *GormContentRepository) DeleteCard(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", id).Delete(&models.CardMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Card{}, id).Error
	})
}

// MaxCardPosition returns the highest card position in a list, or -1 when it is empty
func (r *GormContentRepository) MaxCardPosition(ctx context.Context, listID uint64) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&models.Card{}).
		Select("COALESCE(MAX(position), -1) as max").
		Where("list_id = ?", listID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

// MoveCard moves a card and rewrites positions of the affected lists as 0..n-1
func (r *GormContentRepository) MoveCard(ctx context.Context, card *models.Card, toListID uint64, position int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fromListID := card.ListID

		var target []models.Card
		if err := tx.Where("list_id = ? AND id <> ?", toListID, card.ID).
			Order("position ASC, id ASC").
			Find(&target).Error; err != nil {
			return err
		}

		if position < 0 {
			position = 0
		}
		if position > len(target) {
			position = len(target)
		}

		ordered := make([]uint64, 0, len(target)+1)
		for i, c := range target {
			if i == position {
				ordered = append(ordered, card.ID)
			}
			ordered = append(ordered, c.ID)
		}
		if position == len(target) {
			ordered = append(ordered, card.ID)
		}

		if err := tx.Model(&models.Card{}).Where("id = ?", card.ID).
			Update("list_id", toListID).Error; err != nil {
			return err
		}
		if err := reindexCards(tx, ordered); err != nil {
			return err
		}

		if fromListID != toListID {
			var remaining []uint64
			if err := tx.Model(&models.Card{}).
				Where("list_id = ?", fromListID).
				Order("position ASC, id ASC").
				Pluck("id", &remaining).Error; err != nil {
				return err
			}
			if err := reindexCards(tx, remaining); err != nil {
				return err
			}
		}

		card.ListID = toListID
		card.Position = position
		return nil
	})
}

func reindexCards(tx *gorm.DB, ids []uint64) error {
	for i, id := range ids {
		if err := tx.Model(&models.Card{}).Where("id = ?", id).
			Update("position", i).Error; err != nil {
			return err
		}
	}
	return nil
}

// AddCardMember assigns a user to a card
func (r *GormContentRepository) AddCardMember(ctx context.Context, member *models.CardMember) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCardMemberExists
		}
		return err
	}
	return nil
}

// RemoveCardMember removes a user from a card
func (r *GormContentRepository) RemoveCardMember(ctx context.Context, cardID, userID uint64) error {
	result := r.db.WithContext(ctx).
		Where("card_id = ? AND user_id = ?", cardID, userID).
		Delete(&models.CardMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCardMembers lists the users assigned to a card
func (r *GormContentRepository) ListCardMembers(ctx context.Context, cardID uint64) ([]models.CardMember, error) {
	var members []models.CardMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("card_id = ?", cardID).
		Order("added_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
