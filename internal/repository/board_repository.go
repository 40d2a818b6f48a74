package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/board-collab-api/internal/database"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrBoardTitleTaken is returned when a copy targets a workspace that already has a board with that title.
	ErrBoardTitleTaken = errors.New("board repository: title already used in workspace")
	// ErrCopyBoard is returned when inserting the copied board fails.
	ErrCopyBoard = errors.New("board repository: copy board failed")
	// ErrCopyLists is returned when inserting a copied list fails.
	ErrCopyLists = errors.New("board repository: copy lists failed")
	// ErrCopyCards is returned when inserting copied cards or card members fails.
	ErrCopyCards = errors.New("board repository: copy cards failed")
)

// GormBoardRepository is a GORM implementation of BoardRepository
type GormBoardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &GormBoardRepository{db: db}
}

// Create creates a new board
func (r *GormBoardRepository) Create(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(board).Error
}

// FindByID finds a board by ID
func (r *GormBoardRepository) FindByID(ctx context.Context, id uint64) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// ListAccessible returns boards owned by the user or shared with them, newest first
func (r *GormBoardRepository) ListAccessible(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Board, int64, error) {
	db := r.db.WithContext(ctx)

	memberSubQuery := db.Model(&models.BoardMember{}).
		Select("board_id").
		Where("user_id = ?", userID)

	query := db.Model(&models.Board{}).
		Where("boards.owner_id = ? OR boards.id IN (?)", userID, memberSubQuery).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var boards []models.Board
	if err := query.Scopes(database.Paginate(params, "boards.updated_at DESC, boards.id DESC")).
		Find(&boards).Error; err != nil {
		return nil, 0, err
	}

	return boards, total, nil
}

// ListByWorkspace returns the boards of a workspace ordered by title
func (r *GormBoardRepository) ListByWorkspace(ctx context.Context, workspaceID uint64) ([]models.Board, error) {
	var boards []models.Board
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("title ASC, id ASC").
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// Update updates a board
func (r *GormBoardRepository) Update(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(board).Error
}

// Delete deletes a board and all related data in a transaction
func (r *GormBoardRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteBoards(tx, []uint64{id})
	})
}

// deleteBoards removes boards and everything hanging off them. Callers own the transaction.
func deleteBoards(tx *gorm.DB, boardIDs []uint64) error {
	if len(boardIDs) == 0 {
		return nil
	}

	var listIDs []uint64
	if err := tx.Model(&models.List{}).Where("board_id IN ?", boardIDs).Pluck("id", &listIDs).Error; err != nil {
		return err
	}

	if err := deleteListContent(tx, listIDs); err != nil {
		return err
	}

	if len(listIDs) > 0 {
		if err := tx.Where("id IN ?", listIDs).Delete(&models.List{}).Error; err != nil {
			return err
		}
	}

	// Invitations and memberships
	if err := tx.Where("board_id IN ?", boardIDs).Delete(&models.BoardInvitation{}).Error; err != nil {
		return err
	}
	if err := tx.Where("board_id IN ?", boardIDs).Delete(&models.BoardMember{}).Error; err != nil {
		return err
	}

	return tx.Where("id IN ?", boardIDs).Delete(&models.Board{}).Error
}

// deleteListContent removes the cards of the given lists and their card members.
func deleteListContent(tx *gorm.DB, listIDs []uint64) error {
	if len(listIDs) == 0 {
		return nil
	}

	var cardIDs []uint64
	if err := tx.Model(&models.Card{}).Where("list_id IN ?", listIDs).Pluck("id", &cardIDs).Error; err != nil {
		return err
	}
	if len(cardIDs) == 0 {
		return nil
	}

	if err := tx.Where("card_id IN ?", cardIDs).Delete(&models.CardMember{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", cardIDs).Delete(&models.Card{}).Error
}

// LoadContent returns lists, cards and card members ordered for display
func (r *GormBoardRepository) LoadContent(ctx context.Context, boardID uint64) ([]models.List, error) {
	var lists []models.List
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Preload("Cards", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Cards.Members").
		Order("position ASC, id ASC").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateCopy inserts the board, then each list followed by its cards and card members.
// Every insert runs in one transaction; the first failure rolls back all of them.
func (r *GormBoardRepository) CreateCopy(ctx context.Context, board *models.Board, lists []models.List, checkTitle bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if checkTitle && board.WorkspaceID != nil {
			var count int64
			if err := tx.Model(&models.Board{}).
				Where("workspace_id = ? AND title = ?", *board.WorkspaceID, board.Title).
				Count(&count).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCopyBoard, err)
			}
			if count > 0 {
				return ErrBoardTitleTaken
			}
		}

		if err := tx.Omit(clause.Associations).Create(board).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCopyBoard, err)
		}

		for i := range lists {
			list := &lists[i]
			list.BoardID = board.ID
			if err := tx.Omit(clause.Associations).Create(list).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCopyLists, err)
			}

			if len(list.Cards) == 0 {
				continue
			}
			for j := range list.Cards {
				list.Cards[j].ListID = list.ID
			}
			if err := tx.Omit(clause.Associations).Create(&list.Cards).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCopyCards, err)
			}

			var members []models.CardMember
			for j := range list.Cards {
				card := &list.Cards[j]
				for k := range card.Members {
					card.Members[k].CardID = card.ID
					members = append(members, card.Members[k])
				}
			}
			if len(members) > 0 {
				if err := tx.Omit(clause.Associations).Create(&members).Error; err != nil {
					return fmt.Errorf("%w: %v", ErrCopyCards, err)
				}
			}
		}

		board.Lists = lists
		return nil
	})
}
