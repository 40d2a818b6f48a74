package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"github.com/yukikurage/board-collab-api/internal/utils"
	"gorm.io/gorm"
)

var ErrBoardTitleRequired = errors.New("board title is required")

// BoardService handles board level operations.
type BoardService struct {
	boardRepo     repository.BoardRepository
	workspaceRepo repository.WorkspaceRepository
	auditRepo     repository.AuditRepository
	policy        *AccessPolicy
	activity      *ActivityRecorder
}

// NewBoardService creates a new BoardService.
func NewBoardService(
	boardRepo repository.BoardRepository,
	workspaceRepo repository.WorkspaceRepository,
	auditRepo repository.AuditRepository,
	policy *AccessPolicy,
	activity *ActivityRecorder,
) *BoardService {
	return &BoardService{
		boardRepo:     boardRepo,
		workspaceRepo: workspaceRepo,
		auditRepo:     auditRepo,
		policy:        policy,
		activity:      activity,
	}
}

// CreateBoardInput represents a new board.
type CreateBoardInput struct {
	Title       string
	Description string
	WorkspaceID *uint64
	OwnerID     uint64
}

// UpdateBoardInput represents a partial board update.
type UpdateBoardInput struct {
	Title       *string
	Description *string
}

// BoardView is a board with its content and the caller's role.
type BoardView struct {
	Board    *models.Board
	Lists    []models.List
	YourRole string
}

// Create creates a board owned by the caller.
func (s *BoardService) Create(ctx context.Context, input CreateBoardInput) (*models.Board, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrBoardTitleRequired
	}

	if input.WorkspaceID != nil {
		workspace, err := s.workspaceRepo.FindByID(ctx, *input.WorkspaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWorkspaceNotFound
			}
			return nil, fmt.Errorf("failed to find workspace: %w", err)
		}
		if workspace.OwnerID != input.OwnerID {
			return nil, ErrNotAuthorized
		}
	}

	board := &models.Board{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     input.OwnerID,
		WorkspaceID: input.WorkspaceID,
	}
	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	return board, nil
}

// ListAccessible returns a page of boards the user owns or is a member of.
func (s *BoardService) ListAccessible(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Board, int64, error) {
	boards, total, err := s.boardRepo.ListAccessible(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, total, nil
}

// Get returns the board with its lists and cards.
func (s *BoardService) Get(ctx context.Context, boardID, userID uint64) (*BoardView, error) {
	decision, err := s.policy.RequireAccess(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	lists, err := s.boardRepo.LoadContent(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load board content: %w", err)
	}

	return &BoardView{
		Board:    decision.Board,
		Lists:    lists,
		YourRole: RoleOf(decision),
	}, nil
}

// Update changes the title or description. Administrators only.
func (s *BoardService) Update(ctx context.Context, boardID, userID uint64, input UpdateBoardInput) (*models.Board, error) {
	decision, err := s.policy.RequireAdmin(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}
	board := decision.Board

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrBoardTitleRequired
		}
		board.Title = title
	}
	if input.Description != nil {
		board.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.boardRepo.Update(ctx, board); err != nil {
		return nil, fmt.Errorf("failed to update board: %w", err)
	}
	return board, nil
}

// Delete removes the board with everything on it. Only the owner or a
// platform administrator may delete.
func (s *BoardService) Delete(ctx context.Context, boardID, userID uint64) error {
	decision, err := s.policy.Resolve(ctx, userID, boardID)
	if err != nil {
		return err
	}
	if !decision.Board.IsOwner(userID) && !decision.User.Role.IsPlatformAdmin() {
		return ErrNotAuthorized
	}

	if err := s.boardRepo.Delete(ctx, boardID); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    userID,
		BoardID:    boardID,
		Action:     models.AuditBoardDeleted,
		TargetType: "board",
		TargetID:   boardID,
		Metadata:   map[string]interface{}{"title": decision.Board.Title},
	})
	return nil
}

// Activity returns a page of the board's audit log. Administrators only.
func (s *BoardService) Activity(ctx context.Context, boardID, userID uint64, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	if _, err := s.policy.RequireAdmin(ctx, userID, boardID); err != nil {
		return nil, 0, err
	}

	entries, total, err := s.auditRepo.ListByBoard(ctx, boardID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, total, nil
}
