package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"gorm.io/gorm"
)

// CanAccess reports whether user may read board. member is the user's row on
// the board, or nil when there is none.
func CanAccess(user *models.User, board *models.Board, member *models.BoardMember) bool {
	if user == nil || board == nil {
		return false
	}
	if board.IsOwner(user.ID) || user.Role.IsPlatformAdmin() {
		return true
	}
	return member != nil && member.BoardID == board.ID && member.UserID == user.ID
}

// CanAdminister reports whether user may invite, remove members and change roles on board.
func CanAdminister(user *models.User, board *models.Board, member *models.BoardMember) bool {
	if !CanAccess(user, board, member) {
		return false
	}
	if board.IsOwner(user.ID) || user.Role.IsPlatformAdmin() {
		return true
	}
	return member.Role == models.BoardRoleAdmin
}

// CanEdit reports whether user may change lists and cards on board.
func CanEdit(user *models.User, board *models.Board, member *models.BoardMember) bool {
	if !CanAccess(user, board, member) {
		return false
	}
	if board.IsOwner(user.ID) || user.Role.IsPlatformAdmin() {
		return true
	}
	return member.Role.CanEdit()
}

// AccessDecision is the outcome of loading the caller's relation to a board.
type AccessDecision struct {
	User   *models.User
	Board  *models.Board
	Member *models.BoardMember
}

func (d AccessDecision) CanAccess() bool     { return CanAccess(d.User, d.Board, d.Member) }
func (d AccessDecision) CanAdminister() bool { return CanAdminister(d.User, d.Board, d.Member) }
func (d AccessDecision) CanEdit() bool       { return CanEdit(d.User, d.Board, d.Member) }

// AccessPolicy loads what the pure checks need. Every board-scoped service goes through it.
type AccessPolicy struct {
	userRepo   repository.UserRepository
	boardRepo  repository.BoardRepository
	memberRepo repository.MemberRepository
}

// NewAccessPolicy creates a new AccessPolicy.
func NewAccessPolicy(userRepo repository.UserRepository, boardRepo repository.BoardRepository, memberRepo repository.MemberRepository) *AccessPolicy {
	return &AccessPolicy{
		userRepo:   userRepo,
		boardRepo:  boardRepo,
		memberRepo: memberRepo,
	}
}

// Board loads a board, mapping a missing row to ErrBoardNotFound.
func (p *AccessPolicy) Board(ctx context.Context, boardID uint64) (*models.Board, error) {
	board, err := p.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}
	return board, nil
}

// Resolve loads the user, the board and the user's membership row.
func (p *AccessPolicy) Resolve(ctx context.Context, userID, boardID uint64) (AccessDecision, error) {
	board, err := p.Board(ctx, boardID)
	if err != nil {
		return AccessDecision{}, err
	}
	return p.ResolveBoard(ctx, userID, board)
}

// ResolveBoard is Resolve for a board that is already loaded.
func (p *AccessPolicy) ResolveBoard(ctx context.Context, userID uint64, board *models.Board) (AccessDecision, error) {
	user, err := p.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AccessDecision{}, ErrUserNotFound
		}
		return AccessDecision{}, fmt.Errorf("failed to find user: %w", err)
	}

	decision := AccessDecision{User: user, Board: board}
	if board.IsOwner(user.ID) {
		return decision, nil
	}

	member, err := p.memberRepo.Find(ctx, board.ID, user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AccessDecision{}, fmt.Errorf("failed to find board member: %w", err)
	}
	if err == nil {
		decision.Member = member
	}
	return decision, nil
}

// RequireAccess resolves the caller and fails with ErrNotAuthorized unless they can read the board.
func (p *AccessPolicy) RequireAccess(ctx context.Context, userID, boardID uint64) (AccessDecision, error) {
	decision, err := p.Resolve(ctx, userID, boardID)
	if err != nil {
		return AccessDecision{}, err
	}
	if !decision.CanAccess() {
		return AccessDecision{}, ErrNotAuthorized
	}
	return decision, nil
}

// RequireAdmin resolves the caller and fails with ErrNotAuthorized unless they can administer the board.
func (p *AccessPolicy) RequireAdmin(ctx context.Context, userID, boardID uint64) (AccessDecision, error) {
	decision, err := p.Resolve(ctx, userID, boardID)
	if err != nil {
		return AccessDecision{}, err
	}
	if !decision.CanAdminister() {
		return AccessDecision{}, ErrNotAuthorized
	}
	return decision, nil
}

// RequireEdit resolves the caller and fails with ErrNotAuthorized unless they can change content.
func (p *AccessPolicy) RequireEdit(ctx context.Context, userID, boardID uint64) (AccessDecision, error) {
	decision, err := p.Resolve(ctx, userID, boardID)
	if err != nil {
		return AccessDecision{}, err
	}
	if !decision.CanEdit() {
		return AccessDecision{}, ErrNotAuthorized
	}
	return decision, nil
}
