package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/board-collab-api/internal/identity"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/utils"
)

var (
	// ErrDuplicatePendingInvitation is returned when the pending-invitation unique index rejects an insert.
	ErrDuplicatePendingInvitation = errors.New("invitation repository: pending invitation already exists")
	// ErrInvitationNotPending is returned when a status transition finds the invitation already resolved.
	ErrInvitationNotPending = errors.New("invitation repository: invitation is not pending")
	// ErrMemberExists is returned when the (board, user) unique index rejects an insert.
	ErrMemberExists = errors.New("member repository: membership already exists")
	// ErrIdentifierExists is returned when a user's email or phone is already registered.
	ErrIdentifierExists = errors.New("user repository: identifier already registered")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByIdentifier finds a user by email or phone, depending on the identifier kind
	FindByIdentifier(ctx context.Context, id identity.Identifier) (*models.User, error)

	// List returns all users ordered by ID
	List(ctx context.Context) ([]models.User, error)

	// UpdateRole changes a user's platform role
	UpdateRole(ctx context.Context, id uint64, role models.PlatformRole) error

	// SetResetToken stores a password reset token, replacing any earlier one
	SetResetToken(ctx context.Context, id uint64, token string, expiresAt time.Time) error

	// FindByResetToken finds the user holding token if it has not expired at now
	FindByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)

	// ResetPassword swaps the password hash and clears the reset token in one update,
	// provided the token is still the one stored
	ResetPassword(ctx context.Context, id uint64, token, passwordHash string) error
}

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *models.Workspace) error
	FindByID(ctx context.Context, id uint64) (*models.Workspace, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]models.Workspace, error)
	Update(ctx context.Context, workspace *models.Workspace) error

	// Delete removes the workspace and every board in it, with their content, in one transaction
	Delete(ctx context.Context, id uint64) error
}

// BoardRepository defines the interface for board data access
type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	FindByID(ctx context.Context, id uint64) (*models.Board, error)

	// ListAccessible returns boards the user owns or is a member of
	ListAccessible(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Board, int64, error)

	// ListByWorkspace returns boards grouped under a workspace
	ListByWorkspace(ctx context.Context, workspaceID uint64) ([]models.Board, error)

	Update(ctx context.Context, board *models.Board) error

	// Delete removes the board with its lists, cards, invitations and members in one transaction
	Delete(ctx context.Context, id uint64) error

	// LoadContent returns the board's lists with cards and card members, in display order
	LoadContent(ctx context.Context, boardID uint64) ([]models.List, error)

	// CreateCopy persists a new board together with its lists, cards and card members atomically.
	// When checkTitle is set, a board with the same title in the same workspace aborts the copy.
	CreateCopy(ctx context.Context, board *models.Board, lists []models.List, checkTitle bool) error
}

// ContentRepository defines the interface for list and card data access
type ContentRepository interface {
	CreateList(ctx context.Context, list *models.List) error
	FindList(ctx context.Context, id uint64) (*models.List, error)
	UpdateList(ctx context.Context, list *models.List) error
	DeleteList(ctx context.Context, id uint64) error
	MaxListPosition(ctx context.Context, boardID uint64) (int, error)

	CreateCard(ctx context.Context, card *models.Card) error
	FindCard(ctx context.Context, id uint64) (*models.Card, error)
	UpdateCard(ctx context.Context, card *models.Card) error
	DeleteCard(ctx context.Context, id uint64) error
	MaxCardPosition(ctx context.Context, listID uint64) (int, error)

	// MoveCard places the card at position in the target list and re-indexes both lists
	MoveCard(ctx context.Context, card *models.Card, toListID uint64, position int) error

	AddCardMember(ctx context.Context, member *models.CardMember) error
	RemoveCardMember(ctx context.Context, cardID, userID uint64) error
	ListCardMembers(ctx context.Context, cardID uint64) ([]models.CardMember, error)
}

// InvitationRepository defines the interface for board invitation data access
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.BoardInvitation) error
	FindByID(ctx context.Context, id uint64) (*models.BoardInvitation, error)

	// FindByToken finds an invitation with its board and inviter preloaded
	FindByToken(ctx context.Context, token string) (*models.BoardInvitation, error)

	// FindPending finds the pending invitation for a board and normalized email
	FindPending(ctx context.Context, boardID uint64, email string) (*models.BoardInvitation, error)

	ListByBoard(ctx context.Context, boardID uint64) ([]models.BoardInvitation, error)
	ListPendingForEmail(ctx context.Context, email string) ([]models.BoardInvitation, error)

	// Transition moves a pending invitation to a terminal status
	Transition(ctx context.Context, id uint64, status models.InvitationStatus) error

	// Accept marks the invitation accepted and creates the membership in one transaction
	Accept(ctx context.Context, invitation *models.BoardInvitation, member *models.BoardMember, at time.Time) error

	Delete(ctx context.Context, id uint64) error
}

// MemberRepository defines the interface for board membership data access
type MemberRepository interface {
	Create(ctx context.Context, member *models.BoardMember) error
	Find(ctx context.Context, boardID, userID uint64) (*models.BoardMember, error)

	// ListByBoard lists members with their users preloaded
	ListByBoard(ctx context.Context, boardID uint64) ([]models.BoardMember, error)

	UpdateRole(ctx context.Context, boardID, userID uint64, role models.BoardRole) error
	Delete(ctx context.Context, boardID, userID uint64) error
}

// AuditRepository defines the interface for the board activity log
type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditLog) error
	ListByBoard(ctx context.Context, boardID uint64, params utils.PaginationParams) ([]models.AuditLog, int64, error)
}
