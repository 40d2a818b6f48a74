package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"gorm.io/gorm"
)

// RoleOwner is reported for the board owner, who has no membership row.
const RoleOwner = "OWNER"

// MembershipService manages who belongs to a board and with which role.
type MembershipService struct {
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
	policy     *AccessPolicy
	activity   *ActivityRecorder
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(memberRepo repository.MemberRepository, userRepo repository.UserRepository, policy *AccessPolicy, activity *ActivityRecorder) *MembershipService {
	return &MembershipService{
		memberRepo: memberRepo,
		userRepo:   userRepo,
		policy:     policy,
		activity:   activity,
	}
}

// AddMemberInput represents a direct membership grant.
type AddMemberInput struct {
	BoardID uint64
	UserID  uint64
	Role    models.BoardRole
	ActorID uint64
}

// BoardRoster lists everyone on a board.
type BoardRoster struct {
	Owner    *models.User
	Members  []models.BoardMember
	YourRole string
}

// AddMember grants a role to an existing user without an invitation.
func (s *MembershipService) AddMember(ctx context.Context, input AddMemberInput) (*models.BoardMember, error) {
	role := input.Role
	if role == "" {
		role = models.BoardRoleMember
	}
	if !role.Valid() {
		return nil, ErrInvalidBoardRole
	}

	decision, err := s.policy.RequireAdmin(ctx, input.ActorID, input.BoardID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if decision.Board.IsOwner(user.ID) {
		return nil, ErrAlreadyMember
	}

	member := &models.BoardMember{
		BoardID: decision.Board.ID,
		UserID:  user.ID,
		Role:    role,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrMemberExists) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	member.User = *user

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    input.ActorID,
		BoardID:    member.BoardID,
		Action:     models.AuditMemberAdded,
		TargetType: "user",
		TargetID:   user.ID,
		Metadata:   map[string]interface{}{"role": role},
	})

	return member, nil
}

// RemoveMember removes userID from the board. Members may remove themselves;
// removing anyone else needs administrator rights. The owner can never be removed.
func (s *MembershipService) RemoveMember(ctx context.Context, boardID, userID, actorID uint64) error {
	board, err := s.policy.Board(ctx, boardID)
	if err != nil {
		return err
	}
	if board.IsOwner(userID) {
		return ErrCannotRemoveOwner
	}

	decision, err := s.policy.ResolveBoard(ctx, actorID, board)
	if err != nil {
		return err
	}
	if userID != actorID && !decision.CanAdminister() {
		return ErrNotAuthorized
	}

	if err := s.memberRepo.Delete(ctx, boardID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		BoardID:    boardID,
		Action:     models.AuditMemberRemoved,
		TargetType: "user",
		TargetID:   userID,
	})
	return nil
}

// LeaveBoard removes the caller's own membership.
func (s *MembershipService) LeaveBoard(ctx context.Context, boardID, userID uint64) error {
	return s.RemoveMember(ctx, boardID, userID, userID)
}

// UpdateRole changes a member's role.
func (s *MembershipService) UpdateRole(ctx context.Context, boardID, userID uint64, role models.BoardRole, actorID uint64) (*models.BoardMember, error) {
	if !role.Valid() {
		return nil, ErrInvalidBoardRole
	}

	if _, err := s.policy.RequireAdmin(ctx, actorID, boardID); err != nil {
		return nil, err
	}

	// The owner has no row, so the owner's role surfaces as ErrMemberNotFound.
	member, err := s.memberRepo.Find(ctx, boardID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	previous := member.Role
	if previous == role {
		return member, nil
	}

	if err := s.memberRepo.UpdateRole(ctx, boardID, userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}
	member.Role = role

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		BoardID:    boardID,
		Action:     models.AuditMemberRoleChanged,
		TargetType: "user",
		TargetID:   userID,
		Metadata:   map[string]interface{}{"from": previous, "to": role},
	})
	return member, nil
}

// ListMembers returns the owner and every member. Anyone with access may look.
func (s *MembershipService) ListMembers(ctx context.Context, boardID, userID uint64) (*BoardRoster, error) {
	decision, err := s.policy.RequireAccess(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	owner := decision.User
	if !decision.Board.IsOwner(userID) {
		owner, err = s.userRepo.FindByID(ctx, decision.Board.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to find board owner: %w", err)
		}
	}

	members, err := s.memberRepo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return &BoardRoster{
		Owner:    owner,
		Members:  members,
		YourRole: RoleOf(decision),
	}, nil
}

// RoleOf names the caller's relation to the board: OWNER, the member role,
// or the platform role for administrators without a membership.
func RoleOf(decision AccessDecision) string {
	switch {
	case decision.Board.IsOwner(decision.User.ID):
		return RoleOwner
	case decision.Member != nil:
		return string(decision.Member.Role)
	default:
		return string(decision.User.Role)
	}
}
