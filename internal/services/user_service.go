package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/board-collab-api/internal/identity"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"gorm.io/gorm"
)

var ErrInvalidPlatformRole = errors.New("role must be one of USER, ADMIN, SUPERADMIN")

// UserService manages platform roles.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns every user. Platform administrators only.
func (s *UserService) ListUsers(ctx context.Context, actorID uint64) ([]models.User, error) {
	actor, err := s.findUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsPlatformAdmin() {
		return nil, ErrNotAuthorized
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ChangeRole sets the platform role of targetID. Only a SUPERADMIN may do this.
func (s *UserService) ChangeRole(ctx context.Context, actorID, targetID uint64, role models.PlatformRole) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidPlatformRole
	}

	actor, err := s.findUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.PlatformRoleSuperAdmin {
		return nil, ErrNotAuthorized
	}

	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRole(ctx, target.ID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	target.Role = role
	return target, nil
}

// Promote sets the platform role of the user with the given email or phone.
// It performs no authorization and is meant for operator tooling.
func (s *UserService) Promote(ctx context.Context, rawIdentifier string, role models.PlatformRole) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidPlatformRole
	}

	id, err := identity.Parse(rawIdentifier)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByIdentifier(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = role
	return user, nil
}

func (s *UserService) findUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
