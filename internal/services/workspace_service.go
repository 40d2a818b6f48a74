package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"gorm.io/gorm"
)

var ErrWorkspaceNameRequired = errors.New("workspace name is required")

// WorkspaceService groups boards under named workspaces.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	boardRepo     repository.BoardRepository
	userRepo      repository.UserRepository
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, boardRepo repository.BoardRepository, userRepo repository.UserRepository) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		boardRepo:     boardRepo,
		userRepo:      userRepo,
	}
}

// Create creates a workspace owned by ownerID.
func (s *WorkspaceService) Create(ctx context.Context, ownerID uint64, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrWorkspaceNameRequired
	}

	workspace := &models.Workspace{
		Name:    name,
		OwnerID: ownerID,
	}
	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return workspace, nil
}

// ListForOwner lists the caller's workspaces.
func (s *WorkspaceService) ListForOwner(ctx context.Context, ownerID uint64) ([]models.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// Get returns a workspace with its boards.
func (s *WorkspaceService) Get(ctx context.Context, workspaceID, userID uint64) (*models.Workspace, error) {
	workspace, err := s.authorize(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	boards, err := s.boardRepo.ListByWorkspace(ctx, workspace.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	workspace.Boards = boards
	return workspace, nil
}

// Rename changes a workspace's name.
func (s *WorkspaceService) Rename(ctx context.Context, workspaceID, userID uint64, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrWorkspaceNameRequired
	}

	workspace, err := s.authorize(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	workspace.Name = name
	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return workspace, nil
}

// Delete removes a workspace and all of its boards.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, userID uint64) error {
	workspace, err := s.authorize(ctx, workspaceID, userID)
	if err != nil {
		return err
	}

	if err := s.workspaceRepo.Delete(ctx, workspace.ID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return nil
}

// authorize loads the workspace and allows its owner or a platform administrator.
func (s *WorkspaceService) authorize(ctx context.Context, workspaceID, userID uint64) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	if workspace.OwnerID == userID {
		return workspace, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.Role.IsPlatformAdmin() {
		return nil, ErrNotAuthorized
	}
	return workspace, nil
}
