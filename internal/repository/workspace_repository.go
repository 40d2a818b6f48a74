package repository

import (
	"context"

	"github.com/yukikurage/board-collab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// Create creates a new workspace
func (r *GormWorkspaceRepository) Create(ctx context.Context, workspace *models.Workspace) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(workspace).Error
}

// FindByID finds a workspace by ID
func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id uint64) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.WithContext(ctx).First(&workspace, id).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// ListByOwner lists the workspaces a user owns
func (r *GormWorkspaceRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return workspaces, nil
}

// Update updates a workspace
func (r *GormWorkspaceRepository) Update(ctx context.Context, workspace *models.Workspace) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(workspace).Error
}

// Delete deletes a workspace and all of its boards in a transaction
func (r *GormWorkspaceRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var boardIDs []uint64
		if err := tx.Model(&models.Board{}).Where("workspace_id = ?", id).Pluck("id", &boardIDs).Error; err != nil {
			return err
		}

		if err := deleteBoards(tx, boardIDs); err != nil {
			return err
		}

		return tx.Delete(&models.Workspace{}, id).Error
	})
}
