package repository

import (
	"context"

	"github.com/yukikurage/board-collab-api/internal/database"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAuditRepository is a GORM implementation of AuditRepository
type GormAuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &GormAuditRepository{db: db}
}

// Record appends an entry to the activity log
func (r *GormAuditRepository) Record(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}

// ListByBoard returns a page of a board's activity, newest first
func (r *GormAuditRepository) ListByBoard(ctx context.Context, boardID uint64, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).Where("board_id = ?", boardID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	if err := query.Scopes(database.Paginate(params, "created_at DESC, id DESC")).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
