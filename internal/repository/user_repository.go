package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/board-collab-api/internal/identity"
	"github.com/yukikurage/board-collab-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrIdentifierExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier finds a user by email or phone
func (r *GormUserRepository) FindByIdentifier(ctx context.Context, id identity.Identifier) (*models.User, error) {
	column := "email"
	if id.Kind() == identity.KindPhone {
		column = "phone"
	}

	var user models.User
	if err := r.db.WithContext(ctx).Where(column+" = ?", id.String()).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users
func (r *GormUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole changes the platform role of a user
func (r *GormUserRepository) UpdateRole(ctx context.Context, id uint64, role models.PlatformRole) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetResetToken stores a password reset token
func (r *GormUserRepository) SetResetToken(ctx context.Context, id uint64, token string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expiresAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByResetToken finds the user holding an unexpired reset token
func (r *GormUserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expires_at > ?", token, now).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword replaces the password hash and consumes the reset token
func (r *GormUserRepository) ResetPassword(ctx context.Context, id uint64, token, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND reset_token = ?", id, token).
		Updates(map[string]interface{}{
			"password_hash":          passwordHash,
			"reset_token":            nil,
			"reset_token_expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
