package models

import (
	"time"

	"gorm.io/gorm"
)

type PlatformRole string

const (
	PlatformRoleUser       PlatformRole = "USER"
	PlatformRoleAdmin      PlatformRole = "ADMIN"
	PlatformRoleSuperAdmin PlatformRole = "SUPERADMIN"
)

// Valid reports whether r is a known platform role.
func (r PlatformRole) Valid() bool {
	switch r {
	case PlatformRoleUser, PlatformRoleAdmin, PlatformRoleSuperAdmin:
		return true
	}
	return false
}

// IsPlatformAdmin reports whether r overrides board-level access checks.
func (r PlatformRole) IsPlatformAdmin() bool {
	return r == PlatformRoleAdmin || r == PlatformRoleSuperAdmin
}

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	Email        *string        `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Phone        *string        `gorm:"type:varchar(32);uniqueIndex" json:"phone,omitempty"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         PlatformRole   `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Set while a password reset is outstanding.
	ResetToken          *string    `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	// Relations
	Workspaces  []Workspace   `gorm:"foreignKey:OwnerID" json:"-"`
	OwnedBoards []Board       `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships []BoardMember `gorm:"foreignKey:UserID" json:"-"`
}

// EmailAddress returns the user's email or "" when only a phone is registered.
func (u *User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
