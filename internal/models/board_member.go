package models

import (
	"time"

	"gorm.io/gorm"
)

type BoardRole string

const (
	BoardRoleViewer BoardRole = "VIEWER"
	BoardRoleMember BoardRole = "MEMBER"
	BoardRoleAdmin  BoardRole = "ADMIN"
)

// Valid reports whether r is a known board role.
func (r BoardRole) Valid() bool {
	switch r {
	case BoardRoleViewer, BoardRoleMember, BoardRoleAdmin:
		return true
	}
	return false
}

// CanEdit reports whether r may change lists and cards.
func (r BoardRole) CanEdit() bool {
	return r == BoardRoleMember || r == BoardRoleAdmin
}

// BoardMember grants a role on a board. The owner never has a row.
type BoardMember struct {
	ID       uint64    `gorm:"primarykey" json:"id"`
	BoardID  uint64    `gorm:"not null;uniqueIndex:idx_board_members_board_user" json:"board_id"`
	UserID   uint64    `gorm:"not null;uniqueIndex:idx_board_members_board_user;index" json:"user_id"`
	Role     BoardRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	Board Board `gorm:"foreignKey:BoardID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *BoardMember) BeforeCreate(tx *gorm.DB) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}
