package models

import "time"

type Board struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null;index:idx_boards_workspace_title" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     uint64    `gorm:"not null;index" json:"owner_id"`
	WorkspaceID *uint64   `gorm:"index:idx_boards_workspace_title" json:"workspace_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner       User              `gorm:"foreignKey:OwnerID" json:"-"`
	Lists       []List            `gorm:"foreignKey:BoardID" json:"lists,omitempty"`
	Members     []BoardMember     `gorm:"foreignKey:BoardID" json:"-"`
	Invitations []BoardInvitation `gorm:"foreignKey:BoardID" json:"-"`
}

// IsOwner reports whether userID owns the board.
func (b *Board) IsOwner(userID uint64) bool {
	return b.OwnerID == userID
}
