package models

import "time"

type List struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	BoardID   uint64    `gorm:"not null;index" json:"board_id"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	Color     string    `gorm:"type:varchar(20);not null" json:"color"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Board Board  `gorm:"foreignKey:BoardID" json:"-"`
	Cards []Card `gorm:"foreignKey:ListID" json:"cards,omitempty"`
}
