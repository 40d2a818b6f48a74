package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attachment is one entry of Card.Attachments.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Card struct {
	ID          uint64                          `gorm:"primarykey" json:"id"`
	ListID      uint64                          `gorm:"not null;index" json:"list_id"`
	Text        string                          `gorm:"type:varchar(255);not null" json:"text"`
	Description string                          `gorm:"type:text" json:"description"`
	Position    int                             `gorm:"not null" json:"position"`
	StartDate   *time.Time                      `json:"start_date"`
	EndDate     *time.Time                      `json:"end_date"`
	Attachments datatypes.JSONSlice[Attachment] `json:"attachments"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`

	// Relations
	List    List         `gorm:"foreignKey:ListID" json:"-"`
	Members []CardMember `gorm:"foreignKey:CardID" json:"members,omitempty"`
}

type CardMember struct {
	CardID  uint64    `gorm:"primarykey" json:"card_id"`
	UserID  uint64    `gorm:"primarykey" json:"user_id"`
	AddedAt time.Time `json:"added_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
