package models

import (
	"fmt"
	"time"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
	InvitationStatusDeclined InvitationStatus = "DECLINED"
	InvitationStatusExpired  InvitationStatus = "EXPIRED"
)

// IsTerminal reports whether s can no longer change.
func (s InvitationStatus) IsTerminal() bool {
	return s != InvitationStatusPending
}

type BoardInvitation struct {
	ID           uint64           `gorm:"primarykey" json:"id"`
	Token        string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	BoardID      uint64           `gorm:"not null;index" json:"board_id"`
	InviterID    uint64           `gorm:"not null;index" json:"inviter_id"`
	InviteeEmail string           `gorm:"type:varchar(255);not null;index" json:"invitee_email"`
	Role         BoardRole        `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	Status       InvitationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PendingKey   *string          `gorm:"type:varchar(300);uniqueIndex" json:"-"`
	ExpiresAt    time.Time        `gorm:"not null" json:"expires_at"`
	AcceptedAt   *time.Time       `json:"accepted_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Relations
	Board   Board `gorm:"foreignKey:BoardID" json:"-"`
	Inviter User  `gorm:"foreignKey:InviterID" json:"-"`
}

// IsExpired reports whether the invitation is past its expiry at now.
func (i *BoardInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// PendingInvitationKey is the value of PendingKey while an invitation is PENDING.
// The unique index on it allows one pending invitation per board and address.
func PendingInvitationKey(boardID uint64, email string) string {
	return fmt.Sprintf("%d:%s", boardID, email)
}
