package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditInvitationIssued    AuditAction = "invitation.issued"
	AuditInvitationAccepted  AuditAction = "invitation.accepted"
	AuditInvitationDeclined  AuditAction = "invitation.declined"
	AuditInvitationExpired   AuditAction = "invitation.expired"
	AuditInvitationCancelled AuditAction = "invitation.cancelled"
	AuditMemberAdded         AuditAction = "member.added"
	AuditMemberRemoved       AuditAction = "member.removed"
	AuditMemberRoleChanged   AuditAction = "member.role_changed"
	AuditBoardDuplicated     AuditAction = "board.duplicated"
	AuditBoardDeleted        AuditAction = "board.deleted"
)

// AuditLog records notable collaboration events on a board.
type AuditLog struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	ActorID    uint64         `gorm:"not null;index" json:"actor_id"`
	BoardID    uint64         `gorm:"not null;index" json:"board_id"`
	Action     AuditAction    `gorm:"type:varchar(50);not null" json:"action"`
	TargetType string         `gorm:"type:varchar(50);not null" json:"target_type"`
	TargetID   uint64         `json:"target_id"`
	Metadata   datatypes.JSON `json:"metadata"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Actor User `gorm:"foreignKey:ActorID" json:"-"`
}
