package dto

import (
	"time"

	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/services"
)

// BoardMemberDTO represents a member in a board roster
type BoardMemberDTO struct {
	UserID   uint64           `json:"user_id"`
	User     UserDTO          `json:"user"`
	Role     models.BoardRole `json:"role"`
	JoinedAt time.Time        `json:"joined_at"`
}

// BoardRosterDTO lists the owner and members of a board
type BoardRosterDTO struct {
	Owner    UserDTO          `json:"owner"`
	Members  []BoardMemberDTO `json:"members"`
	YourRole string           `json:"your_role"`
}

// InvitationDTO represents an invitation in API responses
type InvitationDTO struct {
	ID           uint64                  `json:"id"`
	Token        string                  `json:"token"`
	BoardID      uint64                  `json:"board_id"`
	BoardTitle   string                  `json:"board_title,omitempty"`
	InviteeEmail string                  `json:"invitee_email"`
	Role         models.BoardRole        `json:"role"`
	Status       models.InvitationStatus `json:"status"`
	Expired      bool                    `json:"expired"`
	ExpiresAt    time.Time               `json:"expires_at"`
	AcceptedAt   *time.Time              `json:"accepted_at,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	Inviter      *UserDTO                `json:"inviter,omitempty"`
}

// ToBoardMemberDTO converts a member to DTO
func ToBoardMemberDTO(member models.BoardMember) BoardMemberDTO {
	return BoardMemberDTO{
		UserID:   member.UserID,
		User:     ToPublicUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToBoardRosterDTO converts a roster to DTO
func ToBoardRosterDTO(roster services.BoardRoster) BoardRosterDTO {
	members := make([]BoardMemberDTO, len(roster.Members))
	for i, member := range roster.Members {
		members[i] = ToBoardMemberDTO(member)
	}

	dto := BoardRosterDTO{
		Members:  members,
		YourRole: roster.YourRole,
	}
	if roster.Owner != nil {
		dto.Owner = ToPublicUserDTO(*roster.Owner)
	}
	return dto
}

// ToInvitationDTO converts invitation details
func ToInvitationDTO(details services.InvitationDetails) InvitationDTO {
	inv := details.Invitation
	dto := InvitationDTO{
		ID:           inv.ID,
		Token:        inv.Token,
		BoardID:      inv.BoardID,
		BoardTitle:   inv.Board.Title,
		InviteeEmail: inv.InviteeEmail,
		Role:         inv.Role,
		Status:       inv.Status,
		Expired:      details.Expired,
		ExpiresAt:    inv.ExpiresAt,
		AcceptedAt:   inv.AcceptedAt,
		CreatedAt:    inv.CreatedAt,
	}
	if inv.Inviter.ID != 0 {
		inviter := ToPublicUserDTO(inv.Inviter)
		dto.Inviter = &inviter
	}
	return dto
}

// ToInvitationDTOs converts a slice of invitation details
func ToInvitationDTOs(list []services.InvitationDetails) []InvitationDTO {
	dtos := make([]InvitationDTO, len(list))
	for i, details := range list {
		dtos[i] = ToInvitationDTO(details)
	}
	return dtos
}
