package dto

import (
	"time"

	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/utils"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	OwnerID   uint64     `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	Boards    []BoardDTO `json:"boards,omitempty"`
}

// BoardDTO represents a board in API responses
type BoardDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     uint64    `json:"owner_id"`
	WorkspaceID *uint64   `json:"workspace_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BoardDetailDTO is a board with its lists and the caller's role
type BoardDetailDTO struct {
	BoardDTO
	Lists    []ListDTO `json:"lists"`
	YourRole string    `json:"your_role"`
}

// BoardListResponse represents a paginated list of boards
type BoardListResponse struct {
	Boards     []BoardDTO               `json:"boards"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ListDTO represents a list with its cards
type ListDTO struct {
	ID       uint64    `json:"id"`
	BoardID  uint64    `json:"board_id"`
	Title    string    `json:"title"`
	Color    string    `json:"color"`
	Position int       `json:"position"`
	Cards    []CardDTO `json:"cards"`
}

// CardDTO represents a card in API responses
type CardDTO struct {
	ID          uint64              `json:"id"`
	ListID      uint64              `json:"list_id"`
	Text        string              `json:"text"`
	Description string              `json:"description"`
	Position    int                 `json:"position"`
	StartDate   *time.Time          `json:"start_date"`
	EndDate     *time.Time          `json:"end_date"`
	Attachments []models.Attachment `json:"attachments"`
	Members     []CardMemberDTO     `json:"members,omitempty"`
}

// CardMemberDTO represents a user assigned to a card
type CardMemberDTO struct {
	User    UserDTO   `json:"user"`
	AddedAt time.Time `json:"added_at"`
}

// ActivityDTO is one audit log entry
type ActivityDTO struct {
	ID         uint64             `json:"id"`
	ActorID    uint64             `json:"actor_id"`
	Action     models.AuditAction `json:"action"`
	TargetType string             `json:"target_type"`
	TargetID   uint64             `json:"target_id"`
	Metadata   interface{}        `json:"metadata,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ActivityListResponse represents a paginated audit log
type ActivityListResponse struct {
	Activity   []ActivityDTO            `json:"activity"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// Conversion functions

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO
func ToWorkspaceDTO(workspace models.Workspace) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:        workspace.ID,
		Name:      workspace.Name,
		OwnerID:   workspace.OwnerID,
		CreatedAt: workspace.CreatedAt,
	}
	if len(workspace.Boards) > 0 {
		dto.Boards = ToBoardDTOs(workspace.Boards)
	}
	return dto
}

// ToBoardDTO converts a Board model to BoardDTO
func ToBoardDTO(board models.Board) BoardDTO {
	return BoardDTO{
		ID:          board.ID,
		Title:       board.Title,
		Description: board.Description,
		OwnerID:     board.OwnerID,
		WorkspaceID: board.WorkspaceID,
		CreatedAt:   board.CreatedAt,
		UpdatedAt:   board.UpdatedAt,
	}
}

// ToBoardDTOs converts a slice of boards
func ToBoardDTOs(boards []models.Board) []BoardDTO {
	dtos := make([]BoardDTO, len(boards))
	for i, board := range boards {
		dtos[i] = ToBoardDTO(board)
	}
	return dtos
}

// ToBoardDetailDTO converts a board with lists to BoardDetailDTO
func ToBoardDetailDTO(board models.Board, lists []models.List, yourRole string) BoardDetailDTO {
	return BoardDetailDTO{
		BoardDTO: ToBoardDTO(board),
		Lists:    ToListDTOs(lists),
		YourRole: yourRole,
	}
}

// ToListDTO converts a List model to ListDTO
func ToListDTO(list models.List) ListDTO {
	cards := make([]CardDTO, len(list.Cards))
	for i, card := range list.Cards {
		cards[i] = ToCardDTO(card)
	}
	return ListDTO{
		ID:       list.ID,
		BoardID:  list.BoardID,
		Title:    list.Title,
		Color:    list.Color,
		Position: list.Position,
		Cards:    cards,
	}
}

// ToListDTOs converts a slice of lists
func ToListDTOs(lists []models.List) []ListDTO {
	dtos := make([]ListDTO, len(lists))
	for i, list := range lists {
		dtos[i] = ToListDTO(list)
	}
	return dtos
}

// ToCardDTO converts a Card model to CardDTO
func ToCardDTO(card models.Card) CardDTO {
	attachments := []models.Attachment(card.Attachments)
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	dto := CardDTO{
		ID:          card.ID,
		ListID:      card.ListID,
		Text:        card.Text,
		Description: card.Description,
		Position:    card.Position,
		StartDate:   card.StartDate,
		EndDate:     card.EndDate,
		Attachments: attachments,
	}
	if len(card.Members) > 0 {
		dto.Members = ToCardMemberDTOs(card.Members)
	}
	return dto
}

// ToCardMemberDTOs converts card assignments
func ToCardMemberDTOs(members []models.CardMember) []CardMemberDTO {
	dtos := make([]CardMemberDTO, len(members))
	for i, member := range members {
		dtos[i] = CardMemberDTO{
			User:    ToPublicUserDTO(member.User),
			AddedAt: member.AddedAt,
		}
	}
	return dtos
}

// ToActivityDTOs converts audit log entries
func ToActivityDTOs(entries []models.AuditLog) []ActivityDTO {
	dtos := make([]ActivityDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = ActivityDTO{
			ID:         entry.ID,
			ActorID:    entry.ActorID,
			Action:     entry.Action,
			TargetType: entry.TargetType,
			TargetID:   entry.TargetID,
			Metadata:   entry.Metadata,
			CreatedAt:  entry.CreatedAt,
		}
	}
	return dtos
}
