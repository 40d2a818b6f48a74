package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/board-collab-api/internal/dto"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/services"
)

// ContentHandler serves lists, cards and card assignments.
type ContentHandler struct {
	contentService *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// GetLists returns the board's lists with their cards
func (h *ContentHandler) GetLists(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	lists, err := h.contentService.GetLists(c.Request.Context(), boardID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lists": dto.ToListDTOs(lists)})
}

// CreateList appends a list to the board
func (h *ContentHandler) CreateList(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title" binding:"required,max=200"`
		Color string `json:"color" binding:"max=20"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	list, err := h.contentService.CreateList(c.Request.Context(), services.CreateListInput{
		BoardID: boardID,
		UserID:  userID,
		Title:   req.Title,
		Color:   req.Color,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToListDTO(*list))
}

// UpdateList changes a list's title, color or position
func (h *ContentHandler) UpdateList(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := parseIDParam(c, "id", "list")
	if !ok {
		return
	}

	var req struct {
		Title    *string `json:"title" binding:"omitempty,max=200"`
		Color    *string `json:"color" binding:"omitempty,max=20"`
		Position *int    `json:"position" binding:"omitempty,min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	list, err := h.contentService.UpdateList(c.Request.Context(), listID, userID, services.UpdateListInput{
		Title:    req.Title,
		Color:    req.Color,
		Position: req.Position,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListDTO(*list))
}

// DeleteList removes a list and its cards
func (h *ContentHandler) DeleteList(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := parseIDParam(c, "id", "list")
	if !ok {
		return
	}

	if err := h.contentService.DeleteList(c.Request.Context(), listID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "List deleted successfully"})
}

// CreateCard appends a card to the list
func (h *ContentHandler) CreateCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	listID, ok := parseIDParam(c, "id", "list")
	if !ok {
		return
	}

	var req struct {
		Text        string              `json:"text" binding:"required,max=255"`
		Description string              `json:"description"`
		StartDate   *time.Time          `json:"start_date"`
		EndDate     *time.Time          `json:"end_date"`
		Attachments []models.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	card, err := h.contentService.CreateCard(c.Request.Context(), services.CreateCardInput{
		ListID:      listID,
		UserID:      userID,
		Text:        req.Text,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Attachments: req.Attachments,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCardDTO(*card))
}

// UpdateCard changes a card's fields
func (h *ContentHandler) UpdateCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseIDParam(c, "id", "card")
	if !ok {
		return
	}

	var req struct {
		Text        *string              `json:"text" binding:"omitempty,max=255"`
		Description *string              `json:"description"`
		StartDate   *time.Time           `json:"start_date"`
		EndDate     *time.Time           `json:"end_date"`
		ClearDates  bool                 `json:"clear_dates"`
		Attachments *[]models.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	card, err := h.contentService.UpdateCard(c.Request.Context(), cardID, userID, services.UpdateCardInput{
		Text:        req.Text,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ClearDates:  req.ClearDates,
		Attachments: req.Attachments,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCardDTO(*card))
}

// MoveCard moves a card to another list or position on the same board
func (h *ContentHandler) MoveCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseIDParam(c, "id", "card")
	if !ok {
		return
	}

	var req struct {
		ListID   uint64 `json:"list_id" binding:"required"`
		Position *int   `json:"position" binding:"required,min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	card, err := h.contentService.MoveCard(c.Request.Context(), cardID, userID, req.ListID, *req.Position)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCardDTO(*card))
}

// DeleteCard removes a card
func (h *ContentHandler) DeleteCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseIDParam(c, "id", "card")
	if !ok {
		return
	}

	if err := h.contentService.DeleteCard(c.Request.Context(), cardID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card deleted successfully"})
}

// ListCardMembers returns the users assigned to a card
func (h *ContentHandler) ListCardMembers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseIDParam(c, "id", "card")
	if !ok {
		return
	}

	members, err := h.contentService.ListCardMembers(c.Request.Context(), cardID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": dto.ToCardMemberDTOs(members)})
}

// AddCardMember assigns a board user to a card
func (h *ContentHandler) AddCardMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseIDParam(c, "id", "card")
	if !ok {
		return
	}

	var req struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.contentService.AddCardMember(c.Request.Context(), cardID, req.UserID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"card_id":  member.CardID,
		"user_id":  member.UserID,
		"added_at": member.AddedAt,
	})
}

// RemoveCardMember unassigns a user from a card
func (h *ContentHandler) RemoveCardMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cardID, ok := parseIDParam(c, "id", "card")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "user_id", "user")
	if !ok {
		return
	}

	if err := h.contentService.RemoveCardMember(c.Request.Context(), cardID, memberID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card member removed successfully"})
}
