package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/board-collab-api/internal/dto"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/services"
)

// MemberHandler serves the board membership registry.
type MemberHandler struct {
	membershipService *services.MembershipService
}

func NewMemberHandler(membershipService *services.MembershipService) *MemberHandler {
	return &MemberHandler{membershipService: membershipService}
}

// ListMembers returns the owner and members of a board
func (h *MemberHandler) ListMembers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	roster, err := h.membershipService.ListMembers(c.Request.Context(), boardID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardRosterDTO(*roster))
}

// AddMember grants a role to an existing user
func (h *MemberHandler) AddMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	var req struct {
		UserID uint64           `json:"user_id" binding:"required"`
		Role   models.BoardRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.membershipService.AddMember(c.Request.Context(), services.AddMemberInput{
		BoardID: boardID,
		UserID:  req.UserID,
		Role:    req.Role,
		ActorID: actorID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBoardMemberDTO(*member))
}

// UpdateMemberRole changes a member's board role
func (h *MemberHandler) UpdateMemberRole(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id", "user")
	if !ok {
		return
	}

	var req struct {
		Role models.BoardRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.membershipService.UpdateRole(c.Request.Context(), boardID, userID, req.Role, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardMemberDTO(*member))
}

// RemoveMember removes a member from the board
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id", "user")
	if !ok {
		return
	}

	if err := h.membershipService.RemoveMember(c.Request.Context(), boardID, userID, actorID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// LeaveBoard removes the caller from the board
func (h *MemberHandler) LeaveBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	if err := h.membershipService.LeaveBoard(c.Request.Context(), boardID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left board successfully"})
}
