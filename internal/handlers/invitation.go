package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/board-collab-api/internal/dto"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/services"
)

// InvitationHandler serves the board invitation lifecycle.
type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

type invitationTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// IssueInvitation invites an email address to the board
func (h *InvitationHandler) IssueInvitation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	var req struct {
		Email string           `json:"email" binding:"required"`
		Role  models.BoardRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invitation, err := h.invitationService.Issue(c.Request.Context(), services.IssueInvitationInput{
		BoardID:      boardID,
		InviterID:    userID,
		InviteeEmail: req.Email,
		Role:         req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvitationDTO(services.InvitationDetails{Invitation: invitation}))
}

// ListBoardInvitations returns every invitation issued for the board
func (h *InvitationHandler) ListBoardInvitations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListForBoard(c.Request.Context(), boardID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": dto.ToInvitationDTOs(invitations)})
}

// ListMyInvitations returns pending invitations addressed to the caller
func (h *InvitationHandler) ListMyInvitations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": dto.ToInvitationDTOs(invitations)})
}

// ResolveInvitation shows an invitation by its token. No authentication is
// needed so the invitee can see it before signing up.
func (h *InvitationHandler) ResolveInvitation(c *gin.Context) {
	details, err := h.invitationService.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*details))
}

// AcceptInvitation adds the caller to the board
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req invitationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.invitationService.Accept(c.Request.Context(), req.Token, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"board_id":  member.BoardID,
		"user_id":   member.UserID,
		"role":      member.Role,
		"joined_at": member.JoinedAt,
	})
}

// DeclineInvitation refuses an invitation
func (h *InvitationHandler) DeclineInvitation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req invitationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invitation, err := h.invitationService.Decline(c.Request.Context(), req.Token, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(services.InvitationDetails{Invitation: invitation}))
}

// CancelInvitation withdraws a pending invitation
func (h *InvitationHandler) CancelInvitation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	invitationID, ok := parseIDParam(c, "id", "invitation")
	if !ok {
		return
	}

	if err := h.invitationService.Cancel(c.Request.Context(), invitationID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled successfully"})
}
