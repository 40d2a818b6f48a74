package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/board-collab-api/internal/dto"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/services"
)

// AdminHandler exposes platform user management.
type AdminHandler struct {
	userService *services.UserService
}

func NewAdminHandler(userService *services.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// ListUsers returns every registered user.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// ChangeRole sets a user's platform role.
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	var req struct {
		Role models.PlatformRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), actorID, targetID, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
