package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/board-collab-api/internal/dto"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
	"github.com/yukikurage/board-collab-api/internal/services"
)

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

type workspaceRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// CreateWorkspace creates a workspace owned by the caller
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req workspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*workspace))
}

// ListWorkspaces returns the caller's workspaces
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	workspaces, err := h.workspaceService.ListForOwner(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	dtos := make([]dto.WorkspaceDTO, len(workspaces))
	for i, workspace := range workspaces {
		dtos[i] = dto.ToWorkspaceDTO(workspace)
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": dtos})
}

// GetWorkspace returns a workspace with its boards
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id", "workspace")
	if !ok {
		return
	}

	workspace, err := h.workspaceService.Get(c.Request.Context(), workspaceID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*workspace))
}

// UpdateWorkspace renames a workspace
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id", "workspace")
	if !ok {
		return
	}

	var req workspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.Rename(c.Request.Context(), workspaceID, userID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*workspace))
}

// DeleteWorkspace removes a workspace and its boards
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id", "workspace")
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(c.Request.Context(), workspaceID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workspace deleted successfully"})
}
