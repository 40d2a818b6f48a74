package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/board-collab-api/internal/dto"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
	"github.com/yukikurage/board-collab-api/internal/services"
	"github.com/yukikurage/board-collab-api/internal/utils"
)

// BoardHandler serves board CRUD, activity and duplication.
type BoardHandler struct {
	boardService       *services.BoardService
	duplicationService *services.DuplicationService
}

func NewBoardHandler(boardService *services.BoardService, duplicationService *services.DuplicationService) *BoardHandler {
	return &BoardHandler{
		boardService:       boardService,
		duplicationService: duplicationService,
	}
}

// CreateBoard creates a board owned by the caller
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Title       string  `json:"title" binding:"required,max=200"`
		Description string  `json:"description"`
		WorkspaceID *uint64 `json:"workspace_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	board, err := h.boardService.Create(c.Request.Context(), services.CreateBoardInput{
		Title:       req.Title,
		Description: req.Description,
		WorkspaceID: req.WorkspaceID,
		OwnerID:     userID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBoardDTO(*board))
}

// ListBoards returns boards the caller owns or belongs to
func (h *BoardHandler) ListBoards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	boards, total, err := h.boardService.ListAccessible(c.Request.Context(), userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BoardListResponse{
		Boards:     dto.ToBoardDTOs(boards),
		Pagination: params.Response(total),
	})
}

// GetBoard returns a board with its lists and cards
func (h *BoardHandler) GetBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	view, err := h.boardService.Get(c.Request.Context(), boardID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDetailDTO(*view.Board, view.Lists, view.YourRole))
}

// UpdateBoard changes a board's title or description
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title" binding:"omitempty,max=200"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	board, err := h.boardService.Update(c.Request.Context(), boardID, userID, services.UpdateBoardInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(*board))
}

// DeleteBoard removes a board and everything on it
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	if err := h.boardService.Delete(c.Request.Context(), boardID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board deleted successfully"})
}

// GetActivity returns a page of the board's audit log
func (h *BoardHandler) GetActivity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, err := h.boardService.Activity(c.Request.Context(), boardID, userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ActivityListResponse{
		Activity:   dto.ToActivityDTOs(entries),
		Pagination: params.Response(total),
	})
}

// DuplicateBoard makes a private copy of the board for the caller, or for
// another user when a platform administrator names one.
func (h *BoardHandler) DuplicateBoard(c *gin.Context) {
	var req struct {
		Title       *string `json:"title" binding:"omitempty,max=200"`
		WorkspaceID *uint64 `json:"workspace_id"`
		OwnerID     uint64  `json:"owner_id"`
	}
	if err := bindOptionalJSON(c, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	h.duplicate(c, services.DuplicateInput{
		TargetOwnerID:     req.OwnerID,
		TargetWorkspaceID: req.WorkspaceID,
		Title:             req.Title,
	})
}

// CopyBoard copies the board into one of the caller's workspaces, rejecting
// a title already used there.
func (h *BoardHandler) CopyBoard(c *gin.Context) {
	var req struct {
		WorkspaceID uint64  `json:"workspace_id" binding:"required"`
		Title       *string `json:"title" binding:"omitempty,max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	h.duplicate(c, services.DuplicateInput{
		TargetWorkspaceID: &req.WorkspaceID,
		Title:             req.Title,
		CheckNameConflict: true,
	})
}

func (h *BoardHandler) duplicate(c *gin.Context, input services.DuplicateInput) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id", "board")
	if !ok {
		return
	}

	input.SourceBoardID = boardID
	input.ActorID = userID

	board, err := h.duplicationService.Duplicate(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBoardDTO(*board))
}

// bindOptionalJSON binds a JSON body when one was sent.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}
