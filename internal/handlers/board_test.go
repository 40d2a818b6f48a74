package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/board-collab-api/internal/dto"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
)

func createBoardViaAPI(t *testing.T, env *handlerTestEnv, token string, payload map[string]interface{}) dto.BoardDTO {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/boards", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var board dto.BoardDTO
	decode(t, w, &board)
	return board
}

func TestBoardHandler_CRUD(t *testing.T) {
	env := setupHandlerTestEnv(t)
	_, ownerToken := env.register(t, "Owner", "owner@example.com")
	_, strangerToken := env.register(t, "Stranger", "stranger@example.com")

	board := createBoardViaAPI(t, env, ownerToken, map[string]interface{}{"title": "Roadmap", "description": "Q1"})
	assert.Equal(t, "Roadmap", board.Title)

	w := env.do(t, http.MethodGet, "/api/boards", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.BoardListResponse
	decode(t, w, &list)
	assert.Equal(t, int64(1), list.Pagination.Total)
	require.Len(t, list.Boards, 1)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/boards/%d", board.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail dto.BoardDetailDTO
	decode(t, w, &detail)
	assert.Equal(t, "OWNER", detail.YourRole)
	assert.Empty(t, detail.Lists)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/boards/%d", board.ID), strangerToken, nil)
	requireAPIError(t, w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = env.do(t, http.MethodGet, "/api/boards/999", ownerToken, nil)
	requireAPIError(t, w, http.StatusNotFound, apierrors.ErrCodeNotFound)

	w = env.do(t, http.MethodGet, "/api/boards/abc", ownerToken, nil)
	requireAPIError(t, w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/boards/%d", board.ID), strangerToken, map[string]string{"title": "Mine"})
	requireAPIError(t, w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/boards/%d", board.ID), ownerToken, map[string]string{"title": "Roadmap 2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated dto.BoardDTO
	decode(t, w, &updated)
	assert.Equal(t, "Roadmap 2", updated.Title)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/boards/%d", board.ID), strangerToken, nil)
	requireAPIError(t, w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/boards/%d", board.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/boards/%d", board.ID), ownerToken, nil)
	requireAPIError(t, w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func TestBoardHandler_ListsAndCards(t *testing.T) {
	env := setupHandlerTestEnv(t)
	_, token := env.register(t, "Owner", "owner@example.com")
	board := createBoardViaAPI(t, env, token, map[string]interface{}{"title": "Roadmap"})

	var todo, done dto.ListDTO
	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/boards/%d/lists", board.ID), token, map[string]string{"title": "Todo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &todo)
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/boards/%d/lists", board.ID), token, map[string]string{"title": "Done", "color": "#00ff00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &done)
	assert.Equal(t, 1, done.Position)

	var card dto.CardDTO
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/lists/%d/cards", todo.ID), token, map[string]interface{}{
		"text":        "Write docs",
		"attachments": []map[string]string{{"name": "mockups.pdf", "url": "https://files.example.com/mockups.pdf"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &card)
	require.Len(t, card.Attachments, 1)

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/cards/%d/move", card.ID), token, map[string]interface{}{
		"list_id":  done.ID,
		"position": 0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/boards/%d/lists", board.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lists struct {
		Lists []dto.ListDTO `json:"lists"`
	}
	decode(t, w, &lists)
	require.Len(t, lists.Lists, 2)
	assert.Empty(t, lists.Lists[0].Cards)
	require.Len(t, lists.Lists[1].Cards, 1)
	assert.Equal(t, "Write docs", lists.Lists[1].Cards[0].Text)

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/cards/%d/move", card.ID), token, map[string]interface{}{"list_id": done.ID})
	requireAPIError(t, w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/cards/%d", card.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/cards/%d", card.ID), token, nil)
	requireAPIError(t, w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func TestBoardHandler_DuplicateAndCopy(t *testing.T) {
	env := setupHandlerTestEnv(t)
	_, ownerToken := env.register(t, "Owner", "owner@example.com")
	_, strangerToken := env.register(t, "Stranger", "stranger@example.com")
	board := createBoardViaAPI(t, env, ownerToken, map[string]interface{}{"title": "Roadmap"})

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/boards/%d/lists", board.ID), ownerToken, map[string]string{"title": "Todo"})
	require.Equal(t, http.StatusCreated, w.Code)
	var todo dto.ListDTO
	decode(t, w, &todo)
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/lists/%d/cards", todo.ID), ownerToken, map[string]string{"text": "A"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/boards/%d/duplicate", board.ID), ownerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var duplicate dto.BoardDTO
	decode(t, w, &duplicate)
	assert.Equal(t, "Roadmap (Copy)", duplicate.Title)
	assert.NotEqual(t, board.ID, duplicate.ID)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/boards/%d", duplicate.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail dto.BoardDetailDTO
	decode(t, w, &detail)
	require.Len(t, detail.Lists, 1)
	require.Len(t, detail.Lists[0].Cards, 1)
	assert.Equal(t, "A", detail.Lists[0].Cards[0].Text)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/boards/%d/duplicate", board.ID), strangerToken, nil)
	requireAPIError(t, w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/boards/%d/copy", board.ID), ownerToken, map[string]interface{}{})
	requireAPIError(t, w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = env.do(t, http.MethodPost, "/api/workspaces", ownerToken, map[string]string{"name": "Engineering"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var workspace dto.WorkspaceDTO
	decode(t, w, &workspace)

	copyPayload := map[string]interface{}{"workspace_id": workspace.ID, "title": "Roadmap Q2"}
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/boards/%d/copy", board.ID), ownerToken, copyPayload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var copied dto.BoardDTO
	decode(t, w, &copied)
	require.NotNil(t, copied.WorkspaceID)
	assert.Equal(t, workspace.ID, *copied.WorkspaceID)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/boards/%d/copy", board.ID), ownerToken, copyPayload)
	requireAPIError(t, w, http.StatusConflict, apierrors.ErrCodeNameConflict)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/boards/%d/activity", board.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var activity dto.ActivityListResponse
	decode(t, w, &activity)
	assert.Equal(t, int64(2), activity.Pagination.Total)
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
