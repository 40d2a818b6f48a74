package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/board-collab-api/internal/constants"
)

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{name: "defaults", query: "", want: PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{name: "explicit", query: "?page=3&limit=10", want: PaginationParams{Page: 3, Limit: 10, Offset: 20}},
		{name: "negative page", query: "?page=-2&limit=5", want: PaginationParams{Page: 1, Limit: 5, Offset: 0}},
		{name: "limit too large", query: "?limit=1000", want: PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{name: "garbage", query: "?page=abc&limit=xyz", want: PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/boards"+tt.query, nil)

			assert.Equal(t, tt.want, GetPaginationParams(c))
		})
	}
}

func TestPaginationParams_Response(t *testing.T) {
	resp := NewPaginationParams(2, 10).Response(25)
	assert.Equal(t, 3, resp.TotalPages)
	assert.True(t, resp.HasMore)

	resp = NewPaginationParams(3, 10).Response(25)
	assert.False(t, resp.HasMore)

	resp = NewPaginationParams(1, 10).Response(0)
	assert.Equal(t, 0, resp.TotalPages)
	assert.False(t, resp.HasMore)
}
