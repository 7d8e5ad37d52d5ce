package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/users?"+rawQuery, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 20},
		{"valid values", "page=3&limit=50", 3, 50},
		// limit=0 alimentava a divisão de totalPages direto
		{"zero limit", "limit=0", 1, 20},
		{"negative limit", "limit=-5", 1, 20},
		{"non numeric limit", "limit=abc", 1, 20},
		{"limit above cap", "limit=500", 1, 20},
		{"zero page", "page=0&limit=10", 1, 10},
		{"non numeric page", "page=xyz", 1, 20},
		{"upper bound limit", "page=7&limit=100", 7, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := paginationContext(t, tt.query)

			page, limit := parsePagination(c)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
