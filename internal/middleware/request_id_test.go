package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		sent   string
		adopts bool
	}{
		{"client id is adopted", "calc-7f3a", true},
		{"no id mints one", "", false},
		{"control characters are refused", "calc\x01", false},
		{"spaces are refused", "calc 7f3a", false},
		{"overlong id is refused", strings.Repeat("a", maxRequestIDLen+1), false},
		{"id at the length bound is adopted", strings.Repeat("a", maxRequestIDLen), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			r := gin.New()
			r.Use(RequestID())
			r.POST("/api/v1/calculations", func(c *gin.Context) {
				seen = GetRequestID(c)
				c.Status(http.StatusOK)
			})

			w := serve(r, http.MethodPost, "/api/v1/calculations", `{}`, map[string]string{RequestIDHeader: tt.sent})

			echoed := w.Header().Get(RequestIDHeader)
			assert.Equal(t, seen, echoed)
			if tt.adopts {
				assert.Equal(t, tt.sent, echoed)
				return
			}
			_, err := uuid.Parse(echoed)
			assert.NoError(t, err)
		})
	}
}

func TestGetRequestID_WithoutMiddleware(t *testing.T) {
	var seen = "unset"
	r := gin.New()
	r.GET("/api/v1/sessions/:id", func(c *gin.Context) { seen = GetRequestID(c) })
	serve(r, http.MethodGet, "/api/v1/sessions/s-1", "", nil)
	assert.Empty(t, seen)
}
