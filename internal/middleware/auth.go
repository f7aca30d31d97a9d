package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/i18n"
)

// API key locations. The header wins over the query parameter.
const (
	APIKeyHeader = "X-API-Key"
	APIKeyQuery  = "api_key"
)

// RequireAPIKey admits requests carrying one of keys. With no keys configured every request passes.
func RequireAPIKey(keys map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = c.Query(APIKeyQuery)
		}
		switch {
		case key == "":
			abortUnauthorized(c, i18n.ErrKeyAPIKeyRequired)
		case !keys[key]:
			abortUnauthorized(c, i18n.ErrKeyInvalidAPIKey)
		default:
			c.Next()
		}
	}
}
