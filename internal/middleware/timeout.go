package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/i18n"
)

// Timeout gives each request a deadline. Handlers observe it through the request
// context; when the deadline passes before anything was written the caller gets 504.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			abort(c, http.StatusGatewayTimeout, i18n.ErrKeyTimeout)
		}
	}
}
