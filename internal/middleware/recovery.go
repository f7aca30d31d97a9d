package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/logger"
)

// Recovery turns a handler panic into a logged 500 response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log := logger.Logger()
		log.Error().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Interface("panic", recovered).
			Msg("handler panicked")
		abort(c, http.StatusInternalServerError, i18n.ErrKeyInternalError)
	})
}
