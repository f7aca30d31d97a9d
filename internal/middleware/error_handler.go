package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/logger"
)

// ErrorHandler logs the errors handlers attached with c.Error. When no response was
// written it answers 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}

		log := logger.Logger()
		event := log.Error()
		if c.Writer.Written() && c.Writer.Status() < http.StatusInternalServerError {
			event = log.Warn()
		}
		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Strs("errors", c.Errors.Errors()).
			Msg("request failed")

		if !c.Writer.Written() {
			abort(c, http.StatusInternalServerError, i18n.ErrKeyInternalError)
		}
	}
}
