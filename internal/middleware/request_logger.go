package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/logger"
)

// RequestLogger writes one structured line per request and hands the same entry to the
// activity recorder set by WithRecorder, if any.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		level := levelFor(status)
		entry := &model.LogEntry{
			Timestamp:  start.UTC(),
			Level:      level,
			Message:    "request",
			RequestID:  GetRequestID(c),
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			StatusCode: status,
			Duration:   elapsed.Milliseconds(),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}
		if identity, ok := IdentityFromContext(c); ok {
			entry.UserID, entry.UserEmail = identity.UserID, identity.Email
		}

		zl, _ := zerolog.ParseLevel(level)
		log := logger.Logger()
		log.WithLevel(zl).
			Str("request_id", entry.RequestID).
			Str("method", entry.Method).
			Str("path", entry.Path).
			Int("status", status).
			Dur("elapsed", elapsed).
			Str("ip", entry.IP).
			Str("user_id", entry.UserID).
			Msg(entry.Message)

		recorderFrom(c).Record(entry)
	}
}

func levelFor(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return model.LevelError
	case status >= http.StatusBadRequest:
		return model.LevelWarn
	}
	return model.LevelInfo
}
