// Package middleware holds the gin middleware of the compliance API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/i18n"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// maxRequestIDLen bounds client supplied ids before they reach logs.
const maxRequestIDLen = 128

// RequestID adopts a usable client X-Request-ID or mints a UUID, then echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !usableRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// abort stops the chain with a translated error body.
func abort(c *gin.Context, status int, key string) {
	body := dto.NewError(dto.ErrCodeFromStatus(status), i18n.Message(c, key)).WithRequestID(GetRequestID(c))
	c.AbortWithStatusJSON(status, body)
}

// abortUnauthorized is abort with 401 and the given reason.
func abortUnauthorized(c *gin.Context, key string) {
	c.Header("WWW-Authenticate", `Bearer realm="compliance-track"`)
	abort(c, http.StatusUnauthorized, key)
}
