package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/middleware"
)

// ResponseBuilder writes the dto.SuccessResponse and dto.ErrorResponse envelopes.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a ResponseBuilder for c.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success wraps data with the request id and time.
func (b *ResponseBuilder) Success(status int, data any) {
	b.c.JSON(status, dto.SuccessResponse{
		Data:      data,
		RequestID: middleware.GetRequestID(b.c),
		Timestamp: time.Now().UTC(),
	})
}

// SuccessOK is Success with 200.
func (b *ResponseBuilder) SuccessOK(data any) { b.Success(http.StatusOK, data) }

// SuccessCreated is Success with 201.
func (b *ResponseBuilder) SuccessCreated(data any) { b.Success(http.StatusCreated, data) }

// Error aborts with the translated message for key. A non-nil err is attached to the
// context for ErrorHandler to log and never reaches the client.
func (b *ResponseBuilder) Error(status int, key string, err error) {
	b.fail(status, key, nil, err)
}

// ErrorWithDetails is Error with per field messages.
func (b *ResponseBuilder) ErrorWithDetails(status int, key string, details map[string]string, err error) {
	b.fail(status, key, details, err)
}

func (b *ResponseBuilder) fail(status int, key string, details map[string]string, err error) {
	if err != nil {
		_ = b.c.Error(err)
	}
	body := dto.NewError(dto.ErrCodeFromStatus(status), i18n.Message(b.c, key)).WithRequestID(middleware.GetRequestID(b.c))
	body.Details = details
	b.c.AbortWithStatusJSON(status, body)
}
