package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/circuitbreaker"
	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/service"
	"github.com/guttosm/compliance-track/internal/validator"
)

type errorMapping struct {
	target error
	status int
	key    string
}

// serviceErrors maps service sentinels to responses. The first match wins.
var serviceErrors = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, i18n.ErrKeyInvalidCredentials},
	{service.ErrInvalidToken, http.StatusUnauthorized, i18n.ErrKeyInvalidToken},
	{service.ErrTokenRevoked, http.StatusUnauthorized, i18n.ErrKeyInvalidToken},
	{service.ErrUserExists, http.StatusConflict, i18n.ErrKeyUserExists},
	{service.ErrAccountSetup, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable},
	{service.ErrSessionNotFound, http.StatusNotFound, i18n.ErrKeySessionNotFound},
	{service.ErrSubstanceNotFound, http.StatusNotFound, i18n.ErrKeySubstanceNotFound},
	{service.ErrChemicalNotFound, http.StatusNotFound, i18n.ErrKeyChemicalNotFound},
	{service.ErrRegulationNotFound, http.StatusNotFound, i18n.ErrKeyRegulationNotFound},
	{service.ErrLimitNotFound, http.StatusNotFound, i18n.ErrKeyLimitNotFound},
	{service.ErrParameterLocked, http.StatusConflict, i18n.ErrKeyParameterLocked},
	{service.ErrNotCalculated, http.StatusConflict, i18n.ErrKeyNotCalculated},
	{service.ErrChemicalExists, http.StatusConflict, i18n.ErrKeyChemicalExists},
	{service.ErrRegulationExists, http.StatusConflict, i18n.ErrKeyRegulationExists},
	{service.ErrInvalidParameters, http.StatusUnprocessableEntity, i18n.ErrKeyInvalidParameters},
	{service.ErrNotReady, http.StatusUnprocessableEntity, i18n.ErrKeyNotReady},
	{service.ErrInvalidCase, http.StatusBadRequest, i18n.ErrKeyInvalidCase},
	{service.ErrInvalidCatalogEntry, http.StatusBadRequest, i18n.ErrKeyInvalidCatalogEntry},
	{service.ErrInvalidHistoryQuery, http.StatusBadRequest, i18n.ErrKeyInvalidHistoryQuery},
	{service.ErrUnsupportedFormat, http.StatusBadRequest, i18n.ErrKeyUnsupportedFormat},
	{service.ErrRepositoryNotConfigured, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable},
	{circuitbreaker.ErrCircuitOpen, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, i18n.ErrKeyTimeout},
}

// statusForError returns the HTTP status and message key for a service error.
func statusForError(err error) (int, string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return m.status, m.key
		}
	}
	return http.StatusInternalServerError, i18n.ErrKeyInternalError
}

// respondError writes the response matching err.
func respondError(c *gin.Context, err error) {
	status, key := statusForError(err)
	NewResponseBuilder(c).Error(status, key, err)
}

// bindAndValidate decodes the JSON body into req and runs its validation.
// On failure it writes the response and returns false.
func bindAndValidate[T any](c *gin.Context) (*T, bool) {
	builder := NewResponseBuilder(c)

	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return nil, false
	}
	if v, ok := any(&req).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			if details := validator.FieldErrors(err); details != nil {
				builder.ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyValidationFailed, details, err)
			} else {
				builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
			}
			return nil, false
		}
	}
	return &req, true
}
