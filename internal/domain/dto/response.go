package dto

import (
	"net/http"
	"time"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

// Error codes carried in ErrorResponse.Error. Clients branch on these, never on
// the localized message.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeUnprocessable  = "unprocessable"
	ErrCodeRateLimit      = "rate_limit_exceeded"
	ErrCodeTimeout        = "timeout"
	ErrCodeUnavailable    = "unavailable"
	ErrCodeInternal       = "internal_error"
)

var statusCodes = map[int]string{
	http.StatusBadRequest:          ErrCodeInvalidRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusRequestTimeout:      ErrCodeTimeout,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusUnprocessableEntity: ErrCodeUnprocessable,
	http.StatusTooManyRequests:     ErrCodeRateLimit,
	http.StatusServiceUnavailable:  ErrCodeUnavailable,
	http.StatusGatewayTimeout:      ErrCodeTimeout,
}

// ErrCodeFromStatus maps an HTTP status to its error code. Unlisted statuses are
// internal errors.
func ErrCodeFromStatus(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	return ErrCodeInternal
}

// SuccessResponse is the envelope of every 2xx body.
// @Description Successful API response wrapper
type SuccessResponse struct {
	Data      interface{} `json:"data" swaggertype:"object"`
	RequestID string      `json:"request_id,omitempty" example:"01J0Z3N7V8K2W6M4Q9T1R5X0BC"`
	Timestamp time.Time   `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse is the envelope of every 4xx and 5xx body.
// @Description Error code, localized message and offending fields
type ErrorResponse struct {
	Error   string `json:"error" example:"unprocessable"`
	Message string `json:"message,omitempty" example:"Contact area must be positive"`
	// Details keys are request field paths, e.g. "substances[0].cas_number".
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"01J0Z3N7V8K2W6M4Q9T1R5X0BC"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name ErrorResponse

func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: code, Message: message, Timestamp: time.Now().UTC()}
}

func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// CalculationResponse is the outcome of a calculation.
// @Description Migration values and verdicts per substance
type CalculationResponse struct {
	Case       model.CalculationCase     `json:"case" example:"known_contact_and_weight"`
	Parameters model.PackagingParameters `json:"parameters"`
	Columns    []model.RegulationColumn  `json:"columns"`
	Results    []model.CalculationResult `json:"results"`
} // @name CalculationResponse

// ReadinessResponse reports whether a session can be calculated.
type ReadinessResponse struct {
	Ready bool `json:"ready" example:"true"`
} // @name ReadinessResponse

// PageResponse wraps one page of a listing with its total.
type PageResponse struct {
	Items interface{} `json:"items" swaggertype:"array,object"`
	Total int64       `json:"total" example:"42"`
	Limit int         `json:"limit" example:"20"`
	Skip  int         `json:"skip" example:"0"`
} // @name PageResponse

type MeResponse struct {
	User    model.Identity `json:"user"`
	IsAdmin bool           `json:"is_admin" example:"false"`
} // @name MeResponse

// DeleteRegulationResponse reports a deleted regulation and how many chemicals
// lost a limit for it.
type DeleteRegulationResponse struct {
	Regulation     model.Regulation `json:"regulation"`
	LimitsStripped int64            `json:"limits_stripped" example:"3"`
} // @name DeleteRegulationResponse
