package i18n

// Keys for the transport layer: request decoding, authentication and limits.
const (
	ErrKeyInvalidRequest      = "error.invalid_request"
	ErrKeyInvalidRequestBody  = "error.invalid_request_body"
	ErrKeyValidationFailed    = "error.validation_failed"
	ErrKeyInternalError       = "error.internal_error"
	ErrKeyUnauthorized        = "error.unauthorized"
	ErrKeyForbidden           = "error.forbidden"
	ErrKeyNotFound            = "error.not_found"
	ErrKeyConflict            = "error.conflict"
	ErrKeyTimeout             = "error.timeout"
	ErrKeyRateLimitExceeded   = "error.rate_limit_exceeded"
	ErrKeyIdempotencyConflict = "error.idempotency_conflict"
	ErrKeyAPIKeyRequired      = "error.api_key_required"
	ErrKeyInvalidAPIKey       = "error.invalid_api_key"
	ErrKeyTokenRequired       = "error.token_required"
	ErrKeyInvalidToken        = "error.invalid_token"
	// ErrKeyInvalidCredentials covers an unknown email and a wrong password alike.
	ErrKeyInvalidCredentials = "error.invalid_credentials"
	ErrKeyUserExists         = "error.user_exists"
	// ErrKeyServiceUnavailable is used when the database is disabled or its circuit is open.
	ErrKeyServiceUnavailable = "error.service_unavailable"
)

// Keys for calculation, session and catalog failures.
const (
	ErrKeyInvalidParameters   = "error.invalid_parameters"
	ErrKeyParameterLocked     = "error.parameter_locked"
	ErrKeyInvalidCase         = "error.invalid_case"
	ErrKeyNotReady            = "error.not_ready"
	ErrKeyNotCalculated       = "error.not_calculated"
	ErrKeySessionNotFound     = "error.session_not_found"
	ErrKeySubstanceNotFound   = "error.substance_not_found"
	ErrKeyChemicalNotFound    = "error.chemical_not_found"
	ErrKeyChemicalExists      = "error.chemical_exists"
	ErrKeyLimitNotFound       = "error.limit_not_found"
	ErrKeyRegulationNotFound  = "error.regulation_not_found"
	ErrKeyRegulationExists    = "error.regulation_exists"
	ErrKeyInvalidCatalogEntry = "error.invalid_catalog_entry"
	ErrKeyInvalidHistoryQuery = "error.invalid_history_query"
	ErrKeyUnsupportedFormat   = "error.unsupported_format"
)
