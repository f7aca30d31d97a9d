package service

import (
	"errors"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

var (
	// ErrInvalidParameters is returned when the estimator cannot produce a finite migration value.
	ErrInvalidParameters = model.ErrInvalidParameters
	// ErrParameterLocked is returned when a locked packaging parameter is edited.
	ErrParameterLocked = errors.New("parameter is locked by the selected calculation case")
	// ErrInvalidCase is returned for an unknown calculation case.
	ErrInvalidCase = errors.New("invalid calculation case")
	// ErrNotReady is returned when a session does not pass the readiness gate.
	ErrNotReady = errors.New("calculation is not ready")
	// ErrNotCalculated is returned when results are requested before a calculation ran.
	ErrNotCalculated = errors.New("session has not been calculated")
	// ErrSessionNotFound is returned when a calculation session does not exist or expired.
	ErrSessionNotFound = errors.New("calculation session not found")
	// ErrSubstanceNotFound is returned when a substance id is not part of the session.
	ErrSubstanceNotFound = errors.New("substance not found")
	// ErrChemicalNotFound is returned when a chemical does not exist.
	ErrChemicalNotFound = errors.New("chemical not found")
	// ErrChemicalExists is returned when a chemical name is already in the catalog.
	ErrChemicalExists = errors.New("chemical already exists")
	// ErrLimitNotFound is returned when removing a limit the chemical does not carry.
	ErrLimitNotFound = errors.New("regulation limit not found")
	// ErrRegulationNotFound is returned when a regulation does not exist.
	ErrRegulationNotFound = errors.New("regulation not found")
	// ErrRegulationExists is returned when creating a regulation with an existing id.
	ErrRegulationExists = errors.New("regulation already exists")
	// ErrInvalidCatalogEntry is returned when a chemical or regulation fails validation.
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")
	// ErrInvalidHistoryQuery is returned for an unknown scope or an inverted time range.
	ErrInvalidHistoryQuery = errors.New("invalid history query")
	// ErrRepositoryNotConfigured is returned when the database layer is disabled.
	ErrRepositoryNotConfigured = errors.New("repository not configured")
)

var (
	// ErrInvalidCredentials is returned when the email is unknown, the password is wrong or the account is disabled.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserExists is returned when the email or username is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidToken is returned for a token that is malformed, expired or no longer stored.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrTokenRevoked is returned for an access token revoked by a logout.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrAccountSetup is returned when the seeded roles are missing.
	ErrAccountSetup = errors.New("accounts are not set up")
)
