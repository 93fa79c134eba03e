package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Guardrail and authentication errors
	ErrInvalidPIN       = errors.New("invalid PIN")
	ErrRateLimited      = errors.New("rate limit lockout active")
	ErrHardBlocked      = errors.New("hard block active")
	ErrStoreUnavailable = errors.New("backing store unavailable")
)
