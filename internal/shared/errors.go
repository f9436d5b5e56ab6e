package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccessDenied indicates a missing, mismatched or superseded refresh token.
	ErrAccessDenied = errors.New("access denied")
	// ErrDuplicate indicates a unique constraint violation on email or phone.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates malformed request input.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable indicates a transient persistence failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)
