package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Persistence Errors
	ErrCorruptState = errors.New("persisted journal state is unreadable")
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")

	// Remote Sync Errors
	ErrRemoteUnavailable  = errors.New("remote store is unavailable")
	ErrRemoteAuthFailed   = errors.New("remote store authentication failed")
	ErrSnapshotNotFound   = errors.New("no snapshot stored under the requested key")
	ErrSnapshotMalformed  = errors.New("remote snapshot could not be decoded")
	ErrQuotaExceeded      = errors.New("remote store quota exceeded")
	ErrConnectionFailed   = errors.New("failed to connect to remote endpoint")
	ErrAuthenticationFail = errors.New("exchange authentication failed (check API keys)")
	ErrRateLimited        = errors.New("API rate limit exceeded")
)
