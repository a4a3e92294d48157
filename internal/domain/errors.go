package domain

import "errors"

// Sentinel errors for catalog operations
var (
	// ErrNetwork indicates a fetch from the remote catalog did not complete
	ErrNetwork = errors.New("catalog source is unreachable")

	// ErrNotFound indicates a valid request that produced no data
	ErrNotFound = errors.New("media not found")

	// ErrStorage indicates a persistent read or write failed
	ErrStorage = errors.New("storage failure")

	// ErrInvalidInput indicates a malformed id, profile or media type
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthFailed indicates the provider rejected the account credentials
	ErrAuthFailed = errors.New("authentication failed")

	// ErrUnknownProfile indicates no account is configured for a profile
	ErrUnknownProfile = errors.New("unknown profile")
)
