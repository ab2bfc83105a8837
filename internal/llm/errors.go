package llm

import "errors"

var (
	// ErrUnauthorized indicates the backend rejected the credential.
	// Non-retryable; requires external reconfiguration.
	ErrUnauthorized = errors.New("advisory backend rejected credentials")

	// ErrRateLimited indicates the backend throttled the request.
	// Retryable at the caller's discretion.
	ErrRateLimited = errors.New("advisory backend rate limited")

	// ErrTransient indicates a temporary failure: network error,
	// timeout, or a 5xx response. Retryable at the caller's discretion.
	ErrTransient = errors.New("transient advisory backend failure")

	// ErrUnknown indicates an unclassifiable backend failure.
	ErrUnknown = errors.New("unknown advisory backend failure")
)
