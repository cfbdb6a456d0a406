package domain

import "errors"

// Sentinel errors for the failure categories the HTTP boundary maps to
// status codes. Services wrap these with fmt.Errorf("...: %w", Err...) so
// callers can test the category with errors.Is while keeping a
// human-readable message.
var (
	// ErrNotFound signals an entity lookup miss (404).
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a violated domain precondition: duplicate phone,
	// duplicate pending request, invalid state transition (400).
	ErrConflict = errors.New("conflict")

	// ErrValidation signals malformed or missing input (400).
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated signals a missing or invalid identity (401).
	ErrUnauthenticated = errors.New("authentication required")

	// ErrUnauthorized signals a role or ownership mismatch (403).
	ErrUnauthorized = errors.New("insufficient permissions")
)
