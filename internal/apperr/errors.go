// Package apperr defines the typed failure kinds shared by every surface.
//
// Services return these sentinels up the call chain; the HTTP boundary is
// the only place that converts them into status codes and display messages.
// "Not found" is an expected outcome of a lookup, not an anomaly, so callers
// branch with errors.Is rather than recovering from a panic or inspecting
// strings.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound signals that an identifier resolved to no record.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals an optimistic-concurrency checksum mismatch.
	ErrConflict = errors.New("conflict")
	// ErrAlreadyExists signals a create targeting an existing record.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized signals a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// Status maps a failure kind to its HTTP status code.
// Unrecognized errors map to 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing display message for a failure kind.
// The boundary renderer uses this verbatim; each recognized kind has a
// message distinct from the generic fallback.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "Not Found"
	case errors.Is(err, ErrConflict):
		return "Conflict"
	case errors.Is(err, ErrAlreadyExists):
		return "Already Exists"
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	default:
		return "Something went wrong"
	}
}
