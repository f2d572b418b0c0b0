package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource (user, list, destination, journal entry, invitation) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, date that does not match the status).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the acting user lacks the permission level
// the operation requires. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when the operation would duplicate a resource that
// must be unique, e.g. a second pending invitation for the same list and invitee.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when an invitation transition is attempted from
// a state that does not allow it (anything but pending).
var ErrInvalidState = errors.New("invalid state")

// ErrExpired is returned when an invitation is accepted or rejected after its
// expiry. It is distinct from ErrInvalidState so the UI can tell the two apart.
var ErrExpired = errors.New("expired")

// ErrLimitExceeded is wrapped by LimitExceededError. Limit checks themselves
// never return it; only creation paths that must refuse the write do.
var ErrLimitExceeded = errors.New("limit exceeded")

// LimitExceededError carries the numbers of a denied LimitDecision so callers
// can render an upgrade prompt.
type LimitExceededError struct {
	Resource Resource
	Current  int64
	Limit    Limit
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s: %s %d/%d", ErrLimitExceeded, e.Resource, e.Current, e.Limit)
}

// Unwrap lets errors.Is(err, ErrLimitExceeded) match.
func (e *LimitExceededError) Unwrap() error {
	return ErrLimitExceeded
}
