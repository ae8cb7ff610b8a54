// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrSlotUnavailable signals that a booking
// lost the race for a send date that filled up or was blacked out
// between browsing and checkout.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed
// because of conflicting state, such as approving a booking that
// was already cancelled. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSlotUnavailable is returned by booking creation when the
// requested week has no remaining capacity or falls on a blackout
// date. Handlers should translate this into an HTTP 409 response
// so the sponsor can pick another week.
var ErrSlotUnavailable = errors.New("slot unavailable")

// ErrInvalidTransition is returned when a status change is not
// permitted from the booking's current status.
var ErrInvalidTransition = errors.New("invalid status transition")
