// Package holdserver is the reference implementation of the seat-hold API
// the booking client talks to.  Its stores enforce the contract the client
// relies on: a hold is all-or-nothing, every lock expires after the hold
// TTL, and a lock is consumed by at most one confirm.  Handlers translate
// store errors into HTTP statuses the client maps back onto its taxonomy.
package holdserver

import (
    "errors"
    "fmt"
)

// ErrShowNotFound is returned for an unknown show id.  Handlers respond
// with 404.
var ErrShowNotFound = errors.New("show not found")

// ErrConflict is returned by Hold when any requested seat is booked or
// locked.  Handlers respond with 409.
var ErrConflict = errors.New("seats unavailable")

// ErrHoldExpired is returned by Confirm when a lock id has expired, was
// already consumed, or belongs to another user or show.  Handlers respond
// with 409.
var ErrHoldExpired = errors.New("hold expired")

// ErrInvalidRequest is returned for malformed seat or lock lists.
// Handlers respond with 400.
var ErrInvalidRequest = errors.New("invalid request")

// UnavailableError lists the seats that made a hold fail.  It matches
// ErrConflict.
type UnavailableError struct {
    Seats []string
}

func (e *UnavailableError) Error() string {
    return fmt.Sprintf("%s: %v", ErrConflict.Error(), e.Seats)
}

func (e *UnavailableError) Is(target error) bool { return target == ErrConflict }
