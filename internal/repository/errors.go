// Package repository persists confirmed bookings.  Sentinel errors let
// higher layers distinguish missing rows from storage failures.
package repository

import "errors"

var (
    // ErrBookingNotFound is returned when no booking matches the requested id.
    ErrBookingNotFound = errors.New("booking not found")
    // ErrDuplicateBooking is returned when a booking id is stored twice.
    ErrDuplicateBooking = errors.New("booking already exists")
)
