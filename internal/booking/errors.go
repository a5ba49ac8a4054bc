package booking

import "errors"

// ValidationError is a local failure detected before any network call.
// Msg is suitable for display.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

var (
	ErrNoSeats         = &ValidationError{Msg: "Please select at least one seat"}
	ErrLoginRequired   = &ValidationError{Msg: "Please log in to book seats"}
	ErrSelectionFull   = &ValidationError{Msg: "Maximum 10 seats can be selected"}
	ErrSeatUnavailable = &ValidationError{Msg: "Seat is not available"}
	ErrUnknownSeat     = &ValidationError{Msg: "Unknown seat"}
	ErrBusy            = &ValidationError{Msg: "A booking is already in progress"}
	ErrNotMounted      = &ValidationError{Msg: "No show is loaded"}
)

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
