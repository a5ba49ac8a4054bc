package reservation

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by Hold when one or more requested seats are
// already booked or held by another session.  No seat was locked.
var ErrConflict = errors.New("seats already taken")

// ErrUnauthenticated is returned when the session token is missing or the
// server rejects it.  Callers should send the user to login.
var ErrUnauthenticated = errors.New("unauthenticated")

// ServerError is any other failure: non-2xx responses, undecodable bodies
// and transport errors (Status 0).  Message is meant for display.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

// ConflictError carries the seats the server reported as unavailable.  It
// matches ErrConflict with errors.Is.
type ConflictError struct {
	Unavailable []string
}

func (e *ConflictError) Error() string {
	if len(e.Unavailable) == 0 {
		return ErrConflict.Error()
	}
	return fmt.Sprintf("%s: %v", ErrConflict.Error(), e.Unavailable)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// IsServerError reports whether err is (or wraps) a *ServerError.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
