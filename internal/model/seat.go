package model

// SeatStatus is the render state of one seat.  It is recomputed on every
// render from the selection and the last availability snapshot.
type SeatStatus string

const (
    SeatAvailable SeatStatus = "AVAILABLE"
    SeatSelected  SeatStatus = "SELECTED"
    SeatLocked    SeatStatus = "LOCKED"
    SeatBooked    SeatStatus = "BOOKED"
)

// Selectable reports whether a user may add a seat with this status to
// the selection.
func (s SeatStatus) Selectable() bool {
    return s == SeatAvailable || s == SeatSelected
}
