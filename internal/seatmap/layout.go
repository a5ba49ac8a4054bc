// Package seatmap maps seat identifiers to render state.  A seat id is a
// row letter followed by a 1-based column number ("A1", "H12").  The grid
// geometry is fixed per show; statuses are derived on every render from
// the local selection and the last availability snapshot.
package seatmap

import (
	"errors"
	"fmt"
	"strconv"
)

// Reference geometry: 8 rows x 12 seats = 96 seats per show.
const (
	DefaultRows = 8
	DefaultCols = 12
)

// ErrInvalidSeat is returned when a seat id does not name a seat in the
// layout.
var ErrInvalidSeat = errors.New("invalid seat id")

// Layout is the seat grid geometry of a show.
type Layout struct {
	Rows int
	Cols int
}

// DefaultLayout returns the 8x12 reference layout.
func DefaultLayout() Layout { return Layout{Rows: DefaultRows, Cols: DefaultCols} }

// NewLayout returns a layout for the given geometry, falling back to the
// reference geometry for non-positive values.  Rows are capped at 26 so
// every row has a single letter.
func NewLayout(rows, cols int) Layout {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows > 26 {
		rows = 26
	}
	return Layout{Rows: rows, Cols: cols}
}

// Size is the number of seats in the layout.
func (l Layout) Size() int { return l.Rows * l.Cols }

// RowLabel returns the letter for a 0-based row index.
func RowLabel(row int) string { return string(rune('A' + row)) }

// SeatID formats the id of the seat at 0-based (row, col).
func (l Layout) SeatID(row, col int) string {
	return RowLabel(row) + strconv.Itoa(col+1)
}

// Position parses a seat id into 0-based (row, col).  It fails for ids
// outside the layout.
func (l Layout) Position(id string) (row, col int, err error) {
	if len(id) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeat, id)
	}
	row = int(id[0]) - 'A'
	if row < 0 || row >= l.Rows {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeat, id)
	}
	n, convErr := strconv.Atoi(id[1:])
	if convErr != nil || n < 1 || n > l.Cols || strconv.Itoa(n) != id[1:] {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeat, id)
	}
	return row, n - 1, nil
}

// Valid reports whether id names a seat in the layout.
func (l Layout) Valid(id string) bool {
	_, _, err := l.Position(id)
	return err == nil
}

// SeatIDs lists every seat id in grid order (row-major).
func (l Layout) SeatIDs() []string {
	ids := make([]string, 0, l.Size())
	for r := 0; r < l.Rows; r++ {
		for c := 0; c < l.Cols; c++ {
			ids = append(ids, l.SeatID(r, c))
		}
	}
	return ids
}

// Index returns the row-major index of a seat id, or -1 when the id is
// not in the layout.  It is used to sort seat lists into grid order.
func (l Layout) Index(id string) int {
	r, c, err := l.Position(id)
	if err != nil {
		return -1
	}
	return r*l.Cols + c
}
