package seatmap

// SeatHandler receives seat clicks by id.  One handler instance serves
// every seat in the grid, so its identity does not change when a poll
// tick or an unrelated state change triggers a re-render.
type SeatHandler interface {
	HandleSeat(id string) error
}

// SeatHandlerFunc adapts a function to SeatHandler.
type SeatHandlerFunc func(id string) error

// HandleSeat calls f(id).
func (f SeatHandlerFunc) HandleSeat(id string) error { return f(id) }

// Dispatcher routes grid positions to a single SeatHandler.
type Dispatcher struct {
	layout  Layout
	handler SeatHandler
}

// NewDispatcher binds a handler to a layout.
func NewDispatcher(l Layout, h SeatHandler) *Dispatcher {
	return &Dispatcher{layout: l, handler: h}
}

// Click dispatches a click on the 0-based (row, col) position.
func (d *Dispatcher) Click(row, col int) error {
	if row < 0 || row >= d.layout.Rows || col < 0 || col >= d.layout.Cols {
		return ErrInvalidSeat
	}
	return d.handler.HandleSeat(d.layout.SeatID(row, col))
}
