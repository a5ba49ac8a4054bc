package seatmap

import (
	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// Cell is one rendered seat.
type Cell struct {
	ID     string
	Row    int
	Col    int
	Status model.SeatStatus
}

// Grid is a fully derived seat map: Cells[row][col].
type Grid struct {
	Layout Layout
	Cells  [][]Cell
}

// StatusOf derives the status of a single seat.  Booked wins over locked,
// locked wins over selected: a seat the user picked that another session
// has since taken must show as unavailable.
func StatusOf(id string, selected map[string]struct{}, snap *model.Availability) model.SeatStatus {
	switch st := snap.Status(id); st {
	case model.SeatBooked, model.SeatLocked:
		return st
	}
	if _, ok := selected[id]; ok {
		return model.SeatSelected
	}
	return model.SeatAvailable
}

// Statuses derives the status of every seat in the layout.
func Statuses(l Layout, selected []string, snap *model.Availability) map[string]model.SeatStatus {
	sel := toSet(selected)
	out := make(map[string]model.SeatStatus, l.Size())
	for _, id := range l.SeatIDs() {
		out[id] = StatusOf(id, sel, snap)
	}
	return out
}

// Render builds the grid for the layout.
func Render(l Layout, selected []string, snap *model.Availability) Grid {
	sel := toSet(selected)
	g := Grid{Layout: l, Cells: make([][]Cell, l.Rows)}
	for r := 0; r < l.Rows; r++ {
		row := make([]Cell, l.Cols)
		for c := 0; c < l.Cols; c++ {
			id := l.SeatID(r, c)
			row[c] = Cell{ID: id, Row: r, Col: c, Status: StatusOf(id, sel, snap)}
		}
		g.Cells[r] = row
	}
	return g
}

// Diff returns, in grid order, the seats whose status differs between two
// derived status maps.  A renderer redraws only these seats after a poll
// tick or a selection change.
func Diff(l Layout, prev, next map[string]model.SeatStatus) []string {
	var changed []string
	for _, id := range l.SeatIDs() {
		if prev[id] != next[id] {
			changed = append(changed, id)
		}
	}
	return changed
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
