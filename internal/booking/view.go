package booking

import (
	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
)

// View is a consistent read model for a renderer.
type View struct {
	Show       *model.Show
	Layout     seatmap.Layout
	Grid       seatmap.Grid
	Statuses   map[string]model.SeatStatus
	Selected   []string
	TotalCents int64
	Busy       bool
	State      State
	LastError  string
}

// View snapshots everything the UI renders.  Statuses come from the
// current selection over the latest availability snapshot.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := o.poller.Snapshot()
	selected := o.sel.SelectedSeats()
	return View{
		Show:       o.show,
		Layout:     o.layout,
		Grid:       seatmap.Render(o.layout, selected, snap),
		Statuses:   seatmap.Statuses(o.layout, selected, snap),
		Selected:   selected,
		TotalCents: o.sel.TotalPrice(),
		Busy:       o.busy.Load(),
		State:      o.state,
		LastError:  o.lastErr,
	}
}
