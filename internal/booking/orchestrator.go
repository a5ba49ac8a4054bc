// Package booking sequences one seat-booking session: it owns the
// selection, drives the availability poller, and runs the hold -> confirm
// protocol.  At most one booking attempt runs at a time, and the poller
// is always stopped while an attempt is in flight.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/reservation"
	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
	"github.com/iliyamo/cinema-seat-booking/internal/selection"
)

// State is the orchestrator's position in a booking attempt.
type State int

const (
	Idle State = iota
	Submitting
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// LoginPath is where the UI sends a user without a session.
const LoginPath = "/login"

// ConfirmationPath returns the navigation target for a booking.
func ConfirmationPath(bookingID string) string {
	return "/booking-confirmation/" + bookingID
}

// Reserver is the backend surface used by the orchestrator.
// reservation.Client satisfies it.
type Reserver interface {
	Show(ctx context.Context, showID string) (*model.Show, error)
	Hold(ctx context.Context, showID string, seatIDs []string) (*model.Hold, error)
	Confirm(ctx context.Context, showID string, lockIDs []string, paymentMethod string) (string, error)
}

// Session answers whether a user is logged in.  auth.Session satisfies it.
type Session interface {
	Authenticated() bool
}

// Poller keeps the availability snapshot fresh.  availability.Poller
// satisfies it.
type Poller interface {
	Start(ctx context.Context, showID string)
	Stop()
	Refresh(ctx context.Context) error
	Snapshot() *model.Availability
}

// Result is the outcome of a Submit call.
type Result struct {
	State     State
	BookingID string
	Navigate  string
}

// Orchestrator glues user input, the selection store, the reservation
// client and the poller together for one seat view.  It implements
// seatmap.SeatHandler so a single value can back every seat of the grid.
type Orchestrator struct {
	res      Reserver
	session  Session
	sel      *selection.Store
	poller   Poller
	log      *slog.Logger
	listener func(Event)

	busy atomic.Bool

	mu      sync.Mutex
	viewCtx context.Context
	show    *model.Show
	layout  seatmap.Layout
	state   State
	lastErr string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithListener registers fn to receive events.  fn is called
// synchronously from the goroutine that caused the event.
func WithListener(fn func(Event)) Option {
	return func(o *Orchestrator) { o.listener = fn }
}

// New wires an orchestrator.  The selection store is owned by the caller
// and may outlive a single view so a user can come back to the same show.
func New(res Reserver, session Session, sel *selection.Store, poller Poller, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		res:     res,
		session: session,
		sel:     sel,
		poller:  poller,
		log:     slog.Default(),
		layout:  seatmap.DefaultLayout(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Mount loads showID, scopes the selection to it and starts polling.  ctx
// bounds the life of the view: the poller stops when it is cancelled.
// Mounting another show while mounted switches to it.  Mount fails with
// ErrBusy while a booking attempt is in flight, and Submit fails with
// ErrBusy while a mount is loading.
func (o *Orchestrator) Mount(ctx context.Context, showID string) error {
	if !o.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.busy.Store(false)

	sh, err := o.res.Show(ctx, showID)
	if err != nil {
		return err
	}
	o.poller.Stop()

	o.mu.Lock()
	o.viewCtx = ctx
	o.show = sh
	o.layout = seatmap.NewLayout(sh.Rows, sh.Cols)
	o.state = Idle
	o.lastErr = ""
	o.sel.Init(showID)
	o.mu.Unlock()

	o.poller.Start(ctx, showID)
	o.log.Info("seat view mounted", "component", "booking", "show_id", showID)
	return nil
}

// Unmount stops polling.  The selection is kept.
func (o *Orchestrator) Unmount() {
	o.poller.Stop()
	o.mu.Lock()
	o.show = nil
	o.viewCtx = nil
	o.mu.Unlock()
}

// Refresh fetches availability right away.  It fails with ErrBusy while a
// booking attempt is in flight so the poller stays quiet around it.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	if o.busy.Load() {
		return ErrBusy
	}
	if o.Show() == nil {
		return ErrNotMounted
	}
	return o.poller.Refresh(ctx)
}

// Busy reports whether a booking attempt is in flight.
func (o *Orchestrator) Busy() bool { return o.busy.Load() }

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Show returns the mounted show, or nil.
func (o *Orchestrator) Show() *model.Show {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.show
}

// Layout returns the seat grid of the mounted show.
func (o *Orchestrator) Layout() seatmap.Layout {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.layout
}

// HandleSeat toggles seatID in the selection.  Seats that are booked or
// locked by someone else cannot be added, but a selected seat can always
// be removed.  Input is rejected while a booking attempt is in flight.
func (o *Orchestrator) HandleSeat(seatID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy.Load() {
		return ErrBusy
	}
	if o.show == nil {
		return ErrNotMounted
	}
	if !o.layout.Valid(seatID) {
		return ErrUnknownSeat
	}
	if !o.sel.Contains(seatID) && !o.poller.Snapshot().Status(seatID).Selectable() {
		return ErrSeatUnavailable
	}
	if o.sel.Toggle(seatID, o.show.PriceCents) == selection.Rejected {
		return ErrSelectionFull
	}
	return nil
}

// Submit runs one booking attempt with the current selection: hold every
// selected seat, then confirm the hold with paymentMethod.  Local
// validation failures return before any network call.  A hold conflict
// triggers an immediate availability refresh.  On any failure the poller
// is restarted and the orchestrator returns to Idle with the selection
// untouched.  On success the poller stays stopped and the result carries
// the confirmation page to navigate to.
func (o *Orchestrator) Submit(ctx context.Context, paymentMethod string) (Result, error) {
	o.mu.Lock()
	if o.show == nil {
		o.mu.Unlock()
		return Result{State: o.State()}, ErrNotMounted
	}
	if !o.busy.CompareAndSwap(false, true) {
		o.mu.Unlock()
		return Result{State: Submitting}, ErrBusy
	}
	defer o.busy.Store(false)
	show := o.show
	viewCtx := o.viewCtx
	seats := o.sel.SelectedSeats()
	o.mu.Unlock()

	if len(seats) == 0 {
		return Result{State: Idle}, ErrNoSeats
	}
	if o.session == nil || !o.session.Authenticated() {
		o.emit(Event{Kind: EventLoginRequired, Message: ErrLoginRequired.Msg, Navigate: LoginPath})
		return Result{State: Idle, Navigate: LoginPath}, ErrLoginRequired
	}

	o.setState(Submitting, "")
	o.emit(Event{Kind: EventSubmitting, SeatIDs: seats})
	o.poller.Stop()
	o.log.Info("booking attempt started", "component", "booking", "show_id", show.ID, "seat_ids", seats)

	hold, err := o.res.Hold(ctx, show.ID, seats)
	if err != nil {
		return o.fail(ctx, viewCtx, show.ID, seats, "hold", err), err
	}
	bookingID, err := o.res.Confirm(ctx, show.ID, hold.LockIDs, paymentMethod)
	if err != nil {
		return o.fail(ctx, viewCtx, show.ID, seats, "confirm", err), err
	}

	nav := ConfirmationPath(bookingID)
	o.setState(Completed, "")
	o.log.Info("booking completed", "component", "booking", "show_id", show.ID, "booking_id", bookingID, "seat_ids", seats)
	o.emit(Event{Kind: EventCompleted, BookingID: bookingID, SeatIDs: seats, Navigate: nav})
	return Result{State: Completed, BookingID: bookingID, Navigate: nav}, nil
}

// fail surfaces a failed attempt and returns the orchestrator to Idle.
func (o *Orchestrator) fail(ctx, viewCtx context.Context, showID string, seats []string, phase string, err error) Result {
	ev := Event{SeatIDs: seats}
	switch {
	case errors.Is(err, reservation.ErrConflict):
		ev.Kind = EventConflict
		ev.Message = reservation.ErrConflict.Error()
		var ce *reservation.ConflictError
		if errors.As(err, &ce) {
			ev.Unavailable = ce.Unavailable
		}
	case errors.Is(err, reservation.ErrUnauthenticated):
		ev.Kind = EventLoginRequired
		ev.Message = ErrLoginRequired.Msg
		ev.Navigate = LoginPath
	default:
		ev.Kind = EventFailure
		ev.Message = failureMessage(err)
	}
	o.setState(Failed, ev.Message)
	o.log.Warn("booking attempt failed", "component", "booking", "show_id", showID, "phase", phase, "seat_ids", seats, "error", err)
	o.emit(ev)

	if ev.Kind == EventConflict {
		if rerr := o.poller.Refresh(ctx); rerr != nil {
			o.log.Warn("availability refresh failed", "component", "booking", "show_id", showID, "error", rerr)
		}
	}
	if cur := o.Show(); cur != nil && cur.ID == showID && viewCtx != nil && viewCtx.Err() == nil {
		o.poller.Start(viewCtx, showID)
	}
	o.setState(Idle, ev.Message)
	return Result{State: Failed, Navigate: ev.Navigate}
}

func failureMessage(err error) string {
	var se *reservation.ServerError
	if errors.As(err, &se) && se.Message != "" {
		return "Booking failed: " + se.Message
	}
	return "Booking failed"
}

func (o *Orchestrator) setState(s State, msg string) {
	o.mu.Lock()
	o.state = s
	o.lastErr = msg
	o.mu.Unlock()
}

func (o *Orchestrator) emit(ev Event) {
	if o.listener != nil {
		o.listener(ev)
	}
}
