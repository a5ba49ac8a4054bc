package booking

// EventKind classifies orchestrator events.
type EventKind int

const (
	// EventSubmitting fires when an attempt leaves Idle.
	EventSubmitting EventKind = iota
	// EventConflict fires when the hold is rejected because seats are taken.
	EventConflict
	// EventFailure fires for any other failed attempt.
	EventFailure
	// EventCompleted fires after a successful confirm.  Navigate is the
	// confirmation page.
	EventCompleted
	// EventLoginRequired fires when there is no usable session.  Navigate
	// is the login page.
	EventLoginRequired
)

func (k EventKind) String() string {
	switch k {
	case EventSubmitting:
		return "submitting"
	case EventConflict:
		return "conflict"
	case EventFailure:
		return "failure"
	case EventCompleted:
		return "completed"
	case EventLoginRequired:
		return "login_required"
	}
	return "unknown"
}

// Event is a user-visible outcome of a booking attempt.
type Event struct {
	Kind        EventKind
	Message     string
	BookingID   string
	SeatIDs     []string
	Unavailable []string
	Navigate    string
}
