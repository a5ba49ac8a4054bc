// Package selection holds the seats the current user intends to book for
// the show being viewed.  A Store is created per booking flow and passed
// to whoever drives it; there is no package-level instance.
package selection

import "sync"

// MaxSeats is the hard ceiling on selected seats per booking.
const MaxSeats = 10

// ToggleResult reports what a Toggle call did.
type ToggleResult int

const (
	// Added means the seat was appended to the selection.
	Added ToggleResult = iota
	// Removed means the seat was already selected and has been dropped.
	Removed
	// Rejected means the seat was not selected and the store is full.
	Rejected
)

func (r ToggleResult) String() string {
	switch r {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "rejected"
	}
}

// Store is the selection state machine for one show at a time.  Seats are
// kept in click order with no duplicates.  The total is derived from the
// seat count and the per-seat price instead of being accumulated, so the
// two cannot drift apart.
//
// Store is safe for concurrent use, though a booking flow has a single
// writer.
type Store struct {
	mu         sync.RWMutex
	showID     string
	seats      []string
	priceCents int64
	limit      int
}

// Option configures a Store.
type Option func(*Store)

// WithLimit overrides MaxSeats.  Values outside 1..MaxSeats are ignored;
// the ceiling can be lowered, never raised.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 && n <= MaxSeats {
			s.limit = n
		}
	}
}

// New returns an empty Store with no show.
func New(opts ...Option) *Store {
	s := &Store{limit: MaxSeats}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init binds the store to showID.  Switching to a different show clears
// the selection; calling it again with the current show is a no-op.
func (s *Store) Init(showID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.showID == showID {
		return
	}
	s.showID = showID
	s.seats = nil
	s.priceCents = 0
}

// Toggle removes seatID when it is selected and appends it otherwise.  An
// add at the ceiling is rejected and leaves the store untouched.
func (s *Store) Toggle(seatID string, priceCents int64) ToggleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range s.seats {
		if id == seatID {
			s.seats = append(s.seats[:i:i], s.seats[i+1:]...)
			s.priceCents = priceCents
			return Removed
		}
	}
	if len(s.seats) >= s.limit {
		return Rejected
	}
	s.seats = append(s.seats, seatID)
	s.priceCents = priceCents
	return Added
}

// Contains reports whether seatID is selected.
func (s *Store) Contains(seatID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.seats {
		if id == seatID {
			return true
		}
	}
	return false
}

// Full reports whether another add would be rejected.
func (s *Store) Full() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seats) >= s.limit
}

// Clear empties the selection and zeroes the total.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats = nil
	s.priceCents = 0
}

// ShowID returns the show the store is bound to.
func (s *Store) ShowID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showID
}

// SelectedSeats returns a copy of the selection in click order.
func (s *Store) SelectedSeats() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.seats))
	copy(out, s.seats)
	return out
}

// Len is the number of selected seats.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seats)
}

// TotalPrice returns len(selected) * price per seat, in minor units.
func (s *Store) TotalPrice() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.seats)) * s.priceCents
}
