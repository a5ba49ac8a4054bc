package repository

import (
    "context"
    "sync"

    "github.com/iliyamo/cinema-seat-booking/internal/model"
)

// MemoryBookingRepo keeps bookings in process.  It backs servers started
// without MySQL so confirmations can still be looked up until restart.
type MemoryBookingRepo struct {
    mu       sync.RWMutex
    bookings map[string]model.Booking
}

// NewMemoryBookingRepo returns an empty MemoryBookingRepo.
func NewMemoryBookingRepo() *MemoryBookingRepo {
    return &MemoryBookingRepo{bookings: make(map[string]model.Booking)}
}

// Create stores a copy of b.  A second booking with the same id is
// rejected with ErrDuplicateBooking.
func (r *MemoryBookingRepo) Create(_ context.Context, b *model.Booking) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    if _, ok := r.bookings[b.ID]; ok {
        return ErrDuplicateBooking
    }
    cp := *b
    cp.SeatIDs = append([]string(nil), b.SeatIDs...)
    r.bookings[b.ID] = cp
    return nil
}

// GetByID returns a copy of the booking or ErrBookingNotFound.
func (r *MemoryBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    b, ok := r.bookings[id]
    if !ok {
        return nil, ErrBookingNotFound
    }
    b.SeatIDs = append([]string(nil), b.SeatIDs...)
    return &b, nil
}
