package holdserver

import (
    "context"
    "fmt"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/cinema-seat-booking/internal/model"
    "github.com/iliyamo/cinema-seat-booking/internal/seatmap"
)

// memLock is one seat lock held by a user.
type memLock struct {
    id        string
    userID    string
    showID    string
    seatID    string
    expiresAt time.Time
}

// MemoryStore keeps all seat state in process.  A single mutex makes every
// hold and confirm atomic.  It backs development servers and tests.
type MemoryStore struct {
    mu        sync.Mutex
    now       func() time.Time
    newLockID func() (string, error)
    newBookID func() string

    shows     map[string]*model.Show
    booked    map[string]map[string]struct{} // show -> seat
    seatLocks map[string]map[string]string   // show -> seat -> lock id
    locks     map[string]*memLock            // lock id -> lock
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now for lock expiry.
func WithClock(now func() time.Time) MemoryOption {
    return func(s *MemoryStore) { s.now = now }
}

// WithIDs replaces the lock and booking id generators.
func WithIDs(lockID func() (string, error), bookingID func() string) MemoryOption {
    return func(s *MemoryStore) {
        if lockID != nil {
            s.newLockID = lockID
        }
        if bookingID != nil {
            s.newBookID = bookingID
        }
    }
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
    s := &MemoryStore{
        now:       time.Now,
        newLockID: defaultLockID,
        newBookID: uuid.NewString,
        shows:     make(map[string]*model.Show),
        booked:    make(map[string]map[string]struct{}),
        seatLocks: make(map[string]map[string]string),
        locks:     make(map[string]*memLock),
    }
    for _, opt := range opts {
        opt(s)
    }
    return s
}

// AddShow registers a show.  Seats start out free.
func (s *MemoryStore) AddShow(show model.Show) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sh := show
    s.shows[sh.ID] = &sh
    if s.booked[sh.ID] == nil {
        s.booked[sh.ID] = make(map[string]struct{})
    }
    if s.seatLocks[sh.ID] == nil {
        s.seatLocks[sh.ID] = make(map[string]string)
    }
}

// MarkBooked books seats directly, bypassing the hold protocol.  It is
// used to seed fixtures.
func (s *MemoryStore) MarkBooked(showID string, seatIDs ...string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.shows[showID]; !ok {
        return ErrShowNotFound
    }
    for _, id := range seatIDs {
        s.booked[showID][id] = struct{}{}
    }
    return nil
}

// Show implements Store.
func (s *MemoryStore) Show(_ context.Context, showID string) (*model.Show, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sh, ok := s.shows[showID]
    if !ok {
        return nil, ErrShowNotFound
    }
    out := *sh
    return &out, nil
}

// expireLocked drops every lock of showID whose expiry is not after now.
// The caller must hold s.mu.
func (s *MemoryStore) expireLocked(showID string, now time.Time) {
    for seat, lockID := range s.seatLocks[showID] {
        l := s.locks[lockID]
        if l == nil || !l.expiresAt.After(now) {
            delete(s.seatLocks[showID], seat)
            delete(s.locks, lockID)
        }
    }
}

// Availability implements Store.
func (s *MemoryStore) Availability(_ context.Context, showID string) ([]string, []string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sh, ok := s.shows[showID]
    if !ok {
        return nil, nil, ErrShowNotFound
    }
    s.expireLocked(showID, s.now())
    layout := seatmap.NewLayout(sh.Rows, sh.Cols)
    booked := make([]string, 0, len(s.booked[showID]))
    for id := range s.booked[showID] {
        booked = append(booked, id)
    }
    locked := make([]string, 0, len(s.seatLocks[showID]))
    for id := range s.seatLocks[showID] {
        locked = append(locked, id)
    }
    sortGrid(layout, booked)
    sortGrid(layout, locked)
    return booked, locked, nil
}

// Hold implements Store.
func (s *MemoryStore) Hold(_ context.Context, req HoldRequest) (*model.Hold, error) {
    if len(req.SeatIDs) == 0 || req.TTL <= 0 {
        return nil, ErrInvalidRequest
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.shows[req.ShowID]; !ok {
        return nil, ErrShowNotFound
    }
    now := s.now()
    s.expireLocked(req.ShowID, now)

    var unavailable []string
    for _, seat := range req.SeatIDs {
        _, booked := s.booked[req.ShowID][seat]
        _, locked := s.seatLocks[req.ShowID][seat]
        if booked || locked {
            unavailable = append(unavailable, seat)
        }
    }
    if len(unavailable) > 0 {
        return nil, &UnavailableError{Seats: unavailable}
    }

    ids, err := newLockIDs(s.newLockID, len(req.SeatIDs))
    if err != nil {
        return nil, fmt.Errorf("generate lock ids: %w", err)
    }
    expiresAt := now.Add(req.TTL)
    for i, seat := range req.SeatIDs {
        s.locks[ids[i]] = &memLock{
            id:        ids[i],
            userID:    req.UserID,
            showID:    req.ShowID,
            seatID:    seat,
            expiresAt: expiresAt,
        }
        s.seatLocks[req.ShowID][seat] = ids[i]
    }
    return &model.Hold{ShowID: req.ShowID, LockIDs: ids, ExpiresAt: expiresAt}, nil
}

// Confirm implements Store.
func (s *MemoryStore) Confirm(_ context.Context, req ConfirmRequest) (*model.Booking, error) {
    if len(req.LockIDs) == 0 {
        return nil, ErrInvalidRequest
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    sh, ok := s.shows[req.ShowID]
    if !ok {
        return nil, ErrShowNotFound
    }
    now := s.now()
    s.expireLocked(req.ShowID, now)

    seen := make(map[string]struct{}, len(req.LockIDs))
    seats := make([]string, 0, len(req.LockIDs))
    for _, id := range req.LockIDs {
        if _, dup := seen[id]; dup {
            return nil, ErrInvalidRequest
        }
        seen[id] = struct{}{}
        l := s.locks[id]
        if l == nil || l.userID != req.UserID || l.showID != req.ShowID {
            return nil, ErrHoldExpired
        }
        seats = append(seats, l.seatID)
    }

    for i, id := range req.LockIDs {
        delete(s.locks, id)
        delete(s.seatLocks[req.ShowID], seats[i])
        s.booked[req.ShowID][seats[i]] = struct{}{}
    }
    return &model.Booking{
        ID:               s.newBookID(),
        UserID:           req.UserID,
        ShowID:           req.ShowID,
        SeatIDs:          seats,
        PaymentMethod:    req.PaymentMethod,
        TotalAmountCents: sh.PriceCents * int64(len(seats)),
        Status:           model.BookingConfirmed,
        CreatedAt:        now.UTC(),
    }, nil
}

// Release implements Store.  Locks that are unknown or owned by someone
// else are skipped.
func (s *MemoryStore) Release(_ context.Context, userID, showID string, lockIDs []string) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.shows[showID]; !ok {
        return 0, ErrShowNotFound
    }
    n := 0
    for _, id := range lockIDs {
        l := s.locks[id]
        if l == nil || l.userID != userID || l.showID != showID {
            continue
        }
        delete(s.locks, id)
        delete(s.seatLocks[showID], l.seatID)
        n++
    }
    return n, nil
}

// Unbook implements Store.
func (s *MemoryStore) Unbook(_ context.Context, showID string, seatIDs []string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.shows[showID]; !ok {
        return ErrShowNotFound
    }
    for _, id := range seatIDs {
        delete(s.booked[showID], id)
    }
    return nil
}

func sortGrid(l seatmap.Layout, ids []string) {
    sort.Slice(ids, func(i, j int) bool { return l.Index(ids[i]) < l.Index(ids[j]) })
}
