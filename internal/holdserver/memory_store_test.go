package holdserver_test

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-seat-booking/internal/holdserver"
    "github.com/iliyamo/cinema-seat-booking/internal/model"
)

type fakeClock struct {
    mu sync.Mutex
    t  time.Time
}

func (c *fakeClock) Now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
    c.mu.Lock()
    c.t = c.t.Add(d)
    c.mu.Unlock()
}

func seqLockIDs() func() (string, error) {
    var mu sync.Mutex
    n := 0
    return func() (string, error) {
        mu.Lock()
        defer mu.Unlock()
        n++
        return fmt.Sprintf("L%d", n), nil
    }
}

func newTestStore(t *testing.T) (*holdserver.MemoryStore, *fakeClock) {
    t.Helper()
    clk := &fakeClock{t: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
    s := holdserver.NewMemoryStore(
        holdserver.WithClock(clk.Now),
        holdserver.WithIDs(seqLockIDs(), func() string { return "B1" }),
    )
    s.AddShow(model.Show{ID: "s1", PriceCents: 1250, Rows: 8, Cols: 12})
    return s, clk
}

func TestMemoryStore_HoldAndAvailability(t *testing.T) {
    s, clk := newTestStore(t)
    ctx := context.Background()

    h, err := s.Hold(ctx, holdserver.HoldRequest{UserID: "u1", ShowID: "s1", SeatIDs: []string{"B3", "A1"}, TTL: time.Minute})
    require.NoError(t, err)
    assert.Equal(t, []string{"L1", "L2"}, h.LockIDs)
    assert.Equal(t, clk.Now().Add(time.Minute), h.ExpiresAt)

    booked, locked, err := s.Availability(ctx, "s1")
    require.NoError(t, err)
    assert.Empty(t, booked)
    assert.Equal(t, []string{"A1", "B3"}, locked)
}

func TestMemoryStore_HoldIsAllOrNothing(t *testing.T) {
    s, _ := newTestStore(t)
    ctx := context.Background()
    require.NoError(t, s.MarkBooked("s1", "A2"))

    _, err := s.Hold(ctx, holdserver.HoldRequest{UserID: "u1", ShowID: "s1", SeatIDs: []string{"A1", "A2", "A3"}, TTL: time.Minute})
    require.Error(t, err)
    assert.True(t, errors.Is(err, holdserver.ErrConflict))
    var ue *holdserver.UnavailableError
    require.True(t, errors.As(err, &ue))
    assert.Equal(t, []string{"A2"}, ue.Seats)

    _, locked, err := s.Availability(ctx, "s1")
    require.NoError(t, err)
    assert.Empty(t, locked, "no seat may stay locked after a failed hold")
}

func TestMemoryStore_HoldConflictsWithOtherLock(t *testing.T) {
    s, _ := newTestStore(t)
    ctx := context.Background()

    _, err := s.Hold(ctx, holdserver.HoldRequest{UserID: "u1", ShowID: "s1", SeatIDs: []string{"C4"}, TTL: time.Minute})
    require.NoError(t, err)
    _, err = s.Hold(ctx, holdserver.HoldRequest{UserID: "u2", ShowID: "s1", SeatIDs: []string{"C4", "C5"}, TTL: time.Minute})
    assert.True(t, errors.Is(err, holdserver.ErrConflict))
}

func TestMemoryStore_LocksExpire(t *testing.T) {
    s, clk := newTestStore(t)
    ctx := context.Background()

    h, err := s.Hold(ctx, holdserver.HoldRequest{UserID: "u1", ShowID: "s1", SeatIDs: []string{"D1"}, TTL: time.Minute})
    require.NoError(t, err)

    clk.Advance(time.Minute)
    _, locked, err := s.Availability(ctx, "s1")
    require.NoError(t, err)
    assert.Empty(t, locked)

    _, err = s.Confirm(ctx, holdserver.ConfirmRequest{UserID: "u1", ShowID: "s1", LockIDs: h.LockIDs, PaymentMethod: "card"})
    assert.ErrorIs(t, err, holdserver.ErrHoldExpired)

    _, err = s.Hold(ctx, holdserver.HoldRequest{UserID: "u2", ShowID: "s1", SeatIDs: []string{"D1"}, TTL: time.Minute})
    assert.NoError(t, err, "an expired seat is free again")
}

func TestMemoryStore_ConfirmConsumesLocksOnce(t *testing.T) {
    s, _ := newTestStore(t)
    ctx := context.Background()

    h, err := s.Hold(ctx, holdserver.HoldRequest{UserID: "u1", ShowID: "s1", SeatIDs: []string{"E5", "E6"}, TTL: time.Minute})
    require.NoError(t, err)

    b, err := s.Confirm(ctx, holdserver.ConfirmRequest{UserID: "u1", ShowID: "s1", LockIDs: h.LockIDs, PaymentMethod: "card"})
    require.NoError(t, err)
    assert.Equal(t, "B1", b.ID)
    assert.Equal(t, []string{"E5", "E6"}, b.SeatIDs)
    assert.Equal(t, int64(2500), b.TotalAmountCents)
    assert.Equal(t, model.BookingConfirmed, b.Status)

    booked, locked, err := s.Availability(ctx, "s1")
    require.NoError(t, err)
    assert.Equal(t, []string{"E5", "E6"}, booked)
    assert.Empty(t, locked)

    _, err = s.Confirm(ctx, holdserver.ConfirmRequest{UserID: "u1", ShowID: "s1", LockIDs: h.LockIDs, PaymentMethod: "card"})
    assert.ErrorIs(t, err, holdserver.ErrHoldExpired)
}

func TestMemoryStore_ConfirmRejectsForeignLock(t *testing.T) {
    s, _ := newTestStore(t)
    ctx := context.Background()

    h, err := s.Hold(ctx, holdserver.HoldRequest{UserID: "u1", ShowID: "s1", SeatIDs: []string{"F1"}, TTL: time.Minute})
    require.NoError(t, err)

    _, err = s.Confirm(ctx, holdserver.ConfirmRequest{UserID: "u2", ShowID: "s1", LockIDs: h.LockIDs, PaymentMethod: "card"})
    assert.ErrorIs(t, err, holdserver.ErrHoldExpired)

    _, err = s.Confirm(ctx, holdserver.ConfirmRequest{UserID: "u1", ShowID: "s1", LockIDs: []string{h.LockIDs[0], h.LockIDs[0]}, PaymentMethod: "card"})
    assert.ErrorIs(t, err, holdserver.ErrInvalidRequest)

    _, locked, err := s.Availability(ctx, "s1")
    require.NoError(t, err)
    assert.Equal(t, []string{"F1"}, locked, "failed confirms change nothing")
}

func TestMemoryStore_Release(t *testing.T) {
    s, _ := newTestStore(t)
    ctx := context.Background()

    h, err := s.Hold(ctx, holdserver.HoldRequest{UserID: "u1", ShowID: "s1", SeatIDs: []string{"G1", "G2"}, TTL: time.Minute})
    require.NoError(t, err)

    n, err := s.Release(ctx, "u2", "s1", h.LockIDs)
    require.NoError(t, err)
    assert.Equal(t, 0, n)

    n, err = s.Release(ctx, "u1", "s1", h.LockIDs)
    require.NoError(t, err)
    assert.Equal(t, 2, n)

    _, locked, err := s.Availability(ctx, "s1")
    require.NoError(t, err)
    assert.Empty(t, locked)
}

func TestMemoryStore_Unbook(t *testing.T) {
    s, _ := newTestStore(t)
    ctx := context.Background()

    h, err := s.Hold(ctx, holdserver.HoldRequest{UserID: "u1", ShowID: "s1", SeatIDs: []string{"F7", "F8"}, TTL: time.Minute})
    require.NoError(t, err)
    b, err := s.Confirm(ctx, holdserver.ConfirmRequest{UserID: "u1", ShowID: "s1", LockIDs: h.LockIDs, PaymentMethod: "card"})
    require.NoError(t, err)

    require.NoError(t, s.Unbook(ctx, "s1", b.SeatIDs))
    booked, _, err := s.Availability(ctx, "s1")
    require.NoError(t, err)
    assert.Empty(t, booked)

    _, err = s.Hold(ctx, holdserver.HoldRequest{UserID: "u2", ShowID: "s1", SeatIDs: []string{"F7"}, TTL: time.Minute})
    assert.NoError(t, err)
    assert.ErrorIs(t, s.Unbook(ctx, "nope", []string{"A1"}), holdserver.ErrShowNotFound)
}

func TestMemoryStore_ConcurrentHoldsNeverOverlap(t *testing.T) {
    s := holdserver.NewMemoryStore()
    s.AddShow(model.Show{ID: "s1", PriceCents: 100, Rows: 8, Cols: 12})
    ctx := context.Background()

    const workers = 20
    var wg sync.WaitGroup
    var mu sync.Mutex
    wins := 0
    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, err := s.Hold(ctx, holdserver.HoldRequest{
                UserID:  fmt.Sprintf("u%d", i),
                ShowID:  "s1",
                SeatIDs: []string{"H1", "H2"},
                TTL:     time.Minute,
            })
            if err == nil {
                mu.Lock()
                wins++
                mu.Unlock()
            }
        }(i)
    }
    wg.Wait()
    assert.Equal(t, 1, wins)
}

func TestMemoryStore_UnknownShow(t *testing.T) {
    s, _ := newTestStore(t)
    _, _, err := s.Availability(context.Background(), "nope")
    assert.ErrorIs(t, err, holdserver.ErrShowNotFound)
    _, err = s.Show(context.Background(), "nope")
    assert.ErrorIs(t, err, holdserver.ErrShowNotFound)
}
