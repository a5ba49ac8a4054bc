package holdserver

import (
    "context"
    "crypto/rand"
    "encoding/hex"
    "time"

    "github.com/iliyamo/cinema-seat-booking/internal/model"
)

// Store is the authoritative seat state of every show.
type Store interface {
    // Show returns the show record or ErrShowNotFound.
    Show(ctx context.Context, showID string) (*model.Show, error)
    // Availability returns the booked and locked seats of a show in grid
    // order.  Expired locks are not reported.
    Availability(ctx context.Context, showID string) (booked, locked []string, err error)
    // Hold atomically locks every seat in req or none of them.
    Hold(ctx context.Context, req HoldRequest) (*model.Hold, error)
    // Confirm consumes the locks in req and books their seats.
    Confirm(ctx context.Context, req ConfirmRequest) (*model.Booking, error)
    // Release drops the caller's locks and returns how many were removed.
    Release(ctx context.Context, userID, showID string, lockIDs []string) (int, error)
    // Unbook returns booked seats to the available pool.  It undoes a
    // Confirm whose booking could not be recorded.
    Unbook(ctx context.Context, showID string, seatIDs []string) error
}

// HoldRequest asks for a hold on SeatIDs for TTL.  SeatIDs are validated
// and deduplicated by the caller.
type HoldRequest struct {
    UserID  string
    ShowID  string
    SeatIDs []string
    TTL     time.Duration
}

// ConfirmRequest consumes LockIDs, which must all belong to UserID and
// ShowID and be unexpired.
type ConfirmRequest struct {
    UserID        string
    ShowID        string
    LockIDs       []string
    PaymentMethod string
}

// randomToken returns a hex string built from n random bytes.  It is used
// for lock ids.
func randomToken(n int) (string, error) {
    b := make([]byte, n)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    return hex.EncodeToString(b), nil
}

// newLockIDs returns one fresh lock id per seat.
func newLockIDs(gen func() (string, error), n int) ([]string, error) {
    ids := make([]string, 0, n)
    for i := 0; i < n; i++ {
        id, err := gen()
        if err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    return ids, nil
}

func defaultLockID() (string, error) { return randomToken(16) }
