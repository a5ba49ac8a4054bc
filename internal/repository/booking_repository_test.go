package repository

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-seat-booking/internal/model"
)

func TestSeatsInsert(t *testing.T) {
    q, args := seatsInsert("b1", "s1", []string{"A1", "A2", "B7"})
    assert.Equal(t, "INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES (?, ?, ?),(?, ?, ?),(?, ?, ?)", q)
    assert.Equal(t, []interface{}{"b1", "s1", "A1", "b1", "s1", "A2", "b1", "s1", "B7"}, args)

    q, args = seatsInsert("b2", "s1", []string{"H12"})
    assert.Equal(t, "INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES (?, ?, ?)", q)
    assert.Len(t, args, 3)
}

func TestMemoryBookingRepo(t *testing.T) {
    ctx := context.Background()
    repo := NewMemoryBookingRepo()
    b := &model.Booking{
        ID:               "b1",
        UserID:           "u1",
        ShowID:           "s1",
        SeatIDs:          []string{"A1", "A2"},
        PaymentMethod:    "card",
        TotalAmountCents: 2500,
        Status:           model.BookingConfirmed,
        CreatedAt:        time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
    }
    require.NoError(t, repo.Create(ctx, b))
    assert.ErrorIs(t, repo.Create(ctx, b), ErrDuplicateBooking)

    b.SeatIDs[0] = "Z9"
    got, err := repo.GetByID(ctx, "b1")
    require.NoError(t, err)
    assert.Equal(t, []string{"A1", "A2"}, got.SeatIDs, "stored booking is a copy")
    assert.Equal(t, int64(2500), got.TotalAmountCents)

    _, err = repo.GetByID(ctx, "missing")
    assert.ErrorIs(t, err, ErrBookingNotFound)
}
