package reservation_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-booking/internal/auth"
	"github.com/iliyamo/cinema-seat-booking/internal/holdserver"
	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/reservation"
)

const secret = "client-test-secret"

func newBackend(t *testing.T) (*httptest.Server, *holdserver.MemoryStore) {
	t.Helper()
	store := holdserver.NewMemoryStore()
	store.AddShow(model.Show{ID: "s1", MovieID: "m1", PriceCents: 1250, Rows: 8, Cols: 12})
	srv := httptest.NewServer(holdserver.NewServer(holdserver.NewHandler(store, time.Minute, nil), secret))
	t.Cleanup(srv.Close)
	return srv, store
}

func session(t *testing.T, user string) *auth.Session {
	t.Helper()
	tok, err := auth.NewAccessToken(secret, user, time.Hour)
	require.NoError(t, err)
	return auth.NewSession(tok.Token)
}

func TestClient_ShowAndAvailability(t *testing.T) {
	srv, store := newBackend(t)
	require.NoError(t, store.MarkBooked("s1", "A1"))
	c := reservation.NewClient(srv.URL, auth.NewSession(""))
	ctx := context.Background()

	sh, err := c.Show(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sh.PriceCents)
	assert.Equal(t, 12, sh.Cols)

	snap, err := c.Availability(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.IsBooked("A1"))
	assert.False(t, snap.IsLocked("A1"))
	assert.Equal(t, "s1", snap.ShowID)
}

func TestClient_HoldThenConfirm(t *testing.T) {
	srv, _ := newBackend(t)
	c := reservation.NewClient(srv.URL, session(t, "u1"))
	ctx := context.Background()

	h, err := c.Hold(ctx, "s1", []string{"B1", "B2"})
	require.NoError(t, err)
	require.Len(t, h.LockIDs, 2)
	assert.False(t, h.ExpiresAt.IsZero())

	snap, err := c.Availability(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.IsLocked("B1"))

	id, err := c.Confirm(ctx, "s1", h.LockIDs, "card")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	snap, err = c.Availability(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.IsBooked("B2"))
}

func TestClient_Booking(t *testing.T) {
	srv, _ := newBackend(t)
	c := reservation.NewClient(srv.URL, session(t, "u1"))
	ctx := context.Background()

	h, err := c.Hold(ctx, "s1", []string{"C1", "C2"})
	require.NoError(t, err)
	id, err := c.Confirm(ctx, "s1", h.LockIDs, "card")
	require.NoError(t, err)

	b, err := c.Booking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, []string{"C1", "C2"}, b.SeatIDs)
	assert.Equal(t, int64(2500), b.TotalAmountCents)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.False(t, b.CreatedAt.IsZero())

	_, err = reservation.NewClient(srv.URL, session(t, "u2")).Booking(ctx, id)
	var se *reservation.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
}

func TestClient_HoldConflict(t *testing.T) {
	srv, store := newBackend(t)
	require.NoError(t, store.MarkBooked("s1", "C2"))
	c := reservation.NewClient(srv.URL, session(t, "u1"))

	_, err := c.Hold(context.Background(), "s1", []string{"C1", "C2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, reservation.ErrConflict)
	var ce *reservation.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"C2"}, ce.Unavailable)
}

func TestClient_ConfirmTwiceIsServerError(t *testing.T) {
	srv, _ := newBackend(t)
	c := reservation.NewClient(srv.URL, session(t, "u1"))
	ctx := context.Background()

	h, err := c.Hold(ctx, "s1", []string{"D1"})
	require.NoError(t, err)
	_, err = c.Confirm(ctx, "s1", h.LockIDs, "card")
	require.NoError(t, err)

	_, err = c.Confirm(ctx, "s1", h.LockIDs, "card")
	require.Error(t, err)
	assert.True(t, reservation.IsServerError(err))
	assert.False(t, errors.Is(err, reservation.ErrConflict))
	var se *reservation.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.Status)
}

func TestClient_Unauthenticated(t *testing.T) {
	srv, _ := newBackend(t)
	ctx := context.Background()

	c := reservation.NewClient(srv.URL, auth.NewSession(""))
	_, err := c.Hold(ctx, "s1", []string{"E1"})
	assert.ErrorIs(t, err, reservation.ErrUnauthenticated)

	forged, err := auth.NewAccessToken("other-secret", "u1", time.Hour)
	require.NoError(t, err)
	c = reservation.NewClient(srv.URL, auth.NewSession(forged.Token))
	_, err = c.Hold(ctx, "s1", []string{"E1"})
	assert.ErrorIs(t, err, reservation.ErrUnauthenticated)
}

func TestClient_HoldSeatCountBounds(t *testing.T) {
	c := reservation.NewClient("http://127.0.0.1:1", nil)
	_, err := c.Hold(context.Background(), "s1", nil)
	assert.True(t, reservation.IsServerError(err))

	many := make([]string, reservation.MaxHoldSeats+1)
	_, err = c.Hold(context.Background(), "s1", many)
	assert.True(t, reservation.IsServerError(err))
}

func TestClient_TransportFailureIsServerError(t *testing.T) {
	srv, _ := newBackend(t)
	url := srv.URL
	srv.Close()

	c := reservation.NewClient(url, nil, reservation.WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.Availability(context.Background(), "s1")
	require.Error(t, err)
	var se *reservation.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.Status)
}

func TestClient_UnknownShow(t *testing.T) {
	srv, _ := newBackend(t)
	c := reservation.NewClient(srv.URL, nil)
	_, err := c.Show(context.Background(), "missing")
	var se *reservation.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
}
