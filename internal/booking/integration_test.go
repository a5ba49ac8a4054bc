package booking_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-booking/internal/auth"
	"github.com/iliyamo/cinema-seat-booking/internal/availability"
	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/holdserver"
	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/reservation"
	"github.com/iliyamo/cinema-seat-booking/internal/selection"
)

const e2eSecret = "e2e-secret"

type e2e struct {
	store  *holdserver.MemoryStore
	url    string
	orch   *booking.Orchestrator
	poller *availability.Poller
	sel    *selection.Store
}

func newE2E(t *testing.T, user string) *e2e {
	t.Helper()
	store := holdserver.NewMemoryStore()
	store.AddShow(model.Show{ID: "show1", PriceCents: 25000, Rows: 8, Cols: 12})
	srv := httptest.NewServer(holdserver.NewServer(holdserver.NewHandler(store, time.Minute, nil), e2eSecret))
	t.Cleanup(srv.Close)
	return newE2EClient(t, store, srv.URL, user)
}

func newE2EClient(t *testing.T, store *holdserver.MemoryStore, url, user string) *e2e {
	t.Helper()
	tok, err := auth.NewAccessToken(e2eSecret, user, time.Hour)
	require.NoError(t, err)
	sess := auth.NewSession(tok.Token)
	client := reservation.NewClient(url, sess)
	poller := availability.New(client, availability.WithInterval(10*time.Millisecond))
	sel := selection.New()
	orch := booking.New(client, sess, sel, poller)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		orch.Unmount()
		cancel()
	})
	require.NoError(t, orch.Mount(ctx, "show1"))
	require.Eventually(t, func() bool { return poller.Snapshot() != nil }, time.Second, time.Millisecond)
	return &e2e{store: store, url: url, orch: orch, poller: poller, sel: sel}
}

func TestEndToEnd_BookSeats(t *testing.T) {
	e := newE2E(t, "u1")
	require.NoError(t, e.orch.HandleSeat("A1"))
	require.NoError(t, e.orch.HandleSeat("A2"))

	res, err := e.orch.Submit(context.Background(), "card")
	require.NoError(t, err)
	assert.Equal(t, booking.Completed, res.State)
	assert.Equal(t, booking.ConfirmationPath(res.BookingID), res.Navigate)
	assert.False(t, e.poller.Running())

	booked, _, err := e.store.Availability(context.Background(), "show1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, booked)
}

func TestEndToEnd_ConflictRefreshesMap(t *testing.T) {
	e := newE2E(t, "u1")
	require.NoError(t, e.orch.HandleSeat("A1"))
	require.NoError(t, e.orch.HandleSeat("A2"))

	// another session books A1 after our map was rendered
	require.NoError(t, e.store.MarkBooked("show1", "A1"))

	res, err := e.orch.Submit(context.Background(), "card")
	assert.ErrorIs(t, err, reservation.ErrConflict)
	assert.Equal(t, booking.Failed, res.State)
	assert.Equal(t, booking.Idle, e.orch.State())
	assert.True(t, e.poller.Running())
	assert.True(t, e.poller.Snapshot().IsBooked("A1"), "refresh happens before Submit returns")

	_, locked, err := e.store.Availability(context.Background(), "show1")
	require.NoError(t, err)
	assert.Empty(t, locked, "a failed hold locks nothing")
	assert.Equal(t, []string{"A1", "A2"}, e.sel.SelectedSeats())
}

func TestEndToEnd_TwoSessionsRaceForSameSeat(t *testing.T) {
	first := newE2E(t, "u1")
	second := newE2EClient(t, first.store, first.url, "u2")

	require.NoError(t, first.orch.HandleSeat("D4"))
	require.NoError(t, second.orch.HandleSeat("D4"))

	_, err := first.orch.Submit(context.Background(), "card")
	require.NoError(t, err)
	_, err = second.orch.Submit(context.Background(), "card")
	assert.ErrorIs(t, err, reservation.ErrConflict)
}
