package holdserver

import (
    "context"
    "errors"
    "log/slog"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-seat-booking/internal/model"
    "github.com/iliyamo/cinema-seat-booking/internal/queue"
    "github.com/iliyamo/cinema-seat-booking/internal/repository"
    "github.com/iliyamo/cinema-seat-booking/internal/seatmap"
)

// MaxHoldSeats is the largest hold a single request may ask for.
const MaxHoldSeats = 10

// DefaultHoldTTL is used when Handler.HoldTTL is zero.
const DefaultHoldTTL = 5 * time.Minute

// BookingRecorder persists confirmed bookings and reads them back for the
// confirmation view.  repository.BookingRepo and
// repository.MemoryBookingRepo satisfy it.
type BookingRecorder interface {
    Create(ctx context.Context, b *model.Booking) error
    GetByID(ctx context.Context, id string) (*model.Booking, error)
}

// Handler serves the /v1 seat-hold API.  Store is required.  Recorder
// defaults to an in-process repository; Publisher is optional.
type Handler struct {
    Store     Store
    HoldTTL   time.Duration
    Recorder  BookingRecorder
    Publisher queue.Publisher
    Log       *slog.Logger
}

// NewHandler constructs a Handler.  It panics on a nil store.
func NewHandler(store Store, holdTTL time.Duration, log *slog.Logger) *Handler {
    if store == nil {
        panic("nil store passed to NewHandler")
    }
    if holdTTL <= 0 {
        holdTTL = DefaultHoldTTL
    }
    if log == nil {
        log = slog.Default()
    }
    return &Handler{
        Store:     store,
        HoldTTL:   holdTTL,
        Recorder:  repository.NewMemoryBookingRepo(),
        Publisher: queue.NopPublisher{},
        Log:       log,
    }
}

type showBody struct {
    ID         string `json:"id"`
    MovieID    string `json:"movie_id"`
    TheaterID  string `json:"theater_id"`
    Screen     int    `json:"screen"`
    Date       string `json:"date"`
    Time       string `json:"time"`
    PriceCents int64  `json:"price_cents"`
    Rows       int    `json:"rows"`
    Cols       int    `json:"cols"`
}

// GetShow handles GET /v1/shows/:id.
func (h *Handler) GetShow(c echo.Context) error {
    sh, err := h.Store.Show(c.Request().Context(), c.Param("id"))
    if err != nil {
        return h.storeError(c, "get show", err)
    }
    l := seatmap.NewLayout(sh.Rows, sh.Cols)
    return c.JSON(http.StatusOK, showBody{
        ID:         sh.ID,
        MovieID:    sh.MovieID,
        TheaterID:  sh.TheaterID,
        Screen:     sh.Screen,
        Date:       sh.Date,
        Time:       sh.Time,
        PriceCents: sh.PriceCents,
        Rows:       l.Rows,
        Cols:       l.Cols,
    })
}

// GetAvailability handles GET /v1/shows/:id/availability.  It returns the
// booked and currently locked seats; expired locks are not reported.
func (h *Handler) GetAvailability(c echo.Context) error {
    booked, locked, err := h.Store.Availability(c.Request().Context(), c.Param("id"))
    if err != nil {
        return h.storeError(c, "availability", err)
    }
    if booked == nil {
        booked = []string{}
    }
    if locked == nil {
        locked = []string{}
    }
    return c.JSON(http.StatusOK, echo.Map{"booked": booked, "locked": locked})
}

// HoldSeats handles POST /v1/shows/:id/hold.  The body must contain a
// "seat_ids" array of 1..10 distinct seat ids of the show's grid.  On
// success it returns 201 with one lock id per seat, in request order, and
// the expiry.  If any seat is booked or locked it returns 409 with the
// list of unavailable seats and locks nothing.
func (h *Handler) HoldSeats(c echo.Context) error {
    userID, ok := getUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    showID := c.Param("id")
    sh, err := h.Store.Show(ctx, showID)
    if err != nil {
        return h.storeError(c, "hold", err)
    }
    var body struct {
        SeatIDs []string `json:"seat_ids"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.SeatIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
    }
    if len(body.SeatIDs) > MaxHoldSeats {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "at most 10 seats per hold"})
    }
    layout := seatmap.NewLayout(sh.Rows, sh.Cols)
    seen := make(map[string]struct{}, len(body.SeatIDs))
    for _, id := range body.SeatIDs {
        if !layout.Valid(id) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id", "seat_id": id})
        }
        if _, dup := seen[id]; dup {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate seat id", "seat_id": id})
        }
        seen[id] = struct{}{}
    }

    hold, err := h.Store.Hold(ctx, HoldRequest{UserID: userID, ShowID: showID, SeatIDs: body.SeatIDs, TTL: h.HoldTTL})
    if err != nil {
        var ue *UnavailableError
        if errors.As(err, &ue) {
            h.Log.Info("hold conflict", "component", "holdserver", "show_id", showID, "user_id", userID, "unavailable", ue.Seats)
            return c.JSON(http.StatusConflict, echo.Map{
                "error":       "seats unavailable",
                "unavailable": ue.Seats,
            })
        }
        return h.storeError(c, "hold", err)
    }
    h.Log.Info("seats held", "component", "holdserver", "show_id", showID, "user_id", userID, "seat_ids", body.SeatIDs)
    return c.JSON(http.StatusCreated, echo.Map{
        "lock_ids":   hold.LockIDs,
        "expires_at": hold.ExpiresAt.UTC().Format(time.RFC3339),
    })
}

// ConfirmSeats handles POST /v1/shows/:id/confirm.  It consumes the given
// lock ids, books their seats and returns 201 with the booking id and
// total.  Expired, already consumed or foreign locks yield 409 and change
// nothing.  Persistence and event publishing happen after the seats are
// booked.  If the booking cannot be recorded the seats are unbooked and the
// request fails with 500; a publish failure is only logged.
func (h *Handler) ConfirmSeats(c echo.Context) error {
    userID, ok := getUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    showID := c.Param("id")
    var body struct {
        LockIDs       []string `json:"lock_ids"`
        PaymentMethod string   `json:"payment_method"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.LockIDs) == 0 || len(body.LockIDs) > MaxHoldSeats {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "lock_ids must hold 1..10 ids"})
    }
    if body.PaymentMethod == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method is required"})
    }

    b, err := h.Store.Confirm(ctx, ConfirmRequest{
        UserID:        userID,
        ShowID:        showID,
        LockIDs:       body.LockIDs,
        PaymentMethod: body.PaymentMethod,
    })
    if err != nil {
        return h.storeError(c, "confirm", err)
    }
    if h.Recorder != nil {
        if err := h.Recorder.Create(ctx, b); err != nil {
            h.Log.Error("persist booking failed", "component", "holdserver", "booking_id", b.ID, "error", err)
            if uerr := h.Store.Unbook(context.WithoutCancel(ctx), showID, b.SeatIDs); uerr != nil {
                h.Log.Error("unbook seats failed", "component", "holdserver", "booking_id", b.ID, "seat_ids", b.SeatIDs, "error", uerr)
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to persist booking"})
        }
    }
    h.publish(ctx, b)
    h.Log.Info("booking confirmed", "component", "holdserver", "booking_id", b.ID, "show_id", showID, "user_id", userID, "seat_ids", b.SeatIDs)
    return c.JSON(http.StatusCreated, echo.Map{
        "id":                 b.ID,
        "total_amount_cents": b.TotalAmountCents,
    })
}

// ReleaseHolds handles DELETE /v1/shows/:id/hold.  It drops the listed
// locks owned by the caller and returns how many were released.
func (h *Handler) ReleaseHolds(c echo.Context) error {
    userID, ok := getUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        LockIDs []string `json:"lock_ids"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    n, err := h.Store.Release(c.Request().Context(), userID, c.Param("id"), body.LockIDs)
    if err != nil {
        return h.storeError(c, "release", err)
    }
    return c.JSON(http.StatusOK, echo.Map{"released": n})
}

type bookingBody struct {
    ID               string   `json:"id"`
    ShowID           string   `json:"show_id"`
    SeatIDs          []string `json:"seat_ids"`
    PaymentMethod    string   `json:"payment_method"`
    TotalAmountCents int64    `json:"total_amount_cents"`
    Status           string   `json:"status"`
    CreatedAt        string   `json:"created_at"`
}

// GetBooking handles GET /v1/bookings/:id for the confirmation view.
// Bookings of other users are reported as not found.
func (h *Handler) GetBooking(c echo.Context) error {
    userID, ok := getUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if h.Recorder == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    }
    b, err := h.Recorder.GetByID(c.Request().Context(), c.Param("id"))
    if errors.Is(err, repository.ErrBookingNotFound) || (err == nil && b.UserID != userID) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    }
    if err != nil {
        h.Log.Error("load booking failed", "component", "holdserver", "booking_id", c.Param("id"), "error", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    return c.JSON(http.StatusOK, bookingBody{
        ID:               b.ID,
        ShowID:           b.ShowID,
        SeatIDs:          b.SeatIDs,
        PaymentMethod:    b.PaymentMethod,
        TotalAmountCents: b.TotalAmountCents,
        Status:           string(b.Status),
        CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
    })
}

func (h *Handler) publish(ctx context.Context, b *model.Booking) {
    if h.Publisher == nil {
        return
    }
    ev := queue.BookingConfirmedEvent{
        BookingID:        b.ID,
        UserID:           b.UserID,
        ShowID:           b.ShowID,
        SeatIDs:          b.SeatIDs,
        PaymentMethod:    b.PaymentMethod,
        TotalAmountCents: b.TotalAmountCents,
        ConfirmedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
    }
    if sh, err := h.Store.Show(ctx, b.ShowID); err == nil {
        ev.MovieID = sh.MovieID
        ev.TheaterID = sh.TheaterID
        ev.Screen = sh.Screen
        ev.Date = sh.Date
        ev.Time = sh.Time
    }
    if err := h.Publisher.PublishBookingConfirmed(ctx, ev); err != nil {
        h.Log.Warn("publish booking.confirmed failed", "component", "holdserver", "booking_id", b.ID, "error", err)
    }
}

// storeError maps store errors onto HTTP responses.
func (h *Handler) storeError(c echo.Context, op string, err error) error {
    switch {
    case errors.Is(err, ErrShowNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
    case errors.Is(err, ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seats unavailable"})
    case errors.Is(err, ErrHoldExpired):
        return c.JSON(http.StatusConflict, echo.Map{"error": "hold expired"})
    case errors.Is(err, ErrInvalidRequest):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
    }
    h.Log.Error("store failure", "component", "holdserver", "op", op, "error", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// Health is a liveness probe returning a plain "ok".
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
