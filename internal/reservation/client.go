// Package reservation talks to the seat-hold backend: it fetches shows and
// availability and runs the two-phase hold -> confirm protocol.  Mutual
// exclusion over seats is enforced by the server; this package translates
// every transport and HTTP failure into ErrConflict, ErrUnauthenticated or
// *ServerError so callers never see a raw transport error.  Nothing is
// retried automatically.
package reservation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// MaxHoldSeats bounds the number of seats per hold request.
const MaxHoldSeats = 10

// TokenSource supplies the bearer token for authenticated calls.  ok is
// false when there is no usable session.
type TokenSource interface {
	Token() (token string, ok bool)
}

// Client is an HTTP client for the /v1 seat-hold API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a Client for baseURL (scheme://host[:port]).
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type showResponse struct {
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

type availabilityResponse struct {
	Booked []string `json:"booked"`
	Locked []string `json:"locked"`
}

type holdRequest struct {
	SeatIDs []string `json:"seat_ids"`
}

type holdResponse struct {
	LockIDs   []string `json:"lock_ids"`
	ExpiresAt string   `json:"expires_at"`
}

type confirmRequest struct {
	LockIDs       []string `json:"lock_ids"`
	PaymentMethod string   `json:"payment_method"`
}

type confirmResponse struct {
	ID               string `json:"id"`
	TotalAmountCents int64  `json:"total_amount_cents"`
}

type bookingResponse struct {
	ID               string   `json:"id"`
	ShowID           string   `json:"show_id"`
	SeatIDs          []string `json:"seat_ids"`
	PaymentMethod    string   `json:"payment_method"`
	TotalAmountCents int64    `json:"total_amount_cents"`
	Status           string   `json:"status"`
	CreatedAt        string   `json:"created_at"`
}

type errorResponse struct {
	Error       string   `json:"error"`
	Unavailable []string `json:"unavailable"`
}

// Show fetches a show record.
func (c *Client) Show(ctx context.Context, showID string) (*model.Show, error) {
	var out showResponse
	if err := c.do(ctx, "show", http.MethodGet, showPath(showID, ""), nil, false, &out); err != nil {
		return nil, err
	}
	return &model.Show{
		ID:         out.ID,
		MovieID:    out.MovieID,
		TheaterID:  out.TheaterID,
		Screen:     out.Screen,
		Date:       out.Date,
		Time:       out.Time,
		PriceCents: out.PriceCents,
		Rows:       out.Rows,
		Cols:       out.Cols,
	}, nil
}

// Availability fetches the booked and locked seat sets of a show as a new
// snapshot.
func (c *Client) Availability(ctx context.Context, showID string) (*model.Availability, error) {
	var out availabilityResponse
	if err := c.do(ctx, "availability", http.MethodGet, showPath(showID, "/availability"), nil, false, &out); err != nil {
		return nil, err
	}
	return model.NewAvailability(showID, out.Booked, out.Locked, time.Now().UTC()), nil
}

// Hold asks the server to lock all seatIDs for a short TTL.  The request
// is all-or-nothing: on conflict the returned error matches ErrConflict
// and no seat is locked.
func (c *Client) Hold(ctx context.Context, showID string, seatIDs []string) (*model.Hold, error) {
	if len(seatIDs) == 0 || len(seatIDs) > MaxHoldSeats {
		return nil, &ServerError{Op: "hold", Message: fmt.Sprintf("seat count must be 1..%d", MaxHoldSeats)}
	}
	var out holdResponse
	if err := c.do(ctx, "hold", http.MethodPost, showPath(showID, "/hold"), holdRequest{SeatIDs: seatIDs}, true, &out); err != nil {
		return nil, err
	}
	if len(out.LockIDs) == 0 {
		return nil, &ServerError{Op: "hold", Status: http.StatusOK, Message: "empty lock list"}
	}
	h := &model.Hold{ShowID: showID, LockIDs: out.LockIDs}
	if t, err := time.Parse(time.RFC3339, out.ExpiresAt); err == nil {
		h.ExpiresAt = t
	}
	return h, nil
}

// Confirm turns a hold into a booking and returns the booking id.  Any
// failure is terminal for the attempt; the locks are left to expire on
// the server.
func (c *Client) Confirm(ctx context.Context, showID string, lockIDs []string, paymentMethod string) (string, error) {
	var out confirmResponse
	body := confirmRequest{LockIDs: lockIDs, PaymentMethod: paymentMethod}
	if err := c.do(ctx, "confirm", http.MethodPost, showPath(showID, "/confirm"), body, true, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &ServerError{Op: "confirm", Status: http.StatusOK, Message: "missing booking id"}
	}
	return out.ID, nil
}

// Booking loads a confirmed booking of the current user for the
// confirmation view.
func (c *Client) Booking(ctx context.Context, bookingID string) (*model.Booking, error) {
	var out bookingResponse
	if err := c.do(ctx, "booking", http.MethodGet, "/v1/bookings/"+url.PathEscape(bookingID), nil, true, &out); err != nil {
		return nil, err
	}
	b := &model.Booking{
		ID:               out.ID,
		ShowID:           out.ShowID,
		SeatIDs:          out.SeatIDs,
		PaymentMethod:    out.PaymentMethod,
		TotalAmountCents: out.TotalAmountCents,
		Status:           model.BookingStatus(out.Status),
	}
	if t, err := time.Parse(time.RFC3339, out.CreatedAt); err == nil {
		b.CreatedAt = t
	}
	return b, nil
}

func showPath(showID, suffix string) string {
	return "/v1/shows/" + url.PathEscape(showID) + suffix
}

// do performs one request and decodes a 2xx body into out.  Hold-phase
// 409s become *ConflictError; 401/403 become ErrUnauthenticated.
func (c *Client) do(ctx context.Context, op, method, path string, in any, auth bool, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &ServerError{Op: op, Message: err.Error()}
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &ServerError{Op: op, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		tok, ok := "", false
		if c.tokens != nil {
			tok, ok = c.tokens.Token()
		}
		if !ok {
			return ErrUnauthenticated
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "component", "reservation", "op", op, "error", err)
		return &ServerError{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &ServerError{Op: op, Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return &ServerError{Op: op, Status: resp.StatusCode, Message: "invalid response body"}
		}
		return nil
	}

	var er errorResponse
	_ = json.Unmarshal(raw, &er)
	msg := er.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusConflict && op == "hold":
		return &ConflictError{Unavailable: er.Unavailable}
	}
	c.log.Debug("request rejected", "component", "reservation", "op", op, "status", resp.StatusCode, "error", msg)
	return &ServerError{Op: op, Status: resp.StatusCode, Message: msg}
}
