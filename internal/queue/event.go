// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedQueue is the durable queue confirmed bookings are
// published to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published when a hold is successfully confirmed.
// It carries enough for downstream consumers (receipts, analytics) to act
// without querying the booking store.
type BookingConfirmedEvent struct {
    BookingID        string   `json:"booking_id"`
    UserID           string   `json:"user_id"`
    ShowID           string   `json:"show_id"`
    MovieID          string   `json:"movie_id"`
    TheaterID        string   `json:"theater_id"`
    Screen           int      `json:"screen"`
    Date             string   `json:"date"`
    Time             string   `json:"time"`
    SeatIDs          []string `json:"seats"`
    PaymentMethod    string   `json:"payment_method"`
    TotalAmountCents int64    `json:"total_amount_cents"`
    ConfirmedAt      string   `json:"confirmed_at"`
}
