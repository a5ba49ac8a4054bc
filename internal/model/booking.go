package model

import "time"

// BookingStatus is the lifecycle state of a persisted booking.
type BookingStatus string

const (
    BookingConfirmed BookingStatus = "CONFIRMED"
    BookingCancelled BookingStatus = "CANCELLED"
)

// Booking records a confirmed purchase of one or more seats for a show.
// It is created only by a successful confirm call and is owned by the
// backend.
//
// Fields:
//  ID               – booking identifier returned to the client.
//  UserID           – user who confirmed the hold.
//  ShowID           – show being booked.
//  SeatIDs          – seats finalized by the booking.
//  PaymentMethod    – payment method supplied with the confirm call.
//  TotalAmountCents – price per seat times the number of seats.
//  Status           – CONFIRMED or CANCELLED.
//  CreatedAt        – confirmation timestamp (UTC).
type Booking struct {
    ID               string
    UserID           string
    ShowID           string
    SeatIDs          []string
    PaymentMethod    string
    TotalAmountCents int64
    Status           BookingStatus
    CreatedAt        time.Time
}
