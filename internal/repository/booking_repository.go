package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/cinema-seat-booking/internal/model"
)

// BookingRepo stores confirmed bookings and their seats in MySQL.  A
// booking lives in the bookings table; each seat it covers is one row of
// booking_seats.  All timestamps are stored in UTC.
//
//   CREATE TABLE bookings (
//     id                 VARCHAR(64) PRIMARY KEY,
//     user_id            VARCHAR(64) NOT NULL,
//     show_id            VARCHAR(64) NOT NULL,
//     payment_method     VARCHAR(32) NOT NULL,
//     total_amount_cents BIGINT NOT NULL,
//     status             ENUM('CONFIRMED','CANCELLED') NOT NULL,
//     created_at         DATETIME NOT NULL
//   );
//   CREATE TABLE booking_seats (
//     booking_id VARCHAR(64) NOT NULL,
//     show_id    VARCHAR(64) NOT NULL,
//     seat_id    VARCHAR(8)  NOT NULL,
//     UNIQUE KEY uq_show_seat (show_id, seat_id)
//   );
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts a booking and all of its seats in one transaction.  The
// unique (show_id, seat_id) key makes a double booking fail here even if
// the hold store were bypassed.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const q = `INSERT INTO bookings (id, user_id, show_id, payment_method, total_amount_cents, status, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    if _, err := tx.ExecContext(ctx, q,
        b.ID, b.UserID, b.ShowID, b.PaymentMethod, b.TotalAmountCents, string(b.Status),
        b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
    ); err != nil {
        return err
    }
    if err := createSeatsTx(ctx, tx, b.ID, b.ShowID, b.SeatIDs); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// createSeatsTx inserts every booking_seats row in a single statement.
// Passing an empty slice has no effect.
func createSeatsTx(ctx context.Context, tx *sql.Tx, bookingID, showID string, seatIDs []string) error {
    if len(seatIDs) == 0 {
        return nil
    }
    q, args := seatsInsert(bookingID, showID, seatIDs)
    _, err := tx.ExecContext(ctx, q, args...)
    return err
}

// seatsInsert builds the multi-row booking_seats INSERT and its arguments.
func seatsInsert(bookingID, showID string, seatIDs []string) (string, []interface{}) {
    var sb strings.Builder
    sb.WriteString(`INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES `)
    args := make([]interface{}, 0, len(seatIDs)*3)
    for i, seat := range seatIDs {
        if i > 0 {
            sb.WriteString(",")
        }
        sb.WriteString("(?, ?, ?)")
        args = append(args, bookingID, showID, seat)
    }
    return sb.String(), args
}

// GetByID loads a booking with its seats.  It returns ErrBookingNotFound
// when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
    const q = `SELECT id, user_id, show_id, payment_method, total_amount_cents, status, created_at
               FROM bookings WHERE id = ?`
    var b model.Booking
    var status string
    var created time.Time
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &b.ID, &b.UserID, &b.ShowID, &b.PaymentMethod, &b.TotalAmountCents, &status, &created,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    b.Status = model.BookingStatus(status)
    b.CreatedAt = created.UTC()

    rows, err := r.db.QueryContext(ctx, `SELECT seat_id FROM booking_seats WHERE booking_id = ?`, id)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var seat string
        if err := rows.Scan(&seat); err != nil {
            return nil, err
        }
        b.SeatIDs = append(b.SeatIDs, seat)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return &b, nil
}
