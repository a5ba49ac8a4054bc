package model

import "time"

// Availability is the authoritative booked/locked view of one show as
// last observed from the server.  A value is never patched after it has
// been published: a newer poll produces a new Availability that replaces
// the old one wholesale.
type Availability struct {
    ShowID    string
    Booked    map[string]struct{}
    Locked    map[string]struct{}
    FetchedAt time.Time
}

// NewAvailability builds a snapshot from the seat id lists returned by the
// server.
func NewAvailability(showID string, booked, locked []string, at time.Time) *Availability {
    a := &Availability{
        ShowID:    showID,
        Booked:    make(map[string]struct{}, len(booked)),
        Locked:    make(map[string]struct{}, len(locked)),
        FetchedAt: at,
    }
    for _, id := range booked {
        a.Booked[id] = struct{}{}
    }
    for _, id := range locked {
        a.Locked[id] = struct{}{}
    }
    return a
}

// IsBooked reports whether seatID was booked at fetch time.  A nil
// snapshot reports nothing as booked.
func (a *Availability) IsBooked(seatID string) bool {
    if a == nil {
        return false
    }
    _, ok := a.Booked[seatID]
    return ok
}

// IsLocked reports whether seatID was held by some session at fetch time.
func (a *Availability) IsLocked(seatID string) bool {
    if a == nil {
        return false
    }
    _, ok := a.Locked[seatID]
    return ok
}

// Status returns the server-side status of a seat, ignoring any local
// selection.  Booked wins over locked.
func (a *Availability) Status(seatID string) SeatStatus {
    switch {
    case a.IsBooked(seatID):
        return SeatBooked
    case a.IsLocked(seatID):
        return SeatLocked
    default:
        return SeatAvailable
    }
}
