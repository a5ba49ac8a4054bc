package model

import "time"

// Hold is the result of a successful hold call: one opaque lock id per
// requested seat and the moment the server will drop them.  A Hold lives
// for a single booking attempt and is consumed by exactly one confirm.
type Hold struct {
    ShowID    string
    LockIDs   []string
    ExpiresAt time.Time
}
