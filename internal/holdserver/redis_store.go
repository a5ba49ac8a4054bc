package holdserver

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-seat-booking/internal/model"
    "github.com/iliyamo/cinema-seat-booking/internal/seatmap"
)

// Key layout.  Every key of a show carries the {show} hash tag so a
// script only touches keys of one cluster slot.
//   show:{show}              JSON show record
//   booked:{show}            set of booked seat ids
//   seatlock:{show}:{seat}   lock id holding the seat (PX = hold TTL)
//   lock:{show}:{lock}       "user|show|seat" owner record (PX = hold TTL)
func showKey(showID string) string           { return "show:{" + showID + "}" }
func bookedKey(showID string) string         { return "booked:{" + showID + "}" }
func seatLockKey(showID, seat string) string { return "seatlock:{" + showID + "}:" + seat }
func lockKey(showID, lockID string) string   { return "lock:{" + showID + "}:" + lockID }

// holdScript locks every seat or none.
// KEYS[1] = booked set, KEYS[2..n+1] = seat lock keys, KEYS[n+2..2n+1] = lock keys
// ARGV[1] = ttl ms, ARGV[2] = user, ARGV[3] = show,
// ARGV[4..n+3] = seat ids, ARGV[n+4..2n+3] = lock ids
var holdScript = redis.NewScript(`
local n = (#KEYS - 1) / 2
local ttl = tonumber(ARGV[1])
local res = {0}
for i = 1, n do
    local seat = ARGV[3 + i]
    if redis.call("SISMEMBER", KEYS[1], seat) == 1 or redis.call("EXISTS", KEYS[1 + i]) == 1 then
        table.insert(res, seat)
    end
end
if #res > 1 then
    return res
end
for i = 1, n do
    redis.call("SET", KEYS[1 + i], ARGV[3 + n + i], "PX", ttl)
    redis.call("SET", KEYS[1 + n + i], ARGV[2] .. "|" .. ARGV[3] .. "|" .. ARGV[3 + i], "PX", ttl)
end
return {1}
`)

// confirmScript consumes locks and books their seats, or changes nothing.
// The seat of each lock is read beforehand and re-checked here.
// KEYS[1] = booked set, KEYS[2..n+1] = lock keys, KEYS[n+2..2n+1] = seat lock keys
// ARGV[1] = user, ARGV[2] = show, ARGV[3..n+2] = lock ids, ARGV[n+3..2n+2] = seat ids
var confirmScript = redis.NewScript(`
local n = (#KEYS - 1) / 2
for i = 1, n do
    local v = redis.call("GET", KEYS[1 + i])
    if not v then
        return {0}
    end
    local user, show, seat = string.match(v, "^(.-)|(.-)|(.*)$")
    if user ~= ARGV[1] or show ~= ARGV[2] or seat ~= ARGV[2 + n + i] then
        return {0}
    end
    if redis.call("GET", KEYS[1 + n + i]) ~= ARGV[2 + i] then
        return {0}
    end
end
local res = {1}
for i = 1, n do
    local seat = ARGV[2 + n + i]
    redis.call("SADD", KEYS[1], seat)
    redis.call("DEL", KEYS[1 + i])
    redis.call("DEL", KEYS[1 + n + i])
    table.insert(res, seat)
end
return res
`)

// releaseScript drops the caller's locks and returns how many it removed.
// KEYS[1..n] = lock keys, KEYS[n+1..2n] = seat lock keys
// ARGV[1] = user, ARGV[2] = show, ARGV[3..n+2] = lock ids, ARGV[n+3..2n+2] = seat ids
var releaseScript = redis.NewScript(`
local n = #KEYS / 2
local released = 0
for i = 1, n do
    local v = redis.call("GET", KEYS[i])
    if v then
        local user, show, seat = string.match(v, "^(.-)|(.-)|(.*)$")
        if user == ARGV[1] and show == ARGV[2] and seat == ARGV[2 + n + i] then
            if redis.call("GET", KEYS[n + i]) == ARGV[2 + i] then
                redis.call("DEL", KEYS[n + i])
            end
            redis.call("DEL", KEYS[i])
            released = released + 1
        end
    end
end
return released
`)

// RedisStore keeps seat state in Redis.  Holds and confirms run as Lua
// scripts so each is atomic across every server instance; lock expiry is
// delegated to Redis key TTLs.
type RedisStore struct {
    rdb       redis.Cmdable
    newLockID func() (string, error)
    newBookID func() string
    now       func() time.Time
}

// NewRedisStore binds a store to a Redis client.
func NewRedisStore(rdb redis.Cmdable) *RedisStore {
    return &RedisStore{
        rdb:       rdb,
        newLockID: defaultLockID,
        newBookID: uuid.NewString,
        now:       time.Now,
    }
}

// PutShow stores a show record.  Existing bookings are kept.
func (s *RedisStore) PutShow(ctx context.Context, show model.Show) error {
    b, err := json.Marshal(show)
    if err != nil {
        return err
    }
    return s.rdb.Set(ctx, showKey(show.ID), b, 0).Err()
}

// Show implements Store.
func (s *RedisStore) Show(ctx context.Context, showID string) (*model.Show, error) {
    b, err := s.rdb.Get(ctx, showKey(showID)).Bytes()
    if errors.Is(err, redis.Nil) {
        return nil, ErrShowNotFound
    }
    if err != nil {
        return nil, fmt.Errorf("get show: %w", err)
    }
    var sh model.Show
    if err := json.Unmarshal(b, &sh); err != nil {
        return nil, fmt.Errorf("decode show: %w", err)
    }
    return &sh, nil
}

// Availability implements Store.  The booked set and every seat lock are
// read inside one MULTI so the two lists come from the same instant.
func (s *RedisStore) Availability(ctx context.Context, showID string) ([]string, []string, error) {
    sh, err := s.Show(ctx, showID)
    if err != nil {
        return nil, nil, err
    }
    layout := seatmap.NewLayout(sh.Rows, sh.Cols)
    seats := layout.SeatIDs()
    keys := make([]string, len(seats))
    for i, seat := range seats {
        keys[i] = seatLockKey(showID, seat)
    }

    var bookedCmd *redis.StringSliceCmd
    var lockCmd *redis.SliceCmd
    _, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
        bookedCmd = p.SMembers(ctx, bookedKey(showID))
        lockCmd = p.MGet(ctx, keys...)
        return nil
    })
    if err != nil {
        return nil, nil, fmt.Errorf("read availability: %w", err)
    }

    booked := bookedCmd.Val()
    sortGrid(layout, booked)
    locked := make([]string, 0)
    for i, v := range lockCmd.Val() {
        if v != nil {
            locked = append(locked, seats[i])
        }
    }
    return booked, locked, nil
}

// Hold implements Store.
func (s *RedisStore) Hold(ctx context.Context, req HoldRequest) (*model.Hold, error) {
    if len(req.SeatIDs) == 0 || req.TTL <= 0 {
        return nil, ErrInvalidRequest
    }
    if _, err := s.Show(ctx, req.ShowID); err != nil {
        return nil, err
    }
    ids, err := newLockIDs(s.newLockID, len(req.SeatIDs))
    if err != nil {
        return nil, fmt.Errorf("generate lock ids: %w", err)
    }

    n := len(req.SeatIDs)
    keys := make([]string, 0, 2*n+1)
    keys = append(keys, bookedKey(req.ShowID))
    for _, seat := range req.SeatIDs {
        keys = append(keys, seatLockKey(req.ShowID, seat))
    }
    for _, id := range ids {
        keys = append(keys, lockKey(req.ShowID, id))
    }
    args := make([]interface{}, 0, 2*n+3)
    args = append(args, req.TTL.Milliseconds(), req.UserID, req.ShowID)
    for _, seat := range req.SeatIDs {
        args = append(args, seat)
    }
    for _, id := range ids {
        args = append(args, id)
    }

    now := s.now()
    res, err := holdScript.Run(ctx, s.rdb, keys, args...).Slice()
    if err != nil {
        return nil, fmt.Errorf("hold script: %w", err)
    }
    if len(res) == 0 {
        return nil, fmt.Errorf("hold script: empty result")
    }
    if ok, _ := res[0].(int64); ok != 1 {
        taken := make([]string, 0, len(res)-1)
        for _, v := range res[1:] {
            if seat, isStr := v.(string); isStr {
                taken = append(taken, seat)
            }
        }
        return nil, &UnavailableError{Seats: taken}
    }
    return &model.Hold{ShowID: req.ShowID, LockIDs: ids, ExpiresAt: now.Add(req.TTL)}, nil
}

// Confirm implements Store.
func (s *RedisStore) Confirm(ctx context.Context, req ConfirmRequest) (*model.Booking, error) {
    if len(req.LockIDs) == 0 || hasDuplicates(req.LockIDs) {
        return nil, ErrInvalidRequest
    }
    sh, err := s.Show(ctx, req.ShowID)
    if err != nil {
        return nil, err
    }
    owned, err := s.lockedSeats(ctx, req.UserID, req.ShowID, req.LockIDs)
    if err != nil {
        return nil, err
    }
    n := len(req.LockIDs)
    keys := make([]string, 0, 2*n+1)
    keys = append(keys, bookedKey(req.ShowID))
    args := make([]interface{}, 0, 2*n+2)
    args = append(args, req.UserID, req.ShowID)
    for _, id := range req.LockIDs {
        if _, ok := owned[id]; !ok {
            return nil, ErrHoldExpired
        }
        keys = append(keys, lockKey(req.ShowID, id))
        args = append(args, id)
    }
    for _, id := range req.LockIDs {
        keys = append(keys, seatLockKey(req.ShowID, owned[id]))
        args = append(args, owned[id])
    }

    res, err := confirmScript.Run(ctx, s.rdb, keys, args...).Slice()
    if err != nil {
        return nil, fmt.Errorf("confirm script: %w", err)
    }
    if len(res) == 0 {
        return nil, fmt.Errorf("confirm script: empty result")
    }
    if ok, _ := res[0].(int64); ok != 1 {
        return nil, ErrHoldExpired
    }
    seats := make([]string, 0, len(res)-1)
    for _, v := range res[1:] {
        if seat, isStr := v.(string); isStr {
            seats = append(seats, seat)
        }
    }
    return &model.Booking{
        ID:               s.newBookID(),
        UserID:           req.UserID,
        ShowID:           req.ShowID,
        SeatIDs:          seats,
        PaymentMethod:    req.PaymentMethod,
        TotalAmountCents: sh.PriceCents * int64(len(seats)),
        Status:           model.BookingConfirmed,
        CreatedAt:        s.now().UTC(),
    }, nil
}

// Release implements Store.
func (s *RedisStore) Release(ctx context.Context, userID, showID string, lockIDs []string) (int, error) {
    if len(lockIDs) == 0 {
        return 0, nil
    }
    owned, err := s.lockedSeats(ctx, userID, showID, lockIDs)
    if err != nil {
        return 0, err
    }
    ids := make([]string, 0, len(owned))
    for _, id := range lockIDs {
        if _, ok := owned[id]; ok {
            ids = append(ids, id)
        }
    }
    if len(ids) == 0 {
        return 0, nil
    }
    keys := make([]string, 0, 2*len(ids))
    args := make([]interface{}, 0, 2*len(ids)+2)
    args = append(args, userID, showID)
    for _, id := range ids {
        keys = append(keys, lockKey(showID, id))
        args = append(args, id)
    }
    for _, id := range ids {
        keys = append(keys, seatLockKey(showID, owned[id]))
        args = append(args, owned[id])
    }
    n, err := releaseScript.Run(ctx, s.rdb, keys, args...).Int()
    if err != nil {
        return 0, fmt.Errorf("release script: %w", err)
    }
    return n, nil
}

// Unbook implements Store.
func (s *RedisStore) Unbook(ctx context.Context, showID string, seatIDs []string) error {
    if len(seatIDs) == 0 {
        return nil
    }
    members := make([]interface{}, len(seatIDs))
    for i, seat := range seatIDs {
        members[i] = seat
    }
    if err := s.rdb.SRem(ctx, bookedKey(showID), members...).Err(); err != nil {
        return fmt.Errorf("unbook seats: %w", err)
    }
    return nil
}

// lockedSeats maps each live lock id owned by userID on showID to its
// seat.  Missing, expired and foreign locks are left out.
func (s *RedisStore) lockedSeats(ctx context.Context, userID, showID string, lockIDs []string) (map[string]string, error) {
    keys := make([]string, len(lockIDs))
    for i, id := range lockIDs {
        keys[i] = lockKey(showID, id)
    }
    vals, err := s.rdb.MGet(ctx, keys...).Result()
    if err != nil {
        return nil, fmt.Errorf("read locks: %w", err)
    }
    owned := make(map[string]string, len(lockIDs))
    for i, v := range vals {
        rec, ok := v.(string)
        if !ok {
            continue
        }
        parts := strings.SplitN(rec, "|", 3)
        if len(parts) != 3 || parts[0] != userID || parts[1] != showID {
            continue
        }
        owned[lockIDs[i]] = parts[2]
    }
    return owned, nil
}

func hasDuplicates(ids []string) bool {
    seen := make(map[string]struct{}, len(ids))
    for _, id := range ids {
        if _, ok := seen[id]; ok {
            return true
        }
        seen[id] = struct{}{}
    }
    return false
}
