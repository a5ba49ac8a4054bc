package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoadServer_Defaults(t *testing.T) {
    t.Setenv("APP_ENV", "dev")
    t.Setenv("JWT_SECRET", "")
    t.Setenv("HOLD_TTL", "")
    t.Setenv("DB_HOST", "")
    t.Setenv("HOLD_STORE", "")
    t.Setenv("APP_PORT", "")

    cfg := LoadServer()
    assert.Equal(t, "8080", cfg.Port)
    assert.Equal(t, 5*time.Minute, cfg.HoldTTL)
    assert.Equal(t, "memory", cfg.HoldStore)
    assert.Equal(t, "dev-secret", cfg.JWTSecret)
    assert.False(t, cfg.PersistBookings())
    assert.Equal(t, 8, cfg.SeatRows)
    assert.Equal(t, 12, cfg.SeatCols)
    require.NoError(t, cfg.Validate())
}

func TestLoadServer_Overrides(t *testing.T) {
    t.Setenv("APP_ENV", "prod")
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("HOLD_TTL", "90s")
    t.Setenv("HOLD_STORE", "Redis")
    t.Setenv("DB_HOST", "db")
    t.Setenv("REDIS_HOST", "cache")
    t.Setenv("REDIS_PORT", "6380")
    t.Setenv("REDIS_TLS", "1")

    cfg := LoadServer()
    assert.Equal(t, 90*time.Second, cfg.HoldTTL)
    assert.Equal(t, "redis", cfg.HoldStore)
    assert.True(t, cfg.PersistBookings())
    assert.Equal(t, "cache:6380", cfg.Redis.Addr)
    assert.True(t, cfg.Redis.TLS)
    require.NoError(t, cfg.Validate())
}

func TestServerValidate(t *testing.T) {
    cfg := Server{HoldTTL: time.Minute, HoldStore: "memcached", SeatRows: 8, SeatCols: 12}
    assert.Error(t, cfg.Validate())

    cfg.HoldStore = "memory"
    cfg.SeatRows = 27
    assert.Error(t, cfg.Validate())
}

func TestLoadClient(t *testing.T) {
    t.Setenv("POLL_INTERVAL", "bogus")
    t.Setenv("MAX_SEATS", "40")
    t.Setenv("API_BASE_URL", "http://seatd:9000")

    c := LoadClient()
    assert.Equal(t, 3*time.Second, c.PollInterval)
    assert.Equal(t, 10, c.MaxSeats)
    assert.Equal(t, "http://seatd:9000", c.APIBaseURL)
}

func TestLoadRateLimit_Clamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    rl := LoadRateLimit()
    assert.Equal(t, 1, rl.Capacity)
    assert.Equal(t, 5*time.Minute, rl.TTL)
    assert.True(t, rl.Enabled)
}
