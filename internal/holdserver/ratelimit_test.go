package holdserver

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/go-redis/redismock/v9"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/cinema-seat-booking/internal/config"
)

func rateLimitedEcho(mw echo.MiddlewareFunc) *echo.Echo {
    e := echo.New()
    asUser := func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            c.Set("user_id", "u1")
            return next(c)
        }
    }
    e.POST("/hold", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, asUser, mw)
    return e
}

func TestUserRateLimit(t *testing.T) {
    cfg := config.RateLimit{Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: 3 * time.Second, TTL: time.Minute, Prefix: "rl"}
    db, mock := redismock.NewClientMock()
    now := func() time.Time { return testNow }
    e := rateLimitedEcho(UserRateLimit(cfg, db, nil, now))

    args := []interface{}{testNow.UnixMilli(), 2, 1, int64(3000), int64(60)}
    mock.ExpectEvalSha(tokenBucketScript.Hash(), []string{"rl:user:u1"}, args...).
        SetVal([]interface{}{int64(1), int64(1), int64(0)})
    mock.ExpectEvalSha(tokenBucketScript.Hash(), []string{"rl:user:u1"}, args...).
        SetVal([]interface{}{int64(0), int64(0), int64(2500)})

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hold", nil))
    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hold", nil))
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.Equal(t, "3", rec.Header().Get("Retry-After"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRateLimit_FailsOpen(t *testing.T) {
    cfg := config.RateLimit{Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
    db, mock := redismock.NewClientMock()
    e := rateLimitedEcho(UserRateLimit(cfg, db, nil, func() time.Time { return testNow }))
    mock.ExpectEvalSha(tokenBucketScript.Hash(), []string{"rl:user:u1"},
        testNow.UnixMilli(), 2, 1, int64(1000), int64(60)).SetErr(assert.AnError)

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hold", nil))
    assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUserRateLimit_Disabled(t *testing.T) {
    e := rateLimitedEcho(UserRateLimit(config.RateLimit{}, nil, nil, nil))
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hold", nil))
    assert.Equal(t, http.StatusCreated, rec.Code)
}
