package config // package config loads server and client configuration from environment variables

import (
    "fmt"
    "log"
    "os"
    "strconv"
    "strings"
    "time"
)

// Server holds the runtime configuration of the hold server.  Every field
// maps to one environment variable; see LoadServer for names and defaults.
type Server struct {
    Env       string        // application environment (dev/test/prod)
    Port      string        // HTTP port to listen on
    JWTSecret string        // secret used to verify bearer tokens
    HoldTTL   time.Duration // lifetime of a seat hold
    HoldStore string        // "memory" or "redis"

    DBUser string // MySQL user
    DBPass string // MySQL password (optional)
    DBHost string // MySQL host; empty disables booking persistence
    DBPort string // MySQL port
    DBName string // MySQL database

    RabbitURL string // AMQP url; empty disables event publishing

    SeedShowID string // show created at startup; empty seeds nothing
    SeedPrice  int64  // seed show seat price in cents
    SeatRows   int    // seed show grid rows
    SeatCols   int    // seed show grid columns

    Redis     Redis
    RateLimit RateLimit

    LogLevel  string
    LogFormat string
}

// Client holds the configuration of the terminal seat picker.
type Client struct {
    APIBaseURL   string        // hold server base url
    AuthToken    string        // bearer token; empty means logged out
    PollInterval time.Duration // availability polling period
    MaxSeats     int           // selection cap, at most 10
    HTTPTimeout  time.Duration // per-request timeout

    LogLevel  string
    LogFormat string
}

// LoadServer reads the server configuration.  JWT_SECRET is required in
// every environment except dev; a missing secret is fatal.
func LoadServer() Server {
    cfg := Server{
        Env:       getenv("APP_ENV", "dev"),
        Port:      getenv("APP_PORT", "8080"),
        JWTSecret: os.Getenv("JWT_SECRET"),
        HoldTTL:   envDur("HOLD_TTL", 5*time.Minute),
        HoldStore: strings.ToLower(getenv("HOLD_STORE", "memory")),

        DBUser: getenv("DB_USER", "root"),
        DBPass: os.Getenv("DB_PASS"),
        DBHost: os.Getenv("DB_HOST"),
        DBPort: getenv("DB_PORT", "3306"),
        DBName: getenv("DB_NAME", "cinema"),

        RabbitURL: os.Getenv("RABBITMQ_URL"),

        SeedShowID: getenv("SEED_SHOW_ID", "show1"),
        SeedPrice:  int64(envInt("SEED_SHOW_PRICE_CENTS", 25000)),
        SeatRows:   envInt("SEAT_ROWS", 8),
        SeatCols:   envInt("SEAT_COLS", 12),

        Redis:     LoadRedis(),
        RateLimit: LoadRateLimit(),

        LogLevel:  getenv("LOG_LEVEL", "info"),
        LogFormat: getenv("LOG_FORMAT", "json"),
    }
    if cfg.JWTSecret == "" {
        if cfg.Env != "dev" {
            log.Fatalf("missing required env var: %s", "JWT_SECRET")
        }
        cfg.JWTSecret = "dev-secret"
    }
    return cfg
}

// Validate checks values that have no sensible fallback.
func (c Server) Validate() error {
    if c.HoldTTL <= 0 {
        return fmt.Errorf("HOLD_TTL must be positive, got %s", c.HoldTTL)
    }
    if c.HoldStore != "memory" && c.HoldStore != "redis" {
        return fmt.Errorf("HOLD_STORE must be memory or redis, got %q", c.HoldStore)
    }
    if c.SeatRows < 1 || c.SeatRows > 26 || c.SeatCols < 1 {
        return fmt.Errorf("invalid seat grid %dx%d", c.SeatRows, c.SeatCols)
    }
    return nil
}

// PersistBookings reports whether MySQL is configured.
func (c Server) PersistBookings() bool { return c.DBHost != "" }

// LoadClient reads the seat picker configuration.
func LoadClient() Client {
    c := Client{
        APIBaseURL:   getenv("API_BASE_URL", "http://localhost:8080"),
        AuthToken:    os.Getenv("AUTH_TOKEN"),
        PollInterval: envDur("POLL_INTERVAL", 3*time.Second),
        MaxSeats:     envInt("MAX_SEATS", 10),
        HTTPTimeout:  envDur("HTTP_TIMEOUT", 10*time.Second),
        LogLevel:     getenv("LOG_LEVEL", "info"),
        LogFormat:    getenv("LOG_FORMAT", "text"),
    }
    if c.MaxSeats < 1 || c.MaxSeats > 10 {
        c.MaxSeats = 10
    }
    return c
}

// getenv returns the value of key or def when it is unset or empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func envInt(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Printf("config: invalid int for %s: %q, using %d", key, s, def)
        return def
    }
    return n
}

func envDur(key string, def time.Duration) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil {
        log.Printf("config: invalid duration for %s: %q, using %s", key, s, def)
        return def
    }
    return d
}

func envBool(key string, def bool) bool {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    return strings.EqualFold(s, "true") || s == "1"
}
