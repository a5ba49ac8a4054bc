package main // seatd runs the reference seat-hold server

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-seat-booking/internal/config"
	"github.com/iliyamo/cinema-seat-booking/internal/database"
	"github.com/iliyamo/cinema-seat-booking/internal/holdserver"
	"github.com/iliyamo/cinema-seat-booking/internal/logging"
	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/queue"
	"github.com/iliyamo/cinema-seat-booking/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.LoadServer()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, rdb, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("open hold store", "store", cfg.HoldStore, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	h := holdserver.NewHandler(store, cfg.HoldTTL, logger)

	if cfg.PersistBookings() {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			logger.Error("open mysql", "error", err)
			os.Exit(1)
		}
		defer func(db *sql.DB) { _ = db.Close() }(db)
		h.Recorder = repository.NewBookingRepo(db)
	}
	if cfg.RabbitURL != "" {
		h.Publisher = queue.NewAMQPPublisher(cfg.RabbitURL, logger)
	}

	var mw []echo.MiddlewareFunc
	if rdb != nil {
		mw = append(mw, holdserver.UserRateLimit(cfg.RateLimit, rdb, logger, nil))
	}
	e := holdserver.NewServer(h, cfg.JWTSecret, mw...)
	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "store", cfg.HoldStore, "hold_ttl", cfg.HoldTTL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

// openStore builds the configured hold store and seeds the demo show.  The
// Redis client is returned so other components can share it; it is nil for
// the memory store.
func openStore(ctx context.Context, cfg config.Server) (holdserver.Store, *redis.Client, func(), error) {
	seed := model.Show{
		ID:         cfg.SeedShowID,
		MovieID:    "movie-1",
		TheaterID:  "theater-1",
		Screen:     1,
		Date:       time.Now().UTC().Format("2006-01-02"),
		Time:       "19:30",
		PriceCents: cfg.SeedPrice,
		Rows:       cfg.SeatRows,
		Cols:       cfg.SeatCols,
	}

	if cfg.HoldStore == "redis" {
		rdb, err := config.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		s := holdserver.NewRedisStore(rdb)
		if seed.ID != "" {
			if err := s.PutShow(ctx, seed); err != nil {
				_ = rdb.Close()
				return nil, nil, nil, err
			}
		}
		return s, rdb, func() { _ = rdb.Close() }, nil
	}

	s := holdserver.NewMemoryStore()
	if seed.ID != "" {
		s.AddShow(seed)
	}
	return s, nil, func() {}, nil
}
