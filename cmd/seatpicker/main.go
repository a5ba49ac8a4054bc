package main // seatpicker is an interactive terminal seat picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/iliyamo/cinema-seat-booking/internal/auth"
	"github.com/iliyamo/cinema-seat-booking/internal/availability"
	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/config"
	"github.com/iliyamo/cinema-seat-booking/internal/logging"
	"github.com/iliyamo/cinema-seat-booking/internal/reservation"
	"github.com/iliyamo/cinema-seat-booking/internal/selection"
	"github.com/iliyamo/cinema-seat-booking/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg := config.LoadClient()

	var showID, payment, logFile, devUser, devSecret string
	flagSet := pflag.NewFlagSet("seatpicker", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "hold server base url")
	flagSet.StringVar(&showID, "show", "show1", "show id to book")
	flagSet.StringVar(&payment, "payment", "card", "payment method sent with confirm")
	flagSet.StringVar(&cfg.AuthToken, "token", cfg.AuthToken, "bearer token (default $AUTH_TOKEN)")
	flagSet.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "availability polling interval")
	flagSet.IntVar(&cfg.MaxSeats, "max-seats", cfg.MaxSeats, "selection cap (1-10)")
	flagSet.StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")
	flagSet.StringVar(&devUser, "dev-user", "", "mint a one-hour token for this user (development servers only)")
	flagSet.StringVar(&devSecret, "dev-secret", "dev-secret", "secret used with --dev-user")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logger := logging.Discard()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = logging.NewWriter(f, cfg.LogLevel, cfg.LogFormat)
	}
	slog.SetDefault(logger)

	if cfg.AuthToken == "" && devUser != "" {
		tok, err := auth.NewAccessToken(devSecret, devUser, time.Hour)
		if err != nil {
			return fmt.Errorf("mint dev token: %w", err)
		}
		cfg.AuthToken = tok.Token
	}

	sess := auth.NewSession(cfg.AuthToken)
	client := reservation.NewClient(cfg.APIBaseURL, sess,
		reservation.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		reservation.WithLogger(logger),
	)
	poller := availability.New(client,
		availability.WithInterval(cfg.PollInterval),
		availability.WithLogger(logger),
	)
	sel := selection.New(selection.WithLimit(cfg.MaxSeats))
	orch := booking.New(client, sess, sel, poller, booking.WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := orch.Mount(ctx, showID); err != nil {
		return fmt.Errorf("load show %s: %w", showID, err)
	}
	defer orch.Unmount()

	final, err := tea.NewProgram(tui.New(ctx, orch, payment), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	m, ok := final.(tui.Model)
	if !ok || m.Navigate() == "" {
		return nil
	}
	fmt.Println(m.Navigate())
	if orch.State() == booking.Completed {
		id := strings.TrimPrefix(m.Navigate(), booking.ConfirmationPath(""))
		b, err := client.Booking(ctx, id)
		if err != nil {
			return fmt.Errorf("load booking %s: %w", id, err)
		}
		fmt.Printf("booked %s for %s (%s)\n", strings.Join(b.SeatIDs, ", "), tui.FormatCents(b.TotalAmountCents), b.PaymentMethod)
	}
	return nil
}
