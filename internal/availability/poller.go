// Package availability keeps a show's booked/locked snapshot fresh by
// polling the backend on a fixed interval.  Every successful poll replaces
// the snapshot wholesale; readers always see one complete response.
package availability

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// DefaultInterval is the reference polling period.
const DefaultInterval = 3 * time.Second

// Fetcher loads the current availability of a show.  reservation.Client
// satisfies it.
type Fetcher interface {
	Availability(ctx context.Context, showID string) (*model.Availability, error)
}

// Poller periodically fetches availability for one show at a time.  It
// must be started when the seat view mounts and stopped when the view goes
// away or a booking attempt begins.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	log      *slog.Logger
	onUpdate func(*model.Availability)

	snap atomic.Pointer[model.Availability]

	// lifecycle serializes Start and Stop; mu guards the fields below.
	lifecycle sync.Mutex
	mu        sync.Mutex
	showID    string
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval.  Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger for failed ticks.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.log = l
		}
	}
}

// OnUpdate registers fn to be called after every snapshot swap.  fn runs
// on the polling goroutine and must not block.
func OnUpdate(fn func(*model.Availability)) Option {
	return func(p *Poller) { p.onUpdate = fn }
}

// New returns a stopped poller.
func New(f Fetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  f,
		interval: DefaultInterval,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling showID: one fetch right away, then one per
// interval until Stop is called or ctx ends.  Starting an already running
// poller restarts it.  Switching to a different show drops the previous
// snapshot.  Concurrent Start and Stop calls are serialized so at most
// one polling goroutine exists.
func (p *Poller) Start(ctx context.Context, showID string) {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stopLocked()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.showID != showID {
		p.snap.Store(nil)
	}
	p.showID = showID
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	go p.run(runCtx, showID, done)
	p.log.Debug("poller started", "component", "availability", "show_id", showID, "interval", p.interval)
}

// Stop halts polling and waits for the polling goroutine to exit, so no
// snapshot is published after Stop returns.  It is safe to call on a
// stopped poller.
func (p *Poller) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stopLocked()
}

// stopLocked cancels the running goroutine and waits for it.  The caller
// must hold p.lifecycle; p.mu is released while waiting so the goroutine
// can still publish its last result.
func (p *Poller) stopLocked() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the polling goroutine is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// ShowID returns the show the poller was last started for.
func (p *Poller) ShowID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.showID
}

// Snapshot returns the latest snapshot, or nil before the first
// successful poll.  The returned value is never modified.
func (p *Poller) Snapshot() *model.Availability {
	return p.snap.Load()
}

// Refresh fetches availability once, out of band, and publishes the
// result.  It works whether or not the poller is running.  Unlike a tick,
// a failed refresh is returned to the caller.
func (p *Poller) Refresh(ctx context.Context) error {
	showID := p.ShowID()
	if showID == "" {
		return nil
	}
	snap, err := p.fetcher.Availability(ctx, showID)
	if err != nil {
		return err
	}
	p.publish(showID, snap)
	return nil
}

func (p *Poller) run(ctx context.Context, showID string, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx, showID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, showID)
		}
	}
}

func (p *Poller) tick(ctx context.Context, showID string) {
	snap, err := p.fetcher.Availability(ctx, showID)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn("availability poll failed", "component", "availability", "show_id", showID, "error", err)
		}
		return
	}
	p.publish(showID, snap)
}

// publish swaps in snap unless the poller has moved on to another show.
// Responses that arrive out of order simply overwrite each other; the last
// one to land wins.
func (p *Poller) publish(showID string, snap *model.Availability) {
	if snap == nil {
		return
	}
	p.mu.Lock()
	current := p.showID
	p.mu.Unlock()
	if current != showID {
		return
	}
	p.snap.Store(snap)
	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
}
