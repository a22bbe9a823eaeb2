package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/idleclans-market/internal/model"
)

// Fetcher retrieves the current price list.
type Fetcher interface {
	GetLatestPrices(ctx context.Context) ([]model.PriceRecord, error)
}

// SnapshotHandler receives every successfully fetched snapshot.
type SnapshotHandler interface {
	HandleSnapshot(ctx context.Context, snapshot model.Snapshot) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(context.Context, model.Snapshot) error

func (f SnapshotHandlerFunc) HandleSnapshot(ctx context.Context, s model.Snapshot) error {
	return f(ctx, s)
}

// CountdownFunc is called every CountdownInterval with the time left until
// the next automatic fetch.
type CountdownFunc func(remaining time.Duration)

// Config holds poller configuration.
type Config struct {
	Interval          time.Duration // Fetch interval (default: 30s)
	Timeout           time.Duration // Per-fetch timeout (default: 30s)
	FetchOnStart      bool          // Fetch immediately when started
	CountdownInterval time.Duration // Countdown tick (default: 1s, 0 disables)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:          30 * time.Second,
		Timeout:           30 * time.Second,
		FetchOnStart:      true,
		CountdownInterval: time.Second,
	}
}

// Stats is a point-in-time view of poller activity.
type Stats struct {
	Fetches     int64     `json:"fetches"`
	Failures    int64     `json:"failures"`
	Coalesced   int64     `json:"coalesced"`
	LastSuccess time.Time `json:"lastSuccess,omitzero"`
	LastError   string    `json:"lastError,omitempty"`
	NextFetch   time.Time `json:"nextFetch,omitzero"`
}

// ErrBusy is returned by Refresh when the caller's context ends while
// another fetch holds the slot.
var ErrBusy = errors.New("fetch already in progress")

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

// WithCountdown registers a countdown callback.
func WithCountdown(fn CountdownFunc) Option {
	return func(p *Poller) {
		p.onCountdown = fn
	}
}

// Poller periodically fetches market snapshots.
type Poller struct {
	cfg         Config
	fetcher     Fetcher
	handler     SnapshotHandler
	clock       Clock
	onCountdown CountdownFunc
	logger      *slog.Logger

	// slot holds one token; whoever owns it is the single in-flight fetch.
	slot    chan struct{}
	trigger chan struct{}

	mu    sync.Mutex
	stats Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, fetcher Fetcher, handler SnapshotHandler, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	p := &Poller{
		cfg:     cfg,
		fetcher: fetcher,
		handler: handler,
		clock:   realClock{},
		logger:  logger,
		slot:    make(chan struct{}, 1),
		trigger: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.slot <- struct{}{}
	return p
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("market poller started",
		"interval", p.cfg.Interval,
		"fetch_on_start", p.cfg.FetchOnStart,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("market poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger requests an immediate fetch from the running loop. It never
// blocks; if a request is already queued the new one is merged into it and
// false is returned.
func (p *Poller) Trigger() bool {
	select {
	case p.trigger <- struct{}{}:
		return true
	default:
		p.mu.Lock()
		p.stats.Coalesced++
		p.mu.Unlock()
		return false
	}
}

// Refresh performs one fetch synchronously, waiting for any in-flight fetch
// to finish first. The handler is invoked on success.
func (p *Poller) Refresh(ctx context.Context) (model.Snapshot, error) {
	select {
	case <-p.slot:
	case <-ctx.Done():
		return model.Snapshot{}, ErrBusy
	}
	defer func() { p.slot <- struct{}{} }()

	return p.fetch(ctx)
}

// Remaining returns the time left until the next automatic fetch.
func (p *Poller) Remaining() time.Duration {
	p.mu.Lock()
	next := p.stats.NextFetch
	p.mu.Unlock()

	if next.IsZero() {
		return 0
	}
	if d := next.Sub(p.clock.Now()); d > 0 {
		return d
	}
	return 0
}

// Stats returns a copy of the poller counters.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := p.clock.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	p.scheduleNext()

	// Countdown ticks are served off the fetch loop.
	if p.cfg.CountdownInterval > 0 && p.onCountdown != nil {
		p.wg.Add(1)
		go p.countdown(p.clock.NewTicker(p.cfg.CountdownInterval))
	}

	if p.cfg.FetchOnStart {
		p.poll()
	}

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C():
			p.scheduleNext()
			p.poll()
		case <-p.trigger:
			ticker.Reset(p.cfg.Interval)
			p.scheduleNext()
			p.logger.Debug("manual refresh")
			p.poll()
		}
	}
}

// countdown reports the time left until the next automatic fetch on every
// tick until the poller stops.
func (p *Poller) countdown(ct Ticker) {
	defer p.wg.Done()
	defer ct.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ct.C():
			p.onCountdown(p.Remaining())
		}
	}
}

// poll runs one fetch from the loop. A failure is logged and the loop
// carries on with the previous snapshot.
func (p *Poller) poll() {
	select {
	case <-p.slot:
	case <-p.ctx.Done():
		return
	}
	defer func() { p.slot <- struct{}{} }()

	if _, err := p.fetch(p.ctx); err != nil && p.ctx.Err() == nil {
		p.logger.Warn("market fetch failed", "err", err)
	}
}

// fetch retrieves prices and hands the snapshot to the handler. The caller
// must own the slot.
func (p *Poller) fetch(ctx context.Context) (model.Snapshot, error) {
	start := p.clock.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	records, err := p.fetcher.GetLatestPrices(fetchCtx)
	if err != nil {
		p.mu.Lock()
		p.stats.Failures++
		p.stats.LastError = err.Error()
		p.mu.Unlock()
		return model.Snapshot{}, err
	}

	snapshot := model.Snapshot{FetchedAt: p.clock.Now(), Records: records}

	p.mu.Lock()
	p.stats.Fetches++
	p.stats.LastSuccess = snapshot.FetchedAt
	p.stats.LastError = ""
	p.mu.Unlock()

	p.logger.Info("market fetch complete",
		"records", len(records),
		"duration", p.clock.Now().Sub(start),
	)

	if p.handler != nil {
		if err := p.handler.HandleSnapshot(ctx, snapshot); err != nil {
			p.logger.Warn("snapshot handler failed", "err", err)
		}
	}

	return snapshot, nil
}

func (p *Poller) scheduleNext() {
	p.mu.Lock()
	p.stats.NextFetch = p.clock.Now().Add(p.cfg.Interval)
	p.mu.Unlock()
}
