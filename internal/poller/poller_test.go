package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/idleclans-market/internal/api"
	"github.com/rickgao/idleclans-market/internal/model"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1), period: d}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) ticker(t *testing.T, i int) *fakeTicker {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.tickers) > i {
			tk := c.tickers[i]
			c.mu.Unlock()
			return tk
		}
		c.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("ticker %d never created", i)
	return nil
}

type fakeTicker struct {
	ch     chan time.Time
	mu     sync.Mutex
	period time.Duration
	resets int
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Reset(d time.Duration) {
	t.mu.Lock()
	t.period = d
	t.resets++
	t.mu.Unlock()
}

func (t *fakeTicker) Stop() {}

func (t *fakeTicker) Resets() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resets
}

// fakeFetcher returns queued results and tracks concurrency.
type fakeFetcher struct {
	mu      sync.Mutex
	errs    []error
	release chan struct{} // If set, each call waits for a token
	started chan struct{}

	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeFetcher) GetLatestPrices(ctx context.Context) ([]model.PriceRecord, error) {
	n := f.calls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		old := f.maxInFlight.Load()
		if cur <= old || f.maxInFlight.CompareAndSwap(old, cur) {
			break
		}
	}

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return []model.PriceRecord{{ItemID: int(n), HighestBuyPrice: model.Float(float64(n))}}, nil
}

func collect() (SnapshotHandler, <-chan model.Snapshot) {
	ch := make(chan model.Snapshot, 16)
	return SnapshotHandlerFunc(func(_ context.Context, s model.Snapshot) error {
		ch <- s
		return nil
	}), ch
}

func waitSnapshot(t *testing.T, ch <-chan model.Snapshot) model.Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return model.Snapshot{}
	}
}

func stop(t *testing.T, p *Poller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestPoller_RefreshWithAPIClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != api.PricesPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"itemId":1,"lowestSellPrice":12,"highestBuyPrice":10},{"itemId":2}]`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTimeout(5*time.Second))
	handler, got := collect()
	clock := newFakeClock()

	p := New(DefaultConfig(), client, handler, nil, WithClock(clock))

	snap, err := p.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(snap.Records))
	}
	if !snap.FetchedAt.Equal(clock.Now()) {
		t.Errorf("FetchedAt = %v, want %v", snap.FetchedAt, clock.Now())
	}
	if h := waitSnapshot(t, got); len(h.Records) != 2 {
		t.Errorf("handler got %d records", len(h.Records))
	}
	if s := p.Stats(); s.Fetches != 1 || s.Failures != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestPoller_FailedFetchKeepsRunning(t *testing.T) {
	fetcher := &fakeFetcher{errs: []error{errors.New("connection refused")}}
	handler, got := collect()
	clock := newFakeClock()

	cfg := Config{Interval: 30 * time.Second, Timeout: time.Second, FetchOnStart: true}
	p := New(cfg, fetcher, handler, nil, WithClock(clock))

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stop(t, p)

	clock.ticker(t, 0).ch <- clock.Now()

	snap := waitSnapshot(t, got)
	if snap.Records[0].ItemID != 2 {
		t.Errorf("snapshot from call %d, want 2", snap.Records[0].ItemID)
	}

	s := p.Stats()
	if s.Failures != 1 || s.Fetches != 1 {
		t.Errorf("stats = %+v, want 1 failure and 1 fetch", s)
	}
	if s.LastError != "" {
		t.Errorf("LastError should clear after success, got %q", s.LastError)
	}
}

func TestPoller_SingleFlight(t *testing.T) {
	fetcher := &fakeFetcher{
		release: make(chan struct{}),
		started: make(chan struct{}, 8),
	}
	handler, got := collect()

	cfg := Config{Interval: time.Hour, Timeout: 5 * time.Second, FetchOnStart: true}
	p := New(cfg, fetcher, handler, nil, WithClock(newFakeClock()))

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stop(t, p)

	<-fetcher.started // startup fetch is now blocked

	if !p.Trigger() {
		t.Error("first Trigger should be queued")
	}
	if p.Trigger() {
		t.Error("second Trigger should coalesce")
	}

	refreshed := make(chan error, 1)
	go func() {
		_, err := p.Refresh(context.Background())
		refreshed <- err
	}()

	for i := 0; i < 3; i++ {
		fetcher.release <- struct{}{}
		waitSnapshot(t, got)
	}
	if err := <-refreshed; err != nil {
		t.Errorf("Refresh failed: %v", err)
	}

	if n := fetcher.calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
	if m := fetcher.maxInFlight.Load(); m != 1 {
		t.Errorf("maxInFlight = %d, want 1", m)
	}
	if c := p.Stats().Coalesced; c != 1 {
		t.Errorf("coalesced = %d, want 1", c)
	}
}

func TestPoller_TriggerRestartsInterval(t *testing.T) {
	fetcher := &fakeFetcher{}
	handler, got := collect()
	clock := newFakeClock()

	cfg := Config{Interval: 30 * time.Second, Timeout: time.Second}
	p := New(cfg, fetcher, handler, nil, WithClock(clock))

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stop(t, p)

	tk := clock.ticker(t, 0)
	waitFor(t, func() bool { return !p.Stats().NextFetch.IsZero() })

	clock.Advance(20 * time.Second)
	if r := p.Remaining(); r != 10*time.Second {
		t.Errorf("Remaining = %v, want 10s", r)
	}

	p.Trigger()
	waitSnapshot(t, got)

	if r := p.Remaining(); r != 30*time.Second {
		t.Errorf("Remaining after trigger = %v, want 30s", r)
	}
	if tk.Resets() != 1 {
		t.Errorf("ticker resets = %d, want 1", tk.Resets())
	}
}

func TestPoller_Countdown(t *testing.T) {
	clock := newFakeClock()
	remaining := make(chan time.Duration, 4)

	cfg := Config{Interval: 30 * time.Second, Timeout: time.Second, CountdownInterval: time.Second}
	p := New(cfg, &fakeFetcher{}, nil, nil,
		WithClock(clock),
		WithCountdown(func(d time.Duration) { remaining <- d }),
	)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stop(t, p)

	ct := clock.ticker(t, 1)
	clock.Advance(5 * time.Second)
	ct.ch <- clock.Now()

	select {
	case d := <-remaining:
		if d != 25*time.Second {
			t.Errorf("countdown = %v, want 25s", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("countdown callback not called")
	}
}

func TestPoller_CountdownDuringSlowFetch(t *testing.T) {
	clock := newFakeClock()
	remaining := make(chan time.Duration, 4)
	fetcher := &fakeFetcher{release: make(chan struct{}), started: make(chan struct{}, 1)}

	cfg := Config{Interval: 30 * time.Second, Timeout: time.Minute, FetchOnStart: true, CountdownInterval: time.Second}
	p := New(cfg, fetcher, nil, nil,
		WithClock(clock),
		WithCountdown(func(d time.Duration) { remaining <- d }),
	)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stop(t, p)

	<-fetcher.started // startup fetch is held open

	ct := clock.ticker(t, 1)
	for _, want := range []time.Duration{27 * time.Second, 24 * time.Second} {
		clock.Advance(3 * time.Second)
		ct.ch <- clock.Now()

		select {
		case d := <-remaining:
			if d != want {
				t.Errorf("countdown = %v, want %v", d, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("countdown stalled while a fetch was in flight")
		}
	}

	fetcher.release <- struct{}{}
}

func TestPoller_StartStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	var called atomic.Bool
	handler := SnapshotHandlerFunc(func(_ context.Context, s model.Snapshot) error {
		called.Store(true)
		return nil
	})

	cfg := Config{Interval: 50 * time.Millisecond, Timeout: 5 * time.Second}
	p := New(cfg, api.NewClient(server.URL), handler, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, called.Load)
	stop(t, p)
}

func TestPoller_RefreshCancelledWhileBusy(t *testing.T) {
	fetcher := &fakeFetcher{release: make(chan struct{}), started: make(chan struct{}, 1)}
	p := New(Config{Interval: time.Hour, FetchOnStart: true}, fetcher, nil, nil, WithClock(newFakeClock()))

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stop(t, p)
	<-fetcher.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Refresh(ctx); !errors.Is(err, ErrBusy) {
		t.Errorf("Refresh err = %v, want ErrBusy", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
