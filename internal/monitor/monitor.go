package monitor

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/idleclans-market/internal/items"
	"github.com/rickgao/idleclans-market/internal/market"
	"github.com/rickgao/idleclans-market/internal/model"
	"github.com/rickgao/idleclans-market/internal/watchlist"
)

// subscriberBuffer is the number of updates queued per subscriber before
// new ones are dropped.
const subscriberBuffer = 8

// subscriber is one update channel. pending holds sound item IDs from
// dropped updates until one is delivered.
type subscriber struct {
	ch      chan Update
	pending []int
}

// Store persists the snapshot and the pinned list. *store.Store satisfies it.
type Store interface {
	LoadSnapshot(ctx context.Context) (model.Snapshot, bool)
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error
	watchlist.Persister
}

// Notifier plays the alert sound for cards that just started alerting.
type Notifier interface {
	Notify(ctx context.Context, cards []Card) error
}

// Card is a pinned item ready for display.
type Card struct {
	ItemID          int              `json:"itemId"`
	Name            string           `json:"name"`
	HighestBuyPrice *float64         `json:"highestBuyPrice"`
	CustomBuyOffer  float64          `json:"customBuyOffer"`
	Alert           model.AlertLevel `json:"alert"`
}

// Update is published after every state change.
type Update struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Records   int       `json:"records"`
	Cards     []Card    `json:"cards"`
	Muted     bool      `json:"muted"`
	Sound     []int     `json:"sound,omitempty"` // Item IDs that crossed into alert
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithNotifier adds a sound notifier. May be given more than once.
func WithNotifier(n Notifier) Option {
	return func(m *Monitor) {
		m.notifiers = append(m.notifiers, n)
	}
}

// WithResolver sets the item name resolver.
func WithResolver(r items.Resolver) Option {
	return func(m *Monitor) {
		m.names = r
	}
}

// Monitor owns the latest snapshot and the watchlist.
type Monitor struct {
	store     Store
	engine    *watchlist.Engine
	names     items.Resolver
	notifiers []Notifier
	logger    *slog.Logger

	// opMu orders mutations so alerts are applied in the order they were
	// evaluated.
	opMu sync.Mutex

	mu       sync.RWMutex
	snapshot model.Snapshot
	alerts   map[int]model.AlertLevel

	subsMu sync.Mutex
	subs   map[uuid.UUID]*subscriber
}

// New creates a Monitor backed by st.
func New(st Store, logger *slog.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Monitor{
		store:  st,
		names:  items.Fallback{},
		logger: logger,
		alerts: make(map[int]model.AlertLevel),
		subs:   make(map[uuid.UUID]*subscriber),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.engine = watchlist.New(m, st, logger.With("component", "watchlist"))
	return m
}

// Engine returns the watchlist engine.
func (m *Monitor) Engine() *watchlist.Engine {
	return m.engine
}

// Names returns the item name resolver.
func (m *Monitor) Names() items.Resolver {
	return m.names
}

// Restore loads the cached snapshot and pinned list. It reports whether a
// cached snapshot was found.
func (m *Monitor) Restore(ctx context.Context) bool {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	snap, ok := m.store.LoadSnapshot(ctx)
	if ok {
		m.mu.Lock()
		m.snapshot = snap
		m.mu.Unlock()
		m.logger.Info("cached snapshot restored",
			"records", len(snap.Records),
			"fetched_at", snap.FetchedAt,
		)
	}

	m.engine.Restore(ctx)
	m.apply(ctx, m.engine.Evaluate())
	return ok
}

// HandleSnapshot stores snap, makes it current and reconciles the
// watchlist against it. A failed save is logged and the new snapshot is
// still used.
func (m *Monitor) HandleSnapshot(ctx context.Context, snap model.Snapshot) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.store.SaveSnapshot(ctx, snap); err != nil {
		m.logger.Warn("failed to save snapshot", "err", err)
	}

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	m.apply(ctx, m.engine.Reconcile(ctx, snap))
	return nil
}

// Lookup finds itemID in the current snapshot.
func (m *Monitor) Lookup(itemID int) (model.PriceRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot.Lookup(itemID)
}

// Snapshot returns the current snapshot.
func (m *Monitor) Snapshot() model.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Table renders the current snapshot for q.
func (m *Monitor) Table(q market.Query) market.Table {
	return market.Apply(m.Snapshot().Records, m.names, q)
}

// Suggest returns live search suggestions for query.
func (m *Monitor) Suggest(query string, limit int) []string {
	return market.Suggest(m.Snapshot().Records, m.names, query, limit)
}

// Pin adds itemID to the watchlist.
func (m *Monitor) Pin(ctx context.Context, itemID int) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.engine.Pin(ctx, itemID); err != nil {
		return err
	}
	m.apply(ctx, m.engine.Evaluate())
	return nil
}

// Unpin removes itemID from the watchlist.
func (m *Monitor) Unpin(ctx context.Context, itemID int) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.engine.Unpin(ctx, itemID); err != nil {
		return err
	}
	m.apply(ctx, m.engine.Evaluate())
	return nil
}

// SetOffer updates the custom buy offer for a pinned item.
func (m *Monitor) SetOffer(ctx context.Context, itemID int, raw string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.engine.SetCustomBuyOffer(ctx, itemID, raw); err != nil {
		return err
	}
	m.apply(ctx, m.engine.Evaluate())
	return nil
}

// ToggleMute flips the mute state and returns it.
func (m *Monitor) ToggleMute() bool {
	muted := m.engine.ToggleMute()
	m.logger.Info("alert sound toggled", "muted", muted)
	m.publish(m.update(nil))
	return muted
}

// SetMuted sets the mute state.
func (m *Monitor) SetMuted(muted bool) {
	m.engine.SetMuted(muted)
	m.publish(m.update(nil))
}

// Cards returns the watchlist with names and the last evaluated alerts.
func (m *Monitor) Cards() []Card {
	pinned := m.engine.Items()

	m.mu.RLock()
	defer m.mu.RUnlock()

	cards := make([]Card, len(pinned))
	for i, p := range pinned {
		name, _ := m.names.Name(p.ItemID)
		cards[i] = Card{
			ItemID:          p.ItemID,
			Name:            name,
			HighestBuyPrice: p.HighestBuyPrice,
			CustomBuyOffer:  p.CustomBuyOffer,
			Alert:           m.alerts[p.ItemID],
		}
	}
	return cards
}

// Current returns the latest Update without a sound.
func (m *Monitor) Current() Update {
	return m.update(nil)
}

// Subscribe registers for updates. The channel is closed by Unsubscribe.
//
// A subscriber that falls behind misses whole updates, but the Sound IDs of
// missed updates are carried into the next update it receives.
func (m *Monitor) Subscribe() (uuid.UUID, <-chan Update) {
	id := uuid.New()
	ch := make(chan Update, subscriberBuffer)

	m.subsMu.Lock()
	m.subs[id] = &subscriber{ch: ch}
	m.subsMu.Unlock()

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (m *Monitor) Unsubscribe(id uuid.UUID) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	if sub, ok := m.subs[id]; ok {
		delete(m.subs, id)
		close(sub.ch)
	}
}

// apply records alerts, rings notifiers for new edges and publishes.
func (m *Monitor) apply(ctx context.Context, alerts []watchlist.Alert) {
	levels := make(map[int]model.AlertLevel, len(alerts))
	var sound []int
	for _, a := range alerts {
		levels[a.ItemID] = a.Level
		if a.Level == model.AlertVisualSound {
			sound = append(sound, a.ItemID)
		}
	}

	m.mu.Lock()
	m.alerts = levels
	m.mu.Unlock()

	u := m.update(sound)
	if len(sound) > 0 {
		m.notify(ctx, u.Cards, sound)
	}
	m.publish(u)
}

func (m *Monitor) notify(ctx context.Context, cards []Card, sound []int) {
	ringing := make([]Card, 0, len(sound))
	for _, c := range cards {
		for _, id := range sound {
			if c.ItemID == id {
				ringing = append(ringing, c)
			}
		}
	}

	for _, n := range m.notifiers {
		if err := n.Notify(ctx, ringing); err != nil {
			m.logger.Warn("alert notifier failed", "err", err)
		}
	}
}

func (m *Monitor) update(sound []int) Update {
	snap := m.Snapshot()
	return Update{
		FetchedAt: snap.FetchedAt,
		Records:   len(snap.Records),
		Cards:     m.Cards(),
		Muted:     m.engine.Muted(),
		Sound:     sound,
	}
}

// publish fans u out without blocking. Subscribers with a full buffer miss
// it and keep its sound IDs pending.
func (m *Monitor) publish(u Update) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	for id, sub := range m.subs {
		out := u
		if len(sub.pending) > 0 {
			out.Sound = mergeSound(sub.pending, u.Sound)
		}
		select {
		case sub.ch <- out:
			sub.pending = nil
		default:
			sub.pending = out.Sound
			m.logger.Debug("dropping update for slow subscriber", "subscriber", id, "pending_sound", len(sub.pending))
		}
	}
}

// mergeSound returns the IDs of a followed by those of b not already in a.
func mergeSound(a, b []int) []int {
	out := slices.Clone(a)
	for _, id := range b {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
