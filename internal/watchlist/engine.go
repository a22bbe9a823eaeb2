package watchlist

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/rickgao/idleclans-market/internal/model"
)

// PriceLookup finds an item in the latest snapshot.
type PriceLookup interface {
	Lookup(itemID int) (model.PriceRecord, bool)
}

// Persister stores the pinned list. *store.Store satisfies it.
type Persister interface {
	LoadPinned(ctx context.Context) []model.PinnedItem
	SavePinned(ctx context.Context, items []model.PinnedItem) error
}

// Alert is the evaluated alert level for one pinned item.
type Alert struct {
	ItemID int              `json:"itemId"`
	Level  model.AlertLevel `json:"level"`
}

// Engine manages the pinned-item list. It is safe for concurrent use.
type Engine struct {
	prices    PriceLookup
	persister Persister
	logger    *slog.Logger

	mu       sync.Mutex
	items    []model.PinnedItem
	alerting map[int]bool // Last seen alert condition per item, for edge detection
	muted    bool
}

// New creates an empty Engine. Call Restore to load a saved list.
func New(prices PriceLookup, persister Persister, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		prices:    prices,
		persister: persister,
		logger:    logger,
		alerting:  make(map[int]bool),
	}
}

// Restore replaces the in-memory list with the persisted one. Items that
// are already alerting on restore do not play a sound.
func (e *Engine) Restore(ctx context.Context) int {
	if e.persister == nil {
		return 0
	}
	loaded := e.persister.LoadPinned(ctx)
	if len(loaded) > model.MaxPinned {
		loaded = loaded[:model.MaxPinned]
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = loaded
	e.alerting = make(map[int]bool, len(loaded))
	for _, item := range loaded {
		e.alerting[item.ItemID] = item.Alerting()
	}

	e.logger.Info("watchlist restored", "items", len(loaded))
	return len(loaded)
}

// Pin adds itemID with a zero buy offer. Pinning an item that is already
// pinned does nothing.
func (e *Engine) Pin(ctx context.Context, itemID int) error {
	var rec model.PriceRecord
	var ok bool
	if e.prices != nil {
		rec, ok = e.prices.Lookup(itemID)
	}
	if !ok {
		return fmt.Errorf("pin %d: %w", itemID, ErrItemNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexOf(itemID) >= 0 {
		return nil
	}
	if len(e.items) >= model.MaxPinned {
		return fmt.Errorf("pin %d: %w (max %d items)", itemID, ErrCapacityExceeded, model.MaxPinned)
	}

	next := append(slices.Clone(e.items), model.PinnedItem{
		ItemID:          itemID,
		HighestBuyPrice: rec.HighestBuyPrice,
	})
	e.commit(ctx, next)

	e.logger.Debug("item pinned", "item_id", itemID, "pinned", len(next))
	return nil
}

// Unpin removes itemID if present.
func (e *Engine) Unpin(ctx context.Context, itemID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(itemID)
	if i < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(e.items), i, i+1)
	delete(e.alerting, itemID)
	e.commit(ctx, next)

	e.logger.Debug("item unpinned", "item_id", itemID, "pinned", len(next))
	return nil
}

// SetCustomBuyOffer parses raw as the new offer for a pinned item. Input
// that is not a finite number is stored as 0.
func (e *Engine) SetCustomBuyOffer(ctx context.Context, itemID int, raw string) error {
	offer := ParseOffer(raw)

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(itemID)
	if i < 0 {
		return fmt.Errorf("set offer %d: %w", itemID, ErrItemNotFound)
	}

	next := slices.Clone(e.items)
	next[i].CustomBuyOffer = offer
	e.commit(ctx, next)
	return nil
}

// ParseOffer converts user input to an offer. Invalid input is 0.
func ParseOffer(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Reconcile copies highest buy prices from snap into the pinned list,
// persists it and evaluates every item's alert. Items missing from snap keep
// their last known price. Custom offers are never changed.
func (e *Engine) Reconcile(ctx context.Context, snap model.Snapshot) []Alert {
	idx := snap.Index()

	e.mu.Lock()
	defer e.mu.Unlock()

	next := slices.Clone(e.items)
	for i := range next {
		if rec, ok := idx[next[i].ItemID]; ok {
			next[i].HighestBuyPrice = rec.HighestBuyPrice
		}
	}
	e.commit(ctx, next)

	return e.evaluateAllLocked()
}

// Evaluate returns the alert level of every pinned item, advancing the
// edge state.
func (e *Engine) Evaluate() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluateAllLocked()
}

// EvaluateAlert returns the alert level for item. The visual level holds
// while the condition does; sound is returned only on the call that first
// sees the condition become true, and is swallowed while muted.
func (e *Engine) EvaluateAlert(item model.PinnedItem) model.AlertLevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluateLocked(item)
}

func (e *Engine) evaluateLocked(item model.PinnedItem) model.AlertLevel {
	if !item.Alerting() {
		e.alerting[item.ItemID] = false
		return model.AlertNone
	}
	if e.alerting[item.ItemID] {
		return model.AlertVisual
	}
	e.alerting[item.ItemID] = true
	if e.muted {
		return model.AlertVisual
	}
	return model.AlertVisualSound
}

func (e *Engine) evaluateAllLocked() []Alert {
	alerts := make([]Alert, len(e.items))
	for i, item := range e.items {
		alerts[i] = Alert{ItemID: item.ItemID, Level: e.evaluateLocked(item)}
	}
	return alerts
}

// Items returns a copy of the pinned list in pin order.
func (e *Engine) Items() []model.PinnedItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.items)
}

// SetMuted sets the mute state.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	e.muted = muted
	e.mu.Unlock()
}

// Muted reports whether sound is muted.
func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// ToggleMute flips the mute state and returns the new value.
func (e *Engine) ToggleMute() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = !e.muted
	return e.muted
}

// commit persists next and swaps it in. A persist failure is logged and the
// in-memory list still advances. Caller holds e.mu.
func (e *Engine) commit(ctx context.Context, next []model.PinnedItem) {
	if e.persister != nil {
		if err := e.persister.SavePinned(ctx, next); err != nil {
			e.logger.Warn("failed to persist watchlist", "err", err)
		}
	}
	e.items = next
}

func (e *Engine) indexOf(itemID int) int {
	return slices.IndexFunc(e.items, func(p model.PinnedItem) bool {
		return p.ItemID == itemID
	})
}
