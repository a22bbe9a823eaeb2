package model

import (
	"fmt"
	"math"
	"time"
)

// MaxPinned is the number of items a watchlist can hold at once.
const MaxPinned = 6

// -----------------------------------------------------------------------------
// Market Types
// -----------------------------------------------------------------------------

// PriceRecord is the latest order book summary for a single item.
type PriceRecord struct {
	ItemID             int      `json:"itemId"`
	LowestSellPrice    *float64 `json:"lowestSellPrice,omitempty"`
	LowestPriceVolume  *int64   `json:"lowestPriceVolume,omitempty"`
	HighestBuyPrice    *float64 `json:"highestBuyPrice,omitempty"`
	HighestPriceVolume *int64   `json:"highestPriceVolume,omitempty"`
}

// Profit returns the spread between the lowest sell and highest buy price.
// ok is false when either side is missing.
func (r PriceRecord) Profit() (profit float64, ok bool) {
	if r.LowestSellPrice == nil || r.HighestBuyPrice == nil {
		return 0, false
	}
	return *r.LowestSellPrice - *r.HighestBuyPrice, true
}

// Snapshot is one complete fetch of market prices. A new snapshot replaces
// the previous one wholesale.
type Snapshot struct {
	FetchedAt time.Time     `json:"fetchedAt"`
	Records   []PriceRecord `json:"records"`
}

// Lookup returns the record for itemID.
func (s Snapshot) Lookup(itemID int) (PriceRecord, bool) {
	for _, r := range s.Records {
		if r.ItemID == itemID {
			return r, true
		}
	}
	return PriceRecord{}, false
}

// Index returns the snapshot keyed by item ID. Later duplicates win.
func (s Snapshot) Index() map[int]PriceRecord {
	idx := make(map[int]PriceRecord, len(s.Records))
	for _, r := range s.Records {
		idx[r.ItemID] = r
	}
	return idx
}

// IsEmpty reports whether the snapshot holds no records.
func (s Snapshot) IsEmpty() bool {
	return len(s.Records) == 0
}

// -----------------------------------------------------------------------------
// Watchlist Types
// -----------------------------------------------------------------------------

// PinnedItem is an item the user tracks with a custom buy offer.
type PinnedItem struct {
	ItemID          int      `json:"itemId"`
	HighestBuyPrice *float64 `json:"highestBuyPrice"` // Mirrored from the latest snapshot
	CustomBuyOffer  float64  `json:"customBuyOffer"`  // User entered, defaults to 0
}

// Alerting reports whether the market now buys above the user's offer.
func (p PinnedItem) Alerting() bool {
	if p.HighestBuyPrice == nil {
		return false
	}
	buy := *p.HighestBuyPrice
	if math.IsNaN(buy) || math.IsNaN(p.CustomBuyOffer) {
		return false
	}
	return p.CustomBuyOffer < buy
}

// AlertLevel is the presentation a pinned item should get on render.
type AlertLevel int

const (
	AlertNone        AlertLevel = iota // No highlight
	AlertVisual                        // Highlight while the condition holds
	AlertVisualSound                   // Highlight and play the notification sound
)

func (l AlertLevel) String() string {
	switch l {
	case AlertVisual:
		return "visual"
	case AlertVisualSound:
		return "visual+sound"
	default:
		return "none"
	}
}

// MarshalText encodes the level as its String form.
func (l AlertLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level written by MarshalText.
func (l *AlertLevel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*l = AlertNone
	case "visual":
		*l = AlertVisual
	case "visual+sound":
		*l = AlertVisualSound
	default:
		return fmt.Errorf("unknown alert level %q", text)
	}
	return nil
}

// Highlighted reports whether the level carries a visual highlight.
func (l AlertLevel) Highlighted() bool {
	return l != AlertNone
}

// Float returns a pointer to v. Used for optional price fields.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v. Used for optional volume fields.
func Int(v int64) *int64 {
	return &v
}
