package model

import (
	"math"
	"testing"
	"time"
)

func TestPriceRecord_Profit(t *testing.T) {
	tests := []struct {
		name   string
		record PriceRecord
		want   float64
		wantOK bool
	}{
		{
			name:   "both prices present",
			record: PriceRecord{ItemID: 1, LowestSellPrice: Float(120), HighestBuyPrice: Float(100)},
			want:   20,
			wantOK: true,
		},
		{
			name:   "negative spread",
			record: PriceRecord{ItemID: 1, LowestSellPrice: Float(90), HighestBuyPrice: Float(100)},
			want:   -10,
			wantOK: true,
		},
		{
			name:   "missing sell price",
			record: PriceRecord{ItemID: 1, HighestBuyPrice: Float(100)},
			wantOK: false,
		},
		{
			name:   "missing buy price",
			record: PriceRecord{ItemID: 1, LowestSellPrice: Float(100)},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.record.Profit()
			if ok != tt.wantOK {
				t.Fatalf("Profit() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Profit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshot_Lookup(t *testing.T) {
	s := Snapshot{
		FetchedAt: time.Now(),
		Records: []PriceRecord{
			{ItemID: 1, HighestBuyPrice: Float(10)},
			{ItemID: 2, HighestBuyPrice: Float(20)},
		},
	}

	r, ok := s.Lookup(2)
	if !ok {
		t.Fatal("item 2 not found")
	}
	if *r.HighestBuyPrice != 20 {
		t.Errorf("HighestBuyPrice = %v, want 20", *r.HighestBuyPrice)
	}

	if _, ok := s.Lookup(3); ok {
		t.Error("expected item 3 not found")
	}

	idx := s.Index()
	if len(idx) != 2 {
		t.Errorf("len(Index()) = %d, want 2", len(idx))
	}
	if s.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
	if !(Snapshot{}).IsEmpty() {
		t.Error("zero Snapshot should be empty")
	}
}

func TestPinnedItem_Alerting(t *testing.T) {
	tests := []struct {
		name string
		item PinnedItem
		want bool
	}{
		{"offer below buy price", PinnedItem{ItemID: 1, HighestBuyPrice: Float(100), CustomBuyOffer: 90}, true},
		{"offer equal to buy price", PinnedItem{ItemID: 1, HighestBuyPrice: Float(100), CustomBuyOffer: 100}, false},
		{"offer above buy price", PinnedItem{ItemID: 1, HighestBuyPrice: Float(100), CustomBuyOffer: 110}, false},
		{"no buy price", PinnedItem{ItemID: 1, CustomBuyOffer: 10}, false},
		{"default offer", PinnedItem{ItemID: 1, HighestBuyPrice: Float(5)}, true},
		{"NaN offer", PinnedItem{ItemID: 1, HighestBuyPrice: Float(5), CustomBuyOffer: math.NaN()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Alerting(); got != tt.want {
				t.Errorf("Alerting() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlertLevel_String(t *testing.T) {
	tests := []struct {
		level       AlertLevel
		want        string
		highlighted bool
	}{
		{AlertNone, "none", false},
		{AlertVisual, "visual", true},
		{AlertVisualSound, "visual+sound", true},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if got := tt.level.Highlighted(); got != tt.highlighted {
			t.Errorf("%s Highlighted() = %v, want %v", tt.want, got, tt.highlighted)
		}
	}
}

func TestAlertLevel_Text(t *testing.T) {
	for _, l := range []AlertLevel{AlertNone, AlertVisual, AlertVisualSound} {
		text, err := l.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", l, err)
		}
		var got AlertLevel
		if err := got.UnmarshalText(text); err != nil || got != l {
			t.Errorf("UnmarshalText(%q) = %v, %v", text, got, err)
		}
	}

	var l AlertLevel
	if err := l.UnmarshalText([]byte("loud")); err == nil {
		t.Error("expected error for unknown level")
	}
}
