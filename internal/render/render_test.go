package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/rickgao/idleclans-market/internal/market"
	"github.com/rickgao/idleclans-market/internal/model"
	"github.com/rickgao/idleclans-market/internal/monitor"
)

func TestFormatter_Price(t *testing.T) {
	f := NewFormatter(language.English)

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		if got := f.Price(tt.in); got != tt.want {
			t.Errorf("Price(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := f.OptionalPrice(nil); got != "-" {
		t.Errorf("OptionalPrice(nil) = %q", got)
	}
	if got := f.Volume(25000); got != "25,000" {
		t.Errorf("Volume = %q", got)
	}
}

func TestTable(t *testing.T) {
	rows := []market.Row{
		{ItemID: 1, Name: "Copper Ore", HighestBuyPrice: 1000, LowestSellPrice: 1200, Profit: 200, Profitable: true},
		{ItemID: 2, Name: "Iron Ore", HighestBuyPrice: 50, LowestSellPrice: 51, Profit: 1},
	}

	var buf bytes.Buffer
	if err := Table(&buf, rows); err != nil {
		t.Fatalf("Table failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Profit") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "1,200") || !strings.Contains(lines[1], "*") {
		t.Errorf("profitable row = %q", lines[1])
	}
	if strings.Contains(lines[2], "*") {
		t.Errorf("profit of 1 should not be marked: %q", lines[2])
	}
}

func TestCards(t *testing.T) {
	cards := []monitor.Card{
		{ItemID: 1, Name: "Copper Ore", HighestBuyPrice: model.Float(60), CustomBuyOffer: 50, Alert: model.AlertVisual},
		{ItemID: 2, Name: "Iron Ore", CustomBuyOffer: 10},
	}

	var buf bytes.Buffer
	if err := Cards(&buf, cards, true); err != nil {
		t.Fatalf("Cards failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "2/6") || !strings.Contains(out, "muted") {
		t.Errorf("missing header info:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Copper Ore") && !strings.Contains(line, "*") {
			t.Errorf("alerting card not marked: %q", line)
		}
		if strings.Contains(line, "Iron Ore") && (strings.Contains(line, "*") || !strings.Contains(line, "-")) {
			t.Errorf("quiet card rendered wrong: %q", line)
		}
	}

	buf.Reset()
	Cards(&buf, nil, false)
	if !strings.Contains(buf.String(), "no pinned items") {
		t.Errorf("empty watchlist output = %q", buf.String())
	}
}

func TestCountdown(t *testing.T) {
	var buf bytes.Buffer
	Countdown(&buf, 24600*time.Millisecond)
	if got := buf.String(); got != "Next refresh in 25s\n" {
		t.Errorf("Countdown = %q", got)
	}
}

func TestBellNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewBellNotifier(&buf)

	if err := n.Notify(context.Background(), nil); err != nil || buf.Len() != 0 {
		t.Errorf("empty notify wrote %q, err %v", buf.String(), err)
	}

	n.Notify(context.Background(), []monitor.Card{{Name: "Gold Bar"}, {Name: "Iron Ore"}})
	got := buf.String()
	if !strings.HasPrefix(got, "\a") || !strings.Contains(got, "Gold Bar, Iron Ore") {
		t.Errorf("Notify wrote %q", got)
	}
}
