package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rickgao/idleclans-market/internal/monitor"
)

// BellNotifier rings the terminal bell for alerting cards.
type BellNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBellNotifier creates a notifier writing to w.
func NewBellNotifier(w io.Writer) *BellNotifier {
	return &BellNotifier{w: w}
}

// Notify writes a bell and the names of the items that crossed their offer.
func (b *BellNotifier) Notify(_ context.Context, cards []monitor.Card) error {
	if len(cards) == 0 {
		return nil
	}

	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := fmt.Fprintf(b.w, "\a%s: market buy price above your offer\n", strings.Join(names, ", "))
	return err
}
