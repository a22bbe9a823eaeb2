package render

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rickgao/idleclans-market/internal/market"
	"github.com/rickgao/idleclans-market/internal/monitor"
)

const (
	minWidth = 4
	tabWidth = 8
	padding  = 2
)

// Table writes rows as an aligned text table.
func Table(w io.Writer, rows []market.Row) error {
	return defaultFormatter.Table(w, rows)
}

// Table writes rows as an aligned text table.
func (f *Formatter) Table(w io.Writer, rows []market.Row) error {
	tw := tabwriter.NewWriter(w, minWidth, tabWidth, padding, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "ID\tName\tBuy Price\tSell Price\tBuy Volume\tSell Volume\tProfit\t\t")
	for _, r := range rows {
		mark := ""
		if r.Profitable {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.ItemID,
			r.Name,
			f.Price(r.HighestBuyPrice),
			f.Price(r.LowestSellPrice),
			f.Volume(r.HighestPriceVolume),
			f.Volume(r.LowestPriceVolume),
			f.Price(r.Profit),
			mark,
		)
	}

	return tw.Flush()
}

// Cards writes the watchlist.
func Cards(w io.Writer, cards []monitor.Card, muted bool) error {
	return defaultFormatter.Cards(w, cards, muted)
}

// Cards writes the watchlist.
func (f *Formatter) Cards(w io.Writer, cards []monitor.Card, muted bool) error {
	sound := "on"
	if muted {
		sound = "muted"
	}
	fmt.Fprintf(w, "Watchlist (%d/6, sound %s)\n", len(cards), sound)
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, "  no pinned items")
		return err
	}

	tw := tabwriter.NewWriter(w, minWidth, tabWidth, padding, ' ', 0)
	fmt.Fprintln(tw, "  \tName\tMarket Buy\tYour Offer\t")
	for _, c := range cards {
		mark := " "
		if c.Alert.Highlighted() {
			mark = "*"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t\n",
			mark,
			c.Name,
			f.OptionalPrice(c.HighestBuyPrice),
			f.Price(c.CustomBuyOffer),
		)
	}
	return tw.Flush()
}

// Countdown writes the time left until the next refresh.
func Countdown(w io.Writer, remaining time.Duration) error {
	_, err := fmt.Fprintf(w, "Next refresh in %ds\n", int(remaining.Round(time.Second)/time.Second))
	return err
}
