package market

import (
	"github.com/rickgao/idleclans-market/internal/items"
	"github.com/rickgao/idleclans-market/internal/model"
)

// ProfitHighlight is the profit above which a row is flagged.
const ProfitHighlight = 1

// Row is a display-ready table row. Missing prices and volumes render as 0.
type Row struct {
	ItemID             int     `json:"itemId"`
	Name               string  `json:"name"`
	HighestBuyPrice    float64 `json:"highestBuyPrice"`
	LowestSellPrice    float64 `json:"lowestSellPrice"`
	HighestPriceVolume int64   `json:"highestPriceVolume"`
	LowestPriceVolume  int64   `json:"lowestPriceVolume"`
	Profit             float64 `json:"profit"`
	Profitable         bool    `json:"profitable"`
}

// Rows joins records with item names. Records whose name cannot be resolved
// are skipped.
func Rows(records []model.PriceRecord, names items.Resolver) []Row {
	if names == nil {
		names = items.Fallback{}
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		name, ok := names.Name(r.ItemID)
		if !ok {
			continue
		}
		row := Row{
			ItemID:             r.ItemID,
			Name:               name,
			HighestBuyPrice:    valueOrZero(r.HighestBuyPrice),
			LowestSellPrice:    valueOrZero(r.LowestSellPrice),
			HighestPriceVolume: intOrZero(r.HighestPriceVolume),
			LowestPriceVolume:  intOrZero(r.LowestPriceVolume),
		}
		// A zero on either side means no real order, so no spread is shown.
		if row.HighestBuyPrice != 0 && row.LowestSellPrice != 0 {
			row.Profit = row.LowestSellPrice - row.HighestBuyPrice
		}
		row.Profitable = row.Profit > ProfitHighlight
		rows = append(rows, row)
	}
	return rows
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
