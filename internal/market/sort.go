package market

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rickgao/idleclans-market/internal/items"
	"github.com/rickgao/idleclans-market/internal/model"
)

// Sort returns a sorted copy of records. The sort is stable, so ties keep
// snapshot order. Records missing the sort value go last in either order.
func Sort(records []model.PriceRecord, by Column, order Order, names items.Resolver) []model.PriceRecord {
	out := slices.Clone(records)

	if by == ColumnName {
		if names == nil {
			names = items.Fallback{}
		}
		slices.SortStableFunc(out, func(a, b model.PriceRecord) int {
			na, _ := names.Name(a.ItemID)
			nb, _ := names.Name(b.ItemID)
			return directed(cmp.Compare(strings.ToLower(na), strings.ToLower(nb)), order)
		})
		return out
	}

	slices.SortStableFunc(out, func(a, b model.PriceRecord) int {
		va, okA := sortValue(a, by)
		vb, okB := sortValue(b, by)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		return directed(cmp.Compare(va, vb), order)
	})
	return out
}

func directed(c int, order Order) int {
	if order == Desc {
		return -c
	}
	return c
}

// sortValue returns the numeric value of column by for r.
func sortValue(r model.PriceRecord, by Column) (float64, bool) {
	switch by {
	case ColumnProfit:
		return r.Profit()
	case ColumnLowestSellPrice:
		return deref(r.LowestSellPrice)
	case ColumnHighestBuyPrice:
		return deref(r.HighestBuyPrice)
	case ColumnLowestPriceVolume:
		return derefInt(r.LowestPriceVolume)
	case ColumnHighestPriceVolume:
		return derefInt(r.HighestPriceVolume)
	default:
		return float64(r.ItemID), true
	}
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

func derefInt(v *int64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}
