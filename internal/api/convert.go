package api

import (
	"math"

	"github.com/rickgao/idleclans-market/internal/model"
)

// ToModel converts an API price record to the model type.
// Negative or non-finite values are dropped to nil.
func (r APIPriceRecord) ToModel() model.PriceRecord {
	return model.PriceRecord{
		ItemID:             r.ItemID,
		LowestSellPrice:    cleanPrice(r.LowestSellPrice),
		LowestPriceVolume:  cleanVolume(r.LowestPriceVolume),
		HighestBuyPrice:    cleanPrice(r.HighestBuyPrice),
		HighestPriceVolume: cleanVolume(r.HighestPriceVolume),
	}
}

// Valid reports whether the record identifies a real item.
func (r APIPriceRecord) Valid() bool {
	return r.ItemID > 0
}

// ToModelRecords converts a response array, skipping records without a
// usable item ID. Returns the converted records and the number skipped.
func ToModelRecords(in []APIPriceRecord) ([]model.PriceRecord, int) {
	out := make([]model.PriceRecord, 0, len(in))
	skipped := 0
	for _, r := range in {
		if !r.Valid() {
			skipped++
			continue
		}
		out = append(out, r.ToModel())
	}
	return out, skipped
}

func cleanPrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

func cleanVolume(v *int64) *int64 {
	if v == nil || *v < 0 {
		return nil
	}
	n := *v
	return &n
}
