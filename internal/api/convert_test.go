package api

import (
	"math"
	"testing"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }

func TestAPIPriceRecord_ToModel(t *testing.T) {
	tests := []struct {
		name     string
		in       APIPriceRecord
		wantSell *float64
		wantBuy  *float64
		wantVol  *int64
	}{
		{
			name:     "all fields",
			in:       APIPriceRecord{ItemID: 1, LowestSellPrice: ptrF(10), HighestBuyPrice: ptrF(8), LowestPriceVolume: ptrI(3)},
			wantSell: ptrF(10),
			wantBuy:  ptrF(8),
			wantVol:  ptrI(3),
		},
		{
			name: "negative values dropped",
			in:   APIPriceRecord{ItemID: 1, LowestSellPrice: ptrF(-1), HighestBuyPrice: ptrF(math.Inf(1)), LowestPriceVolume: ptrI(-5)},
		},
		{
			name:     "zero is kept",
			in:       APIPriceRecord{ItemID: 1, LowestSellPrice: ptrF(0)},
			wantSell: ptrF(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.ToModel()
			if !equalF(got.LowestSellPrice, tt.wantSell) {
				t.Errorf("LowestSellPrice = %v, want %v", got.LowestSellPrice, tt.wantSell)
			}
			if !equalF(got.HighestBuyPrice, tt.wantBuy) {
				t.Errorf("HighestBuyPrice = %v, want %v", got.HighestBuyPrice, tt.wantBuy)
			}
			if (got.LowestPriceVolume == nil) != (tt.wantVol == nil) ||
				(got.LowestPriceVolume != nil && *got.LowestPriceVolume != *tt.wantVol) {
				t.Errorf("LowestPriceVolume = %v, want %v", got.LowestPriceVolume, tt.wantVol)
			}
		})
	}
}

func TestToModelRecords(t *testing.T) {
	in := []APIPriceRecord{{ItemID: 1}, {ItemID: 0}, {ItemID: -3}, {ItemID: 7}}

	out, skipped := ToModelRecords(in)
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(out) != 2 || out[0].ItemID != 1 || out[1].ItemID != 7 {
		t.Errorf("out = %+v", out)
	}
}

func TestToModel_DoesNotAliasInput(t *testing.T) {
	price := 10.0
	in := APIPriceRecord{ItemID: 1, LowestSellPrice: &price}
	out := in.ToModel()
	price = 99
	if *out.LowestSellPrice != 10 {
		t.Errorf("LowestSellPrice = %v, want 10", *out.LowestSellPrice)
	}
}

func equalF(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
