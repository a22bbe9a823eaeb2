package market

import (
	"testing"

	"github.com/rickgao/idleclans-market/internal/model"
)

func TestRows(t *testing.T) {
	records := []model.PriceRecord{
		{ItemID: 1, LowestSellPrice: model.Float(12), HighestBuyPrice: model.Float(10), LowestPriceVolume: model.Int(3)},
		{ItemID: 77, LowestSellPrice: model.Float(5)},
		{ItemID: 2, LowestSellPrice: model.Float(9)},
		{ItemID: 4, LowestSellPrice: model.Float(11), HighestBuyPrice: model.Float(10)},
	}

	rows := Rows(records, testCatalog())
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3 (unknown item skipped)", len(rows))
	}

	apple := rows[0]
	if apple.Name != "Apple" || apple.Profit != 2 || !apple.Profitable {
		t.Errorf("apple row = %+v", apple)
	}
	if apple.LowestPriceVolume != 3 || apple.HighestPriceVolume != 0 {
		t.Errorf("volumes = %d/%d", apple.LowestPriceVolume, apple.HighestPriceVolume)
	}

	bread := rows[1]
	if bread.HighestBuyPrice != 0 || bread.Profit != 0 || bread.Profitable {
		t.Errorf("missing buy side should render zero profit, got %+v", bread)
	}

	ore := rows[2]
	if ore.Profit != 1 || ore.Profitable {
		t.Errorf("profit of exactly 1 should not be flagged, got %+v", ore)
	}
}

func TestApply(t *testing.T) {
	records := []model.PriceRecord{
		{ItemID: 2, LowestSellPrice: model.Float(1)},
		{ItemID: 3, LowestSellPrice: model.Float(3)},
		{ItemID: 1, LowestSellPrice: model.Float(2)},
	}

	tbl := Apply(records, testCatalog(), Query{SortBy: ColumnLowestSellPrice, Order: Desc})
	if got := rowIDs(tbl.Rows); !equalInts(got, []int{3, 1, 2}) {
		t.Errorf("sorted rows = %v", got)
	}

	tbl = Apply(records, testCatalog(), Query{SortBy: ColumnLowestSellPrice, Search: "apple"})
	if got := rowIDs(tbl.Rows); !equalInts(got, []int{3, 1, 2}) {
		t.Errorf("search rows = %v", got)
	}
	if tbl.Matches != 2 || tbl.Notice != "" {
		t.Errorf("matches = %d, notice = %q", tbl.Matches, tbl.Notice)
	}

	tbl = Apply(records, testCatalog(), Query{Search: "zzz"})
	if tbl.Notice != ErrNoMatches.Error() {
		t.Errorf("notice = %q", tbl.Notice)
	}
	if got := rowIDs(tbl.Rows); !equalInts(got, []int{2, 3, 1}) {
		t.Errorf("rows on miss = %v", got)
	}
}

func rowIDs(rows []Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ItemID
	}
	return out
}
