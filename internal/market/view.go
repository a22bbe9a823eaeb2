package market

import (
	"errors"

	"github.com/rickgao/idleclans-market/internal/items"
	"github.com/rickgao/idleclans-market/internal/model"
)

// Query describes one table render.
type Query struct {
	SortBy Column
	Order  Order
	Search string
}

// Table is the result of applying a Query to a snapshot.
type Table struct {
	Rows    []Row  `json:"rows"`
	Matches int    `json:"matches"`
	Notice  string `json:"notice,omitempty"` // User-facing search message
}

// Apply renders records for q. A search term replaces sorting: matches are
// floated to the top of the snapshot order. Search misses are reported in
// Notice rather than as an error.
func Apply(records []model.PriceRecord, names items.Resolver, q Query) Table {
	if q.Search == "" {
		by := q.SortBy
		if by == "" {
			by = ColumnItemID
		}
		return Table{Rows: Rows(Sort(records, by, q.Order, names), names)}
	}

	found, n, err := Search(records, names, q.Search)
	t := Table{Rows: Rows(found, names), Matches: n}
	if errors.Is(err, ErrNoMatches) || errors.Is(err, ErrEmptySearch) {
		t.Notice = err.Error()
	}
	return t
}
