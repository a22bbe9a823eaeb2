package market

import (
	"errors"
	"strings"

	"github.com/rickgao/idleclans-market/internal/items"
	"github.com/rickgao/idleclans-market/internal/model"
)

var (
	// ErrEmptySearch is returned for a blank search term.
	ErrEmptySearch = errors.New("please enter a search term")

	// ErrNoMatches is returned when no item name contains the search term.
	ErrNoMatches = errors.New("no items found matching your search")
)

// Search moves records whose name contains term (case-insensitive) to the
// front. Relative order is kept inside both groups and non-matching records
// stay in the result. On ErrNoMatches the input order is returned unchanged.
func Search(records []model.PriceRecord, names items.Resolver, term string) ([]model.PriceRecord, int, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records, 0, ErrEmptySearch
	}
	if names == nil {
		names = items.Fallback{}
	}

	matches := make([]model.PriceRecord, 0)
	rest := make([]model.PriceRecord, 0, len(records))
	for _, r := range records {
		if nameContains(names, r.ItemID, term) {
			matches = append(matches, r)
		} else {
			rest = append(rest, r)
		}
	}

	if len(matches) == 0 {
		return records, 0, ErrNoMatches
	}
	return append(matches, rest...), len(matches), nil
}

// Suggest returns up to limit distinct item names containing query, in
// record order. limit <= 0 means no limit.
func Suggest(records []model.PriceRecord, names items.Resolver, query string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || names == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		name, ok := names.Name(r.ItemID)
		if !ok || seen[name] || !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func nameContains(names items.Resolver, itemID int, term string) bool {
	name, ok := names.Name(itemID)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(name), term)
}
