package market

import (
	"fmt"
	"strings"
)

// Column identifies a sortable table column.
type Column string

const (
	ColumnItemID             Column = "itemId"
	ColumnName               Column = "name"
	ColumnLowestSellPrice    Column = "lowestSellPrice"
	ColumnLowestPriceVolume  Column = "lowestPriceVolume"
	ColumnHighestBuyPrice    Column = "highestBuyPrice"
	ColumnHighestPriceVolume Column = "highestPriceVolume"
	ColumnProfit             Column = "profit"
)

// Columns lists every sortable column in table order.
var Columns = []Column{
	ColumnName,
	ColumnHighestBuyPrice,
	ColumnLowestSellPrice,
	ColumnHighestPriceVolume,
	ColumnLowestPriceVolume,
	ColumnProfit,
	ColumnItemID,
}

// ParseColumn parses a column name case-insensitively. Empty means itemId.
func ParseColumn(s string) (Column, error) {
	if s == "" {
		return ColumnItemID, nil
	}
	for _, c := range Columns {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder parses "asc" or "desc". Empty means ascending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Toggle returns the opposite order. Clicking a header cycles asc/desc.
func (o Order) Toggle() Order {
	if o == Asc {
		return Desc
	}
	return Asc
}
