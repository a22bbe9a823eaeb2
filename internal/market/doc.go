// Package market turns a price snapshot into table rows.
//
// It owns the table semantics shared by every renderer:
//   - Sorting by any column, with the derived profit column
//   - Search that floats matches to the top without hiding other rows
//   - Live name suggestions with keyboard-style cursor navigation
//
// Missing prices and missing profit behave like +Inf: they sink to the
// bottom of an ascending sort, and stay there when the order is flipped.
package market
