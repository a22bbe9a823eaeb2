// Package render writes the market table and watchlist cards as text.
//
// Numbers use locale digit grouping via golang.org/x/text/message. Rows with
// profit above 1 and alerting cards are marked with an asterisk.
package render
