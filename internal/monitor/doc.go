// Package monitor is the controller that owns the market state.
//
// A Monitor holds the latest snapshot and the watchlist engine. Snapshots
// arrive from the poller through HandleSnapshot; every state change is
// published as an Update to subscribers (the WebSocket hub, the terminal
// renderer), which only read.
package monitor
