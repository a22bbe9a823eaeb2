// Package poller implements the market data fetcher loop.
//
// The Poller:
//   - Fetches the latest price list on a fixed interval (default 30s)
//   - Accepts manual refresh triggers, which restart the interval
//   - Never runs two fetches at once; extra triggers coalesce
//   - Reports the time left until the next automatic fetch
//   - Keeps running after a failed fetch and keeps the previous snapshot
package poller
