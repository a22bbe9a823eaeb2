// Package store persists the latest market snapshot and the pinned watchlist.
//
// A Store encodes values as versioned JSON envelopes and writes them through
// a Backend. Two slots exist, mirroring the browser storage keys:
//   - marketData: the last full snapshot
//   - pinnedItems: the watchlist
//
// Reads never fail: a missing, unreadable or corrupt slot is reported as
// absent and logged as a StorageReadError.
package store
