// Package database provides PostgreSQL connection pools and the schema used
// by the postgres snapshot store backend.
//
// Tables:
//   - market_kv: one row per persisted slot (latest snapshot, pinned items)
//   - price_history: append-only copy of every saved snapshot (optional)
package database
