// Package model defines shared data types used across the market watcher.
//
// Conventions:
//   - Prices: gold amounts as float64, nil when the market has no order on that side
//   - Volumes: order quantities as int64, nil when unknown
//   - IDs: integer item identifiers as issued by the Idle Clans market API
package model
