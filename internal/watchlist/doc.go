// Package watchlist owns the pinned-item list and its buy-offer alerts.
//
// At most model.MaxPinned items can be pinned. Every new snapshot is
// reconciled into the list: the live highest buy price is copied over while
// the user's custom buy offer is left alone, and the result is persisted
// before anyone can read it.
//
// Alerts are level-triggered for the visual highlight and edge-triggered
// for sound. Muting only silences the sound.
package watchlist
