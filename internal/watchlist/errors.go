package watchlist

import "errors"

var (
	// ErrCapacityExceeded is returned when pinning past model.MaxPinned.
	ErrCapacityExceeded = errors.New("watchlist is full")

	// ErrItemNotFound is returned when the item is not in the latest
	// snapshot (Pin) or not pinned (SetCustomBuyOffer).
	ErrItemNotFound = errors.New("item not found")
)
