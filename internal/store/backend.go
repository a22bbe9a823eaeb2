package store

import (
	"context"
	"errors"

	"github.com/rickgao/idleclans-market/internal/model"
)

// Slot keys.
const (
	KeySnapshot = "marketData"
	KeyPinned   = "pinnedItems"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("store closed")

// Backend is a flat key-value blob store.
type Backend interface {
	// Get returns the value stored at key. found is false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put overwrites the value stored at key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases backend resources.
	Close() error
}

// SnapshotRecorder is implemented by backends that keep a history of every
// saved snapshot in addition to the latest slot.
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, snap model.Snapshot) error
}
