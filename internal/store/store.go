package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rickgao/idleclans-market/internal/model"
)

// SchemaVersion is written into every envelope. Bare JSON arrays written by
// older versions are read as version 0.
const SchemaVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Store reads and writes the snapshot and watchlist slots.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New creates a Store over backend.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// LoadSnapshot returns the last persisted snapshot. ok is false when none
// exists or it cannot be decoded.
func (s *Store) LoadSnapshot(ctx context.Context) (snap model.Snapshot, ok bool) {
	data, found := s.read(ctx, KeySnapshot)
	if !found {
		return model.Snapshot{}, false
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		s.reportReadError(&StorageReadError{Key: KeySnapshot, Err: err})
		return model.Snapshot{}, false
	}
	return snap, true
}

// SaveSnapshot overwrites the persisted snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	if err := s.write(ctx, KeySnapshot, snap); err != nil {
		return err
	}

	if rec, ok := s.backend.(SnapshotRecorder); ok {
		if err := rec.RecordSnapshot(ctx, snap); err != nil {
			s.logger.Warn("failed to record snapshot history", "err", err, "records", len(snap.Records))
		}
	}
	return nil
}

// LoadPinned returns the persisted watchlist, or an empty list when none
// exists or it cannot be decoded.
func (s *Store) LoadPinned(ctx context.Context) []model.PinnedItem {
	data, found := s.read(ctx, KeyPinned)
	if !found {
		return []model.PinnedItem{}
	}

	items, err := decodePinned(data)
	if err != nil {
		s.reportReadError(&StorageReadError{Key: KeyPinned, Err: err})
		return []model.PinnedItem{}
	}

	cleaned := sanitizePinned(items)
	if len(cleaned) != len(items) {
		s.logger.Warn("dropped invalid pinned items", "stored", len(items), "kept", len(cleaned))
	}
	return cleaned
}

// SavePinned overwrites the persisted watchlist.
func (s *Store) SavePinned(ctx context.Context, items []model.PinnedItem) error {
	if items == nil {
		items = []model.PinnedItem{}
	}
	return s.write(ctx, KeyPinned, items)
}

func (s *Store) read(ctx context.Context, key string) ([]byte, bool) {
	data, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.reportReadError(&StorageReadError{Key: key, Err: err})
		return nil, false
	}
	if !found || len(bytes.TrimSpace(data)) == 0 {
		return nil, false
	}
	return data, true
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	data, err := json.Marshal(envelope{Version: SchemaVersion, Data: payload})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", key, err)
	}

	if err := s.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) reportReadError(err *StorageReadError) {
	s.logger.Warn("treating stored value as absent", "key", err.Key, "err", err.Err)
}

// unwrap returns the payload and schema version of a stored value.
func unwrap(data []byte) (json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return trimmed, 0, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, err
	}
	if env.Version < 1 || env.Version > SchemaVersion {
		return nil, 0, fmt.Errorf("unsupported schema version %d", env.Version)
	}
	if len(env.Data) == 0 {
		return nil, 0, fmt.Errorf("missing data")
	}
	return env.Data, env.Version, nil
}

func decodeSnapshot(data []byte) (model.Snapshot, error) {
	payload, version, err := unwrap(data)
	if err != nil {
		return model.Snapshot{}, err
	}

	if version == 0 {
		var records []model.PriceRecord
		if err := json.Unmarshal(payload, &records); err != nil {
			return model.Snapshot{}, err
		}
		return model.Snapshot{Records: records}, nil
	}

	var snap model.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Records == nil {
		snap.Records = []model.PriceRecord{}
	}
	return snap, nil
}

func decodePinned(data []byte) ([]model.PinnedItem, error) {
	payload, _, err := unwrap(data)
	if err != nil {
		return nil, err
	}

	var items []model.PinnedItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// sanitizePinned drops duplicate or invalid IDs and enforces the capacity limit.
func sanitizePinned(items []model.PinnedItem) []model.PinnedItem {
	out := make([]model.PinnedItem, 0, len(items))
	seen := make(map[int]bool, len(items))
	for _, it := range items {
		if it.ItemID <= 0 || seen[it.ItemID] {
			continue
		}
		if len(out) == model.MaxPinned {
			break
		}
		seen[it.ItemID] = true
		out = append(out, it)
	}
	return out
}
