package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/idleclans-market/internal/model"
)

// PgxConn is the subset of *pgxpool.Pool used by PostgresBackend.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgresBackend stores slots in the market_kv table. With history enabled
// it also appends every saved snapshot to price_history.
//
// The pool is owned by the caller; Close does not close it.
type PostgresBackend struct {
	db      PgxConn
	history bool
	logger  *slog.Logger
}

// NewPostgresBackend creates a backend over db. Run database.Migrate first.
func NewPostgresBackend(db PgxConn, history bool, logger *slog.Logger) *PostgresBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBackend{
		db:      db,
		history: history,
		logger:  logger,
	}
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := p.db.QueryRow(ctx, `SELECT value FROM market_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (p *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO market_kv (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, string(value))
	return err
}

func (p *PostgresBackend) Close() error {
	return nil
}

// RecordSnapshot appends snap to price_history using pgx.Batch with
// ON CONFLICT DO NOTHING. No-op when history is disabled.
func (p *PostgresBackend) RecordSnapshot(ctx context.Context, snap model.Snapshot) error {
	if !p.history || len(snap.Records) == 0 {
		return nil
	}

	start := time.Now()
	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = start
	}

	batch := &pgx.Batch{}
	for _, r := range snap.Records {
		batch.Queue(`
			INSERT INTO price_history (fetched_at, item_id, lowest_sell_price, lowest_price_volume, highest_buy_price, highest_price_volume)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (item_id, fetched_at) DO NOTHING
		`, fetchedAt, r.ItemID, r.LowestSellPrice, r.LowestPriceVolume, r.HighestBuyPrice, r.HighestPriceVolume)
	}

	results := p.db.SendBatch(ctx, batch)
	defer results.Close()

	conflicts := 0
	for range snap.Records {
		ct, err := results.Exec()
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	p.logger.Debug("recorded snapshot history",
		"count", len(snap.Records),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
	return nil
}
