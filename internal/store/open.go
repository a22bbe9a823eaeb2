package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/idleclans-market/internal/config"
	"github.com/rickgao/idleclans-market/internal/database"
)

// Open builds the Store selected by cfg. The returned cleanup function
// closes the backend and any connection pool it opened.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Store, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "memory":
		st := New(NewMemoryBackend(), logger)
		return st, func() { st.Close() }, nil

	case "file":
		fb, err := NewFileBackend(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		st := New(fb, logger)
		return st, func() { st.Close() }, nil

	case "postgres":
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		st := New(NewPostgresBackend(pool, cfg.History, logger), logger)
		return st, closePool(st, pool), nil

	case "redis":
		rb, err := DialRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		st := New(rb, logger)
		return st, func() { st.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func closePool(st *Store, pool *pgxpool.Pool) func() {
	return func() {
		st.Close()
		pool.Close()
	}
}
