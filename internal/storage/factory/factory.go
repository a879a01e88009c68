package factory

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/game-herald/internal/storage"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/es"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/pg"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/sqlite"
)

// NewHistory creates the configured history store, or nil when history is disabled.
func NewHistory(ctx context.Context, cfg *StorageConfig) (storage.History, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Type {
	case storage.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("missing PostgreSQL configuration")
		}
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		return pg.NewHistoryStore(pool), nil

	case storage.ES:
		if cfg.Es == nil {
			return nil, fmt.Errorf("missing Elasticsearch configuration")
		}
		store, err := es.NewHistoryStore(ctx, *cfg.Es)
		if err != nil {
			return nil, err
		}
		return store, nil

	case storage.SQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil

	case storage.InMem:
		return in_mem.NewInMemStorer(), nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStorer), cfg.Type)
	}
}
