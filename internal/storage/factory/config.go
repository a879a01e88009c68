package factory

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/game-herald/internal/storage"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/es"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/pg"
)

type StorageConfig struct {
	storage.Type
	Enabled    bool
	Pg         *pg.PoolConfig
	Es         *es.ClientConfig
	SQLitePath string
}

// LoadEnv reads the history store settings. History is off unless HISTORY_ENABLED is true.
func LoadEnv() (*StorageConfig, error) {
	enabled := false
	if raw := os.Getenv("HISTORY_ENABLED"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HISTORY_ENABLED value %q: %w", raw, err)
		}
		enabled = v
	}
	if !enabled {
		return &StorageConfig{Enabled: false}, nil
	}

	storageType := storage.Type(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		slog.Info("STORAGE_TYPE is not set, using default", "default", storage.SQLite)
		storageType = storage.SQLite
	}

	cfg := &StorageConfig{Type: storageType, Enabled: true}

	switch storageType {
	case storage.ES:
		cfg.Es = &es.ClientConfig{
			Addresses: splitList(os.Getenv("ES_ADDRESSES")),
			IndexName: os.Getenv("ES_INDEX_NAME"),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		}
		if len(cfg.Es.Addresses) == 0 {
			slog.Error("Elasticsearch configuration is incomplete", "addresses", cfg.Es.Addresses)
			return nil, fmt.Errorf("elasticsearch configuration is incomplete: ES_ADDRESSES is missing")
		}
	case storage.PG:
		cfg.Pg = &pg.PoolConfig{ConnStr: os.Getenv("PG_CONNECTION_STRING")}
		if cfg.Pg.ConnStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PG_CONNECTION_STRING is not set")
		}
	case storage.SQLite:
		cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	case storage.InMem:
	default:
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, fmt.Errorf(
			"invalid STORAGE_TYPE value: %s, expected one of %v",
			storageType,
			[]storage.Type{storage.InMem, storage.SQLite, storage.PG, storage.ES})
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
