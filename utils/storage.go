package utils

import (
	"context"
	"fmt"
	"log/slog"

	"todo-api/store"
)

// OpenStore opens the backend selected by cfg.Driver. Failing to reach a
// database here is fatal for the caller; nothing is retried.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case StorageMemory:
		logger.Info("using in-memory store")
		return store.NewMemoryStore(), nil
	case StorageSQLite:
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath)
		return store.NewSQLStore(db, store.SQLite, logger), nil
	case StoragePostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres store")
		return store.NewSQLStore(db, store.Postgres, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
