package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendBleve    = "bleve"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// Open constructs the store selected by cfg.Backend. The caller owns the
// returned store and must Close it.
func Open(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("store", cfg.Backend)

	switch cfg.Backend {
	case BackendSQLite, "":
		return NewSQLiteStore(ctx, cfg.SQLitePath, logger)
	case BackendBleve:
		return NewBleveStore(cfg.BlevePath, logger)
	case BackendPostgres:
		if err := Migrate(cfg.Database.DSN, "up", 0); err != nil {
			return nil, storeErr(BackendPostgres, "migrate", err)
		}
		pool, err := OpenPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, storeErr(BackendPostgres, "connect", err)
		}
		return NewPostgresStore(pool, logger), nil
	case BackendMongo:
		return NewMongoStore(ctx, cfg.Mongo, logger)
	case BackendMemory:
		return NewMemoryStore(logger), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown store backend %q", cfg.Backend), common.ErrInvalidInput)
	}
}
