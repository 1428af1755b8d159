package planet

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"planets-api/internal/shared/config"
	"planets-api/internal/shared/database"
)

// OpenStore builds the store selected by STORAGE_DRIVER. The returned close
// function releases the underlying connection pool, if any.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, func() error, error) {
	log := logger.With("component", "planet_store", "operation", "open", "driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store, err := NewMemoryStore(logger)
		if err != nil {
			return nil, nil, err
		}
		log.Warn("Using in-memory store, data is lost on restart")
		return store, func() error { return nil }, nil

	case config.StorageDriverPostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		log.Info("Running database migrations", "path", cfg.Database.MigrationsPath)
		if err := db.RunMigrations(ctx, os.DirFS(cfg.Database.MigrationsPath)); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		return NewRepository(db, logger), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
