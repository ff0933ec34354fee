package store

import (
	"context"
	"fmt"
	"log"

	"TASKTRACKER_BACK-END/internal/config"
	"TASKTRACKER_BACK-END/internal/database"
)

// Open connects the backend selected by cfg.Store.Driver. For postgres the
// schema is migrated first when cfg.Database.AutoMigrate is set.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(cfg.GetDSN()); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := database.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil

	case config.DriverMongoDB:
		connCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnTimeout)
		defer cancel()
		s, err := OpenMongoStore(connCtx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		log.Printf("Connected to mongodb database %s", cfg.Mongo.Database)
		return s, nil

	case config.DriverMemory:
		log.Println("Warning: using in-memory store, data is lost on restart")
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
