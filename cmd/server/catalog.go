package main

import (
	"context"

	"vessel-registry/internal/adapters/secondary/postgres"
	"vessel-registry/internal/adapters/secondary/sqlite"
	"vessel-registry/internal/config"
	"vessel-registry/internal/core/ports/output"

	log "github.com/sirupsen/logrus"
)

// catalog bundles the repositories of whichever backend CONNECTION_STRING
// selects, together with its health check and shutdown.
type catalog struct {
	models   ports.ModelRepository
	versions ports.VersionRepository
	ping     func(ctx context.Context) error
	close    func()
}

// openCatalog connects and brings the schema up to date before any
// repository is handed out.
func openCatalog(ctx context.Context, cfg config.DatabaseConfig) (*catalog, error) {
	if cfg.Driver() == config.DriverPostgres {
		pool, err := postgres.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, cfg.DSN()); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("postgres catalog ready")
		return &catalog{
			models:   postgres.NewModelRepository(pool),
			versions: postgres.NewVersionRepository(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil
	}

	db, err := sqlite.Open(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db); err != nil {
		_ = sqlite.Close(db)
		return nil, err
	}
	log.WithField("path", cfg.DSN()).Info("sqlite catalog ready")
	return &catalog{
		models:   sqlite.NewModelRepository(db),
		versions: sqlite.NewVersionRepository(db),
		ping: func(ctx context.Context) error {
			return sqlite.Ping(ctx, db)
		},
		close: func() {
			if err := sqlite.Close(db); err != nil {
				log.WithError(err).Warn("close sqlite catalog")
			}
		},
	}, nil
}
