package postgres

import (
	"context"
	"fmt"

	"github.com/go-pg/migrations/v8"
	"github.com/go-pg/pg/v10"
	log "github.com/sirupsen/logrus"
)

var schema = []*migrations.Migration{
	{
		Version: 1,
		UpTx:    true,
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS models (
				id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
				name        TEXT NOT NULL,
				description TEXT,
				archived    BOOLEAN NOT NULL DEFAULT FALSE,
				CONSTRAINT models_name_key UNIQUE (name)
			)`,
			`CREATE TABLE IF NOT EXISTS versions (
				id        BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
				model_id  BIGINT NOT NULL REFERENCES models (id),
				tag       TEXT NOT NULL,
				hash      TEXT NOT NULL,
				path      TEXT NOT NULL,
				data_set  TEXT,
				pipeline  TEXT,
				created   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				archived  BOOLEAN NOT NULL DEFAULT FALSE,
				CONSTRAINT versions_model_id_tag_key UNIQUE (model_id, tag)
			)`,
			`CREATE INDEX IF NOT EXISTS versions_hash_idx ON versions (hash)`,
		),
		DownTx: true,
		Down: execAll(
			`DROP TABLE IF EXISTS versions`,
			`DROP TABLE IF EXISTS models`,
		),
	},
}

func execAll(statements ...string) func(migrations.DB) error {
	return func(db migrations.DB) error {
		for _, stmt := range statements {
			if _, err := db.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	}
}

// Migrate applies the catalog schema. actions are go-pg/migrations commands
// such as "up", "down" or "version"; the default is "up".
func Migrate(ctx context.Context, connString string, actions ...string) error {
	if len(actions) == 0 {
		actions = []string{"up"}
	}

	// go-pg/migrations speaks the go-pg connection API, not pgx, so it gets a
	// one-off go-pg connection.
	opts, err := pg.ParseURL(connString)
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}
	conn := pg.Connect(opts).WithContext(ctx)
	defer func() {
		if errd := conn.Close(); errd != nil {
			log.Errorf("error closing pg connection: %s", errd)
		}
	}()

	collection := migrations.NewCollection(schema...)
	collection.DisableSQLAutodiscover(true)

	if _, _, err := collection.Run(conn, "init"); err != nil {
		return fmt.Errorf("init migrations table: %w", err)
	}

	oldVersion, newVersion, err := collection.Run(conn, actions...)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if oldVersion == newVersion {
		log.Infof("no migrations to apply; version: %d", newVersion)
	} else {
		log.Infof("migrated from %d to %d", oldVersion, newVersion)
	}
	return nil
}
