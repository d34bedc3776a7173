package main

import (
	"context"
	"fmt"

	"vessel-registry/internal/adapters/secondary/postgres"
	"vessel-registry/internal/adapters/secondary/sqlite"
	"vessel-registry/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vessel-registry",
		Short:         "Content-addressed registry for trained model artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the catalog and serve the HTTP API (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate [up|down|version|reset]",
			Short: "Apply catalog schema migrations",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), args)
			},
		},
	)
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)
	return cfg, nil
}

func runMigrate(ctx context.Context, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Database.Driver() == config.DriverPostgres {
		return postgres.Migrate(ctx, cfg.Database.DSN(), args...)
	}

	if len(args) > 0 && args[0] != "up" {
		return fmt.Errorf("sqlite catalog only supports \"up\", got %q", args[0])
	}
	db, err := sqlite.Open(cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlite.Close(db); err != nil {
			log.WithError(err).Warn("close sqlite catalog")
		}
	}()
	if err := sqlite.Migrate(ctx, db); err != nil {
		return err
	}
	log.WithField("path", cfg.Database.DSN()).Info("sqlite catalog migrated")
	return nil
}
