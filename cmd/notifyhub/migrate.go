package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/notifyhub/internal/adapter/driven/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the email_notifications schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, logCloser, err := setup(nil)
			if err != nil {
				return err
			}
			defer func() { _ = logCloser.Close() }()

			return migrateUp(cmd.Context(), postgresConfig(cfg), logger)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert applied migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, logCloser, err := setup(nil)
			if err != nil {
				return err
			}
			defer func() { _ = logCloser.Close() }()

			db, err := postgres.OpenMigrationDB(cmd.Context(), postgresConfig(cfg), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.RollbackMigrations(db, steps); err != nil {
				return err
			}
			logger.Info("migrations rolled back", "steps", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to revert")
	cmd.AddCommand(down)

	return cmd
}

func migrateUp(ctx context.Context, cfg postgres.Config, logger *slog.Logger) (err error) {
	db, err := postgres.OpenMigrationDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}
	logger.Info("migrations complete")
	return nil
}
