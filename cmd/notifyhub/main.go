package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/notifyhub/internal/adapter/driven/postgres"
	"github.com/ericfisherdev/notifyhub/internal/config"
	"github.com/ericfisherdev/notifyhub/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "notifyhub",
		Short:         "notifyhub - email notification store",
		Long:          `notifyhub serves the email_notifications table over HTTP and manages its schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notifyhub %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	return rootCmd
}

// setup loads configuration and installs the process logger. The returned
// closer flushes the log file, if any.
func setup(overrides func(*config.Config)) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if overrides != nil {
		overrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, nil, nil, err
		}
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)

	return cfg, logger, closer, nil
}

// postgresConfig maps the loaded settings onto the adapter's pool config.
func postgresConfig(cfg *config.Config) postgres.Config {
	return postgres.Config{
		Host:           cfg.DB.Host,
		Port:           cfg.DB.Port,
		DBName:         cfg.DB.Name,
		User:           cfg.DB.User,
		Password:       cfg.DB.Password,
		SSLMode:        cfg.DB.SSLMode,
		MaxConns:       cfg.DB.MaxConns,
		ConnectTimeout: cfg.DB.ConnectTimeout,
	}
}
