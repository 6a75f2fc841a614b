package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/notifyhub/internal/adapter/driven/postgres"
	httphandler "github.com/ericfisherdev/notifyhub/internal/adapter/driving/http"
	"github.com/ericfisherdev/notifyhub/internal/application"
	"github.com/ericfisherdev/notifyhub/internal/config"
	"github.com/ericfisherdev/notifyhub/internal/metrics"
)

type serveFlags struct {
	listen     string
	logLevel   string
	migrate    bool
	shutdownIn time.Duration
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.listen, "listen", "", "HTTP listen address (overrides NOTIFYHUB_HTTP_LISTENADDR)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides NOTIFYHUB_LOG_LEVEL)")
	cmd.Flags().BoolVar(&flags.migrate, "migrate", false, "Apply pending migrations before serving")
	cmd.Flags().DurationVar(&flags.shutdownIn, "shutdown-timeout", 10*time.Second, "Time allowed for in-flight requests on shutdown")

	return cmd
}

func runServe(cmd *cobra.Command, flags serveFlags) error {
	// 1. Load configuration and logging (fail fast on invalid settings).
	cfg, logger, logCloser, err := setup(func(c *config.Config) {
		if cmd.Flags().Changed("listen") {
			c.HTTP.ListenAddr = flags.listen
		}
		if cmd.Flags().Changed("log-level") {
			c.Log.Level = flags.logLevel
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	logger.Info("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"db_host", cfg.DB.Host,
		"db_port", cfg.DB.Port,
		"db_name", cfg.DB.Name,
		"metrics", cfg.Metrics.Enabled,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgCfg := postgresConfig(cfg)

	// 3. Optionally bring the schema up to date.
	if flags.migrate {
		if err := migrateUp(ctx, pgCfg, logger); err != nil {
			return err
		}
	}

	// 4. Create the connection pool. A pool that cannot be built means the
	// configuration is unusable, so startup stops here.
	pools := postgres.NewPoolManager(pgCfg, nil, logger)
	if err := pools.EnsurePool(ctx); err != nil {
		return fmt.Errorf("initialize connection pool: %w", err)
	}
	defer pools.Close()

	// 5. Wire adapters.
	store := postgres.NewNotificationRepo(pools)
	svc := application.NewNotificationService(store)
	apiHandler := httphandler.NewHandler(svc, pools, logger)

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.Handler()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, logger, metricsHandler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logger.Info("notifyhub started", "version", version, "listen_addr", cfg.HTTP.ListenAddr)

	// 6. Wait for a shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	// 7. Drain in-flight requests before the deferred pool close.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), flags.shutdownIn)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
