// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/projectdesk/projectdesk/internal/auth"
	authpg "github.com/projectdesk/projectdesk/internal/auth/postgres"
	"github.com/projectdesk/projectdesk/internal/config"
	"github.com/projectdesk/projectdesk/internal/httpapi"
	"github.com/projectdesk/projectdesk/internal/logging"
	"github.com/projectdesk/projectdesk/internal/observability"
	"github.com/projectdesk/projectdesk/internal/project"
	projectpg "github.com/projectdesk/projectdesk/internal/project/postgres"
	"github.com/projectdesk/projectdesk/internal/store"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ProjectDesk HTTP API server",
		Long: `Start the HTTP API server, connect to PostgreSQL, and run the
background session sweeper until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, cmd.Flags())
		},
	}

	// Flag names follow config file keys so posflag can layer them.
	cmd.Flags().String("server.addr", "", "HTTP listen address")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")
	cmd.Flags().String("log.format", "", "log format (json or text)")
	cmd.Flags().String("metrics.addr", "", "metrics/health HTTP address")

	return cmd
}

// runServe wires the full server: config, logging, storage, services,
// HTTP API, metrics, and the session sweeper.
func runServe(ctx context.Context, cmd *cobra.Command, flags *pflag.FlagSet) error {
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("projectdesk", version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	logger.Info("starting projectdesk",
		"addr", cfg.Server.Addr,
		"session_ttl", cfg.Session.TTL,
	)

	pool, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("connected to database")

	authSvc, err := auth.NewServiceWithTTL(
		authpg.NewAccountRepository(pool),
		authpg.NewSessionRepository(pool),
		auth.NewArgon2idHasher(),
		cfg.Session.TTL,
	)
	if err != nil {
		return err
	}

	projectSvc, err := project.NewService(projectpg.NewRepository(pool))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var metrics *observability.Metrics
	var obsServer *observability.Server
	if cfg.Metrics.Enabled {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("SERVE_METRICS_FAILED").With("addr", cfg.Metrics.Addr).Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	handler := httpapi.NewRouter(httpapi.RouterConfig{
		Auth:          authSvc,
		Projects:      projectSvc,
		Logger:        logger,
		Metrics:       metrics,
		SecureCookies: cfg.Server.SecureCookies,
	})
	apiServer := httpapi.NewServer(cfg.Server.Addr, handler)

	apiErrChan, err := apiServer.Start()
	if err != nil {
		return oops.Code("SERVE_LISTEN_FAILED").With("addr", cfg.Server.Addr).Wrap(err)
	}

	go runSessionSweeper(ctx, authSvc, metrics, cfg.Session.SweepInterval, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("ProjectDesk server started")
	logger.Info("server ready", "addr", apiServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-apiErrChan:
		if err != nil {
			return oops.Code("SERVE_FAILED").Wrap(err)
		}
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping HTTP server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// runSessionSweeper deletes expired sessions on a fixed interval until
// the context is cancelled.
func runSessionSweeper(ctx context.Context, authSvc *auth.Service, metrics *observability.Metrics, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authSvc.SweepExpiredSessions(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("swept expired sessions", "count", n)
				if metrics != nil {
					metrics.SessionsSwept.Add(float64(n))
				}
			}
		}
	}
}

// monitorServerErrors cancels the run context when a background server
// reports a fatal error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errChan <-chan error, name string) {
	select {
	case <-ctx.Done():
	case err, ok := <-errChan:
		if ok && err != nil {
			slog.Error("background server failed", "server", name, "error", err)
			cancel()
		}
	}
}
