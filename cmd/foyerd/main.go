// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Foyerd is the foyer provisioning and administration daemon. It
// serves the first-run setup page until an administrator account has
// been created, then serves the login page and configuration
// dashboard. Configuration edits are written atomically to the
// deployment's environment file, and a reload command is run after
// every effective change so the managed services pick it up.
//
// On startup:
//  1. Loads foyer.yaml (from --config or FOYER_CONFIG).
//  2. Opens the environment file, admin record, and setup marker.
//  3. Starts the session sweeper.
//  4. Serves the console until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/foyer-systems/foyer/lib/clock"
	"github.com/foyer-systems/foyer/lib/config"
	"github.com/foyer-systems/foyer/lib/console"
	"github.com/foyer-systems/foyer/lib/envfile"
	"github.com/foyer-systems/foyer/lib/identity"
	"github.com/foyer-systems/foyer/lib/reload"
	"github.com/foyer-systems/foyer/lib/session"
	"github.com/foyer-systems/foyer/lib/setup"
	"github.com/foyer-systems/foyer/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		listen      string
		showVersion bool
	)

	pflag.StringVarP(&configPath, "config", "c", "", "path to foyer.yaml (overrides FOYER_CONFIG)")
	pflag.StringVarP(&listen, "listen", "l", "", "listen address (overrides the config file)")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("foyerd %s\n", version.Info())
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}

	logger := console.NewLogger()
	logger.Info("foyerd starting",
		"version", version.Info(),
		"listen", cfg.Listen,
		"env_file", cfg.State.EnvFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.Real()

	env := envfile.NewStore(cfg.State.EnvFile)
	admins := identity.NewStore(cfg.State.AdminFile)
	lock := setup.NewLock(cfg.State.SetupLock)
	sessions := session.NewManager(cfg.SessionTTL(), clk)

	var notifier reload.Notifier = reload.Nop{}
	if len(cfg.Reload.Command) > 0 {
		notifier = reload.NewExecNotifier(cfg.Reload.Command, cfg.ReloadTimeout(), logger)
	} else {
		logger.Warn("no reload command configured; config changes will not be signaled")
	}

	// Expired sessions are also dropped lazily on validation; the
	// sweeper just keeps the map from accumulating abandoned
	// entries between logins.
	go sweepSessions(ctx, clk, cfg.SweepInterval(), sessions, logger)

	handler := console.NewHandler(console.HandlerConfig{
		Env:      env,
		Admins:   admins,
		Lock:     lock,
		Sessions: sessions,
		Notifier: notifier,
		Clock:    clk,
		Logger:   logger,
	})

	server := console.NewServer(console.ServerConfig{
		Address: cfg.Listen,
		Handler: handler,
		Logger:  logger,
	})
	return server.Serve(ctx)
}

func sweepSessions(ctx context.Context, clk clock.Clock, interval time.Duration, sessions *session.Manager, logger *slog.Logger) {
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Sweep(); removed > 0 {
				logger.Info("swept expired sessions", "count", removed)
			}
		}
	}
}
