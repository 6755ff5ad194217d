// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glyphloom/glyphloom/cmd/glyphloom/config"
	"github.com/glyphloom/glyphloom/services/generation"
	"github.com/glyphloom/glyphloom/services/server"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	serveAddr    string // Override the listen address
	serveOffline bool   // Run without the upstream model
	serveWatch   bool   // Reload the config file on change
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// serveCmd runs the HTTP API.
//
// # Description
//
// Starts the glyphloom HTTP server: generation, pattern layout and
// command dispatch endpoints plus health and Prometheus metrics.
// Shuts down gracefully on SIGINT/SIGTERM.
//
// # Examples
//
//	glyphloom serve                  # Default address :8492
//	glyphloom serve --addr :9000     # Custom address
//	glyphloom serve --offline        # Fallback-only generation
//	glyphloom serve --watch          # Hot-reload config edits
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the glyphloom HTTP API",
	RunE:  runServeCommand,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"Listen address (overrides the config file)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false,
		"Serve without the upstream model; all generation uses the offline fallback")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false,
		"Watch the config file and log reloads")
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogging(cfg.Logging)
	defer logger.Close()

	orchestrator := newOrchestrator(cfg, serveOffline)
	session := generation.NewSession(cfg.Generation.MaxSymbols)
	dispatcher := generation.NewDispatcher(session, orchestrator, nil)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := server.New(server.Config{
		Addr:        addr,
		ClientRPS:   cfg.Server.ClientRPS,
		ClientBurst: cfg.Server.ClientBurst,
	}, orchestrator, dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveWatch {
		path := configPath
		if path == "" {
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		// Knobs on long-lived components apply on the next restart; the
		// watcher exists so edits are validated and visible immediately.
		watcher := config.NewWatcher(path, func(next *config.Config) {
			slog.Info("config change staged for next restart",
				"rate_quota", next.Generation.RateQuota,
				"max_symbols", next.Generation.MaxSymbols,
			)
		})
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
