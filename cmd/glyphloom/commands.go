// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/glyphloom/glyphloom/cmd/glyphloom/config"
	"github.com/glyphloom/glyphloom/pkg/logging"
	"github.com/glyphloom/glyphloom/services/generation"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

var (
	configPath string // --config: path to the YAML config file
)

// =============================================================================
// ROOT COMMAND
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "glyphloom",
	Short: "Deterministic pictograph pattern generation",
	Long: `Glyphloom turns short text prompts into pictograph symbol sequences
and lays them out as concentric or linear grid patterns.

Examples:
  glyphloom serve                          # Run the HTTP API
  glyphloom generate "ocean waves"         # Prompt to symbol sequence
  glyphloom generate --offline "sunset"    # Skip the upstream model
  glyphloom pattern 🌊 💙                  # Sequence to ASCII grid`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the config file (default ~/.glyphloom/glyphloom.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(patternCmd)
}

// loadConfig loads the config honoring the --config flag.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// setupLogging installs the slog default per the config and returns the
// logger so callers can Close it on shutdown.
func setupLogging(cfg config.LoggingConfig) *logging.Logger {
	logger := logging.New(logging.Config{
		Level:       logging.ParseLevel(cfg.Level),
		LogDir:      cfg.Dir,
		Service:     "glyphloom",
		ConsoleJSON: cfg.JSON,
	})
	slog.SetDefault(logger.Slog())
	return logger
}

// generationConfig maps the config tree onto the orchestrator's knobs.
func generationConfig(cfg *config.Config) generation.Config {
	g := cfg.Generation
	return generation.Config{
		RateWindow:         time.Duration(g.RateWindow),
		RateQuota:          g.RateQuota,
		FailureThreshold:   g.FailureThreshold,
		OpenTimeout:        time.Duration(g.OpenTimeout),
		ResponseTTL:        time.Duration(g.ResponseTTL),
		ResponseCapacity:   g.ResponseCapacity,
		BatchWindow:        time.Duration(g.BatchWindow),
		BatchMaxSignatures: g.BatchMaxSignatures,
		RequestTimeout:     time.Duration(g.RequestTimeout),
		MaxRetries:         g.MaxRetries,
		RetryBaseDelay:     time.Duration(g.RetryBaseDelay),
		MaxSymbols:         g.MaxSymbols,
	}
}

// newOrchestrator builds the generation pipeline, falling back to
// offline-only mode when no upstream credentials are available.
func newOrchestrator(cfg *config.Config, offline bool) *generation.Orchestrator {
	var upstream generation.UpstreamClient
	if !offline {
		client, err := generation.NewOpenAIClient()
		if err != nil {
			slog.Warn("no upstream credentials, running offline", "error", err)
		} else {
			upstream = client
		}
	}
	if upstream == nil {
		upstream = unavailableUpstream{}
	}
	return generation.NewOrchestrator(upstream, generationConfig(cfg))
}

var errUpstreamDisabled = errors.New("upstream generation disabled")

// unavailableUpstream fails every call, which routes generation through
// the deterministic fallback path.
type unavailableUpstream struct{}

func (unavailableUpstream) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	return nil, &generation.UpstreamError{Op: "generate", Err: errUpstreamDisabled}
}

// timeoutContext returns a bounded context for one-shot CLI calls.
func timeoutContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
