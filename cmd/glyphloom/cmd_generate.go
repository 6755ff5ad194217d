// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glyphloom/glyphloom/services/pattern"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	generateLanguage string // Prompt language code
	generateOffline  bool   // Skip the upstream model
	generateJSON     bool   // Output as JSON
	generateMode     string // Also print the grid in this layout mode
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// generateCmd maps a prompt to a symbol sequence.
//
// # Description
//
// One-shot generation: runs the prompt through the orchestration
// pipeline and prints the resulting sequence. With --offline the
// upstream model is skipped entirely and the deterministic keyword
// mapping answers.
//
// # Examples
//
//	glyphloom generate "ocean waves"
//	glyphloom generate --offline "sunset over mountains"
//	glyphloom generate --lang fr "la mer et la lune"
//	glyphloom generate --json "forest" | jq .sequence
var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Map a text prompt to a pictograph sequence",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerateCommand,
}

func init() {
	generateCmd.Flags().StringVar(&generateLanguage, "lang", "en",
		"Prompt language code (en, fr)")
	generateCmd.Flags().BoolVar(&generateOffline, "offline", false,
		"Skip the upstream model and use the offline keyword mapping")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false,
		"Output the full result as JSON")
	generateCmd.Flags().StringVar(&generateMode, "grid", "",
		"Also print the layout grid (concentric or linear)")
}

func runGenerateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogging(cfg.Logging)
	defer logger.Close()

	prompt := strings.Join(args, " ")
	orchestrator := newOrchestrator(cfg, generateOffline)

	ctx, cancel := timeoutContext()
	defer cancel()

	result, err := orchestrator.Generate(ctx, prompt, generateLanguage)
	if err != nil {
		return err
	}

	if generateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("%s  (%s, confidence %.2f)\n",
		strings.Join(result.Sequence, " "), result.Source, result.Confidence)
	if result.Name != "" {
		fmt.Printf("Name: %s\n", result.Name)
	}
	if result.Rationale != "" {
		fmt.Printf("Why:  %s\n", result.Rationale)
	}

	if generateMode != "" {
		mode, err := pattern.ParseMode(generateMode)
		if err != nil {
			return err
		}
		grid, err := pattern.NewGenerator().Generate(result.Sequence, mode)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(renderASCII(grid))
	}
	return nil
}
