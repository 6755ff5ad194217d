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
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/glyphloom/glyphloom/services/pattern"
	"github.com/glyphloom/glyphloom/services/render"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	patternMode string // Layout mode
	patternJSON bool   // Output the grid as JSON
	patternPNG  string // Write a rasterized preview to this path
	patternSize int    // Preview dimensions in pixels
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// patternCmd lays a symbol sequence out as a grid.
//
// # Description
//
// Takes pictograph symbols as arguments and prints the resulting grid.
// Concentric mode nests each symbol as a square ring around the last
// one; linear mode prints a single row.
//
// # Examples
//
//	glyphloom pattern 🌊 💙
//	glyphloom pattern --mode linear 🌊 ⭐ 🌙
//	glyphloom pattern --json 🌊 💙 | jq .cells
//	glyphloom pattern --png wave.png 🌊 💙
var patternCmd = &cobra.Command{
	Use:   "pattern <symbol>...",
	Short: "Lay a symbol sequence out as a grid",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPatternCommand,
}

func init() {
	patternCmd.Flags().StringVar(&patternMode, "mode", "concentric",
		"Layout mode: concentric or linear")
	patternCmd.Flags().BoolVar(&patternJSON, "json", false,
		"Output the grid as JSON")
	patternCmd.Flags().StringVar(&patternPNG, "png", "",
		"Write a rasterized preview to this path")
	patternCmd.Flags().IntVar(&patternSize, "size", 512,
		"Preview dimensions in pixels")
}

func runPatternCommand(cmd *cobra.Command, args []string) error {
	mode, err := pattern.ParseMode(patternMode)
	if err != nil {
		return err
	}

	grid, err := pattern.NewGenerator().Generate(args, mode)
	if err != nil {
		return err
	}

	if patternPNG != "" {
		if err := writePNG(grid, patternPNG, patternSize); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", patternPNG)
	}

	if patternJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(grid)
	}

	fmt.Print(renderASCII(grid))
	return nil
}

// writePNG rasterizes the grid onto an image surface and encodes it.
func writePNG(grid *pattern.Grid, path string, size int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	surface := render.NewImageSurface(size, size)
	cache := render.NewBitmapCache(render.NewGlyphRasterizer(), cfg.Render.BitmapCapacity)
	sched := render.NewScheduler(cache, surface, time.Duration(cfg.Render.PaintInterval))
	sched.Schedule(grid, 1.0)
	sched.PaintNow()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, surface.Image()); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// renderASCII prints the grid one row per line, empty cells as dots.
func renderASCII(grid *pattern.Grid) string {
	if grid.IsEmpty() {
		return "(empty)\n"
	}

	var b strings.Builder
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			if cell, ok := grid.At(row, col); ok && cell != nil {
				b.WriteString(cell.Symbol)
			} else {
				b.WriteString("·")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
