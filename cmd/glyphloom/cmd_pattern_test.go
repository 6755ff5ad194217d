// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"strings"
	"testing"

	"github.com/glyphloom/glyphloom/services/pattern"
)

func TestRenderASCII_ConcentricGrid(t *testing.T) {
	grid, err := pattern.NewGenerator().Generate([]string{"🌊", "💙"}, pattern.ModeConcentric)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}

	out := renderASCII(grid)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("rows = %d, want 3", len(lines))
	}

	want := []string{
		"🌊 🌊 🌊",
		"🌊 💙 🌊",
		"🌊 🌊 🌊",
	}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("row %d = %q, want %q", i, line, want[i])
		}
	}
}

func TestRenderASCII_LinearGrid(t *testing.T) {
	grid, err := pattern.NewGenerator().Generate([]string{"🌊", "⭐", "🌙"}, pattern.ModeLinear)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}

	if got, want := strings.TrimRight(renderASCII(grid), "\n"), "🌊 ⭐ 🌙"; got != want {
		t.Errorf("renderASCII = %q, want %q", got, want)
	}
}

func TestRenderASCII_EmptyGrid(t *testing.T) {
	grid, err := pattern.NewGenerator().Generate(nil, pattern.ModeConcentric)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	if got := renderASCII(grid); got != "(empty)\n" {
		t.Errorf("renderASCII = %q, want %q", got, "(empty)\n")
	}
}
