// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pattern

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

// symbols returns the first n entries of a fixed valid-symbol palette.
func symbols(n int) []string {
	palette := []string{"🌊", "💙", "⭐", "🌙", "☀️", "🌸", "🍀", "🔥", "❄️", "🎵"}
	return palette[:n]
}

func TestGenerate_EmptySequence(t *testing.T) {
	gen := NewGenerator()

	grid, err := gen.Generate(nil, ModeConcentric)
	if err != nil {
		t.Fatalf("Generate(empty) error = %v", err)
	}
	if !grid.IsEmpty() {
		t.Errorf("expected empty grid, got %dx%d", grid.Rows(), grid.Cols())
	}
	if got := len(grid.Cells()); got != 0 {
		t.Errorf("expected 0 cells, got %d", got)
	}
}

func TestGenerate_ConcentricSideLength(t *testing.T) {
	gen := NewGenerator()

	for n := 1; n <= 10; n++ {
		grid, err := gen.Generate(symbols(n), ModeConcentric)
		if err != nil {
			t.Fatalf("Generate(len=%d) error = %v", n, err)
		}
		want := 2*n - 1
		if grid.Side() != want {
			t.Errorf("len=%d: side = %d, want %d", n, grid.Side(), want)
		}
	}
}

func TestGenerate_ConcentricCenterCell(t *testing.T) {
	gen := NewGenerator()

	for n := 1; n <= 10; n++ {
		seq := symbols(n)
		grid, err := gen.Generate(seq, ModeConcentric)
		if err != nil {
			t.Fatalf("Generate(len=%d) error = %v", n, err)
		}

		var centers []*Cell
		for _, c := range grid.Cells() {
			if c.IsCenter {
				centers = append(centers, c)
			}
		}
		if len(centers) != 1 {
			t.Fatalf("len=%d: %d center cells, want exactly 1", n, len(centers))
		}
		if centers[0].Symbol != seq[n-1] {
			t.Errorf("len=%d: center symbol = %q, want %q", n, centers[0].Symbol, seq[n-1])
		}
		mid := grid.Side() / 2
		if centers[0].Row != mid || centers[0].Col != mid {
			t.Errorf("len=%d: center at (%d,%d), want (%d,%d)",
				n, centers[0].Row, centers[0].Col, mid, mid)
		}
	}
}

func TestGenerate_ConcentricOuterRing(t *testing.T) {
	gen := NewGenerator()

	for n := 2; n <= 10; n++ {
		seq := symbols(n)
		grid, err := gen.Generate(seq, ModeConcentric)
		if err != nil {
			t.Fatalf("Generate(len=%d) error = %v", n, err)
		}

		side := grid.Side()
		for i := 0; i < side; i++ {
			for _, pos := range [][2]int{{0, i}, {side - 1, i}, {i, 0}, {i, side - 1}} {
				cell, ok := grid.At(pos[0], pos[1])
				if !ok {
					t.Fatalf("len=%d: perimeter (%d,%d) unfilled", n, pos[0], pos[1])
				}
				if cell.Symbol != seq[0] {
					t.Errorf("len=%d: perimeter (%d,%d) = %q, want %q",
						n, pos[0], pos[1], cell.Symbol, seq[0])
				}
				if cell.Layer != 0 {
					t.Errorf("len=%d: perimeter layer = %d, want 0", n, cell.Layer)
				}
			}
		}
	}
}

func TestGenerate_ConcentricRingsDoNotOverwrite(t *testing.T) {
	gen := NewGenerator()
	seq := symbols(3)

	grid, err := gen.Generate(seq, ModeConcentric)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}

	// Every filled cell's symbol must match its layer's input symbol.
	for _, c := range grid.Cells() {
		if c.Symbol != seq[c.Layer] {
			t.Errorf("cell (%d,%d) layer %d has %q, want %q",
				c.Row, c.Col, c.Layer, c.Symbol, seq[c.Layer])
		}
	}

	// Ring interiors stay sparse: (1,1) belongs to no ring of a 5x5 3-layer
	// grid only if it is the middle ring; check a genuinely interior gap for
	// a 4-symbol grid instead.
	grid4, err := gen.Generate(symbols(4), ModeConcentric)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	ringCells := map[int]int{}
	for _, c := range grid4.Cells() {
		ringCells[c.Layer]++
	}
	// Ring at distance d has 8d cells; the center has 1.
	wantCounts := map[int]int{0: 24, 1: 16, 2: 8, 3: 1}
	if !reflect.DeepEqual(ringCells, wantCounts) {
		t.Errorf("ring cell counts = %v, want %v", ringCells, wantCounts)
	}
}

func TestGenerate_SingleSymbol(t *testing.T) {
	gen := NewGenerator()

	grid, err := gen.Generate([]string{"🌊"}, ModeConcentric)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	if grid.Side() != 1 {
		t.Fatalf("side = %d, want 1", grid.Side())
	}
	cell, ok := grid.At(0, 0)
	if !ok || !cell.IsCenter || cell.Symbol != "🌊" {
		t.Errorf("single-symbol grid cell = %+v", cell)
	}
}

func TestGenerate_Linear(t *testing.T) {
	gen := NewGenerator()
	seq := symbols(4)

	grid, err := gen.Generate(seq, ModeLinear)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	if grid.Rows() != 1 || grid.Cols() != 4 {
		t.Fatalf("grid is %dx%d, want 1x4", grid.Rows(), grid.Cols())
	}
	for i, want := range seq {
		cell, ok := grid.At(0, i)
		if !ok {
			t.Fatalf("cell (0,%d) unfilled", i)
		}
		if cell.Symbol != want {
			t.Errorf("cell (0,%d) = %q, want %q", i, cell.Symbol, want)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	gen := NewGenerator()
	seq := symbols(5)

	for _, mode := range []Mode{ModeConcentric, ModeLinear} {
		a, err := gen.Generate(seq, mode)
		if err != nil {
			t.Fatalf("Generate error = %v", err)
		}
		b, err := gen.Generate(seq, mode)
		if err != nil {
			t.Fatalf("Generate error = %v", err)
		}
		if !reflect.DeepEqual(a.Cells(), b.Cells()) {
			t.Errorf("mode %s: repeated generation differs", mode)
		}
	}
}

func TestGenerate_ValidationFailures(t *testing.T) {
	gen := NewGenerator(WithMaxSequenceLength(3))

	t.Run("invalid symbol reports index", func(t *testing.T) {
		_, err := gen.Generate([]string{"🌊", "nope", "⭐"}, ModeConcentric)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("error = %v, want *ValidationError", err)
		}
		if verr.Index != 1 {
			t.Errorf("Index = %d, want 1", verr.Index)
		}
	})

	t.Run("over length bound", func(t *testing.T) {
		_, err := gen.Generate(symbols(4), ModeConcentric)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("error = %v, want *ValidationError", err)
		}
		if verr.Index != -1 {
			t.Errorf("Index = %d, want -1", verr.Index)
		}
	})

	t.Run("no partial grid on failure", func(t *testing.T) {
		grid, err := gen.Generate([]string{"🌊", "x"}, ModeConcentric)
		if err == nil {
			t.Fatal("expected error")
		}
		if grid != nil {
			t.Errorf("expected nil grid on validation failure, got %+v", grid)
		}
	})
}

func TestGrid_JSONRoundTrip(t *testing.T) {
	gen := NewGenerator()
	grid, err := gen.Generate(symbols(3), ModeConcentric)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}

	data, err := json.Marshal(grid)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var decoded Grid
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if !reflect.DeepEqual(grid.Cells(), decoded.Cells()) {
		t.Errorf("round-tripped grid differs")
	}
}

func TestParseMode(t *testing.T) {
	if _, err := ParseMode("concentric"); err != nil {
		t.Errorf("ParseMode(concentric) error = %v", err)
	}
	if _, err := ParseMode("linear"); err != nil {
		t.Errorf("ParseMode(linear) error = %v", err)
	}
	if _, err := ParseMode("spiral"); err == nil {
		t.Error("ParseMode(spiral) expected error")
	}
}
