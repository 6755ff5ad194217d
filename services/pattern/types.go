// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pattern

import (
	"encoding/json"
	"fmt"
)

// Mode selects the layout algorithm.
type Mode string

const (
	// ModeConcentric nests each symbol as a square ring inside the previous one.
	ModeConcentric Mode = "concentric"

	// ModeLinear places symbols on a single row, left to right.
	ModeLinear Mode = "linear"
)

// ParseMode converts a string to a Mode.
//
// Returns an error for unknown mode names so API-facing callers can reject
// bad input before generation.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeConcentric, ModeLinear:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown layout mode %q", s)
	}
}

// Cell is one positioned symbol in a generated grid.
//
// Layer is the 0-based distance-from-outside index assigned during
// generation. IsCenter is true for exactly one cell when the input
// sequence is non-empty.
type Cell struct {
	Symbol   string `json:"symbol"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Layer    int    `json:"layer"`
	IsCenter bool   `json:"is_center"`
}

// Grid is a rectangular arrangement of cells produced by a Generator.
//
// Grids may be sparse: concentric layouts only fill ring perimeters, so
// interior coordinates between rings hold no cell. A Grid is derived
// entirely from its input sequence and has no identity of its own; callers
// persist the sequence, never the grid.
//
// Grid is immutable after generation and safe for concurrent reads.
type Grid struct {
	rows  int
	cols  int
	cells [][]*Cell
}

// newGrid allocates an empty rows×cols grid.
func newGrid(rows, cols int) *Grid {
	cells := make([][]*Cell, rows)
	for r := range cells {
		cells[r] = make([]*Cell, cols)
	}
	return &Grid{rows: rows, cols: cols, cells: cells}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Side returns the side length of a square grid.
//
// For concentric layouts this equals 2·len(sequence)−1. For non-square
// grids it returns the larger dimension.
func (g *Grid) Side() int {
	if g.cols > g.rows {
		return g.cols
	}
	return g.rows
}

// IsEmpty reports whether the grid holds no cells.
func (g *Grid) IsEmpty() bool { return g.rows == 0 || g.cols == 0 }

// At returns the cell at (row, col) and whether that coordinate is filled.
//
// Out-of-bounds coordinates return (nil, false) rather than panicking.
func (g *Grid) At(row, col int) (*Cell, bool) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return nil, false
	}
	c := g.cells[row][col]
	return c, c != nil
}

// Cells returns all filled cells in row-major order.
//
// The order is deterministic for a given grid, which keeps downstream
// cache keys and draw order stable.
func (g *Grid) Cells() []*Cell {
	out := make([]*Cell, 0, g.rows*g.cols)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if cell := g.cells[r][c]; cell != nil {
				out = append(out, cell)
			}
		}
	}
	return out
}

// Center returns the unique center cell, or nil for an empty grid.
func (g *Grid) Center() *Cell {
	for _, c := range g.Cells() {
		if c.IsCenter {
			return c
		}
	}
	return nil
}

// gridJSON is the wire form of a Grid.
type gridJSON struct {
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
	Cells []*Cell `json:"cells"`
}

// MarshalJSON serializes the grid as its filled cells plus dimensions.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON{Rows: g.rows, Cols: g.cols, Cells: g.Cells()})
}

// UnmarshalJSON rebuilds a grid from its wire form.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var w gridJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rebuilt := newGrid(w.Rows, w.Cols)
	for _, c := range w.Cells {
		if c.Row < 0 || c.Row >= w.Rows || c.Col < 0 || c.Col >= w.Cols {
			return fmt.Errorf("cell (%d,%d) outside %dx%d grid", c.Row, c.Col, w.Rows, w.Cols)
		}
		rebuilt.cells[c.Row][c.Col] = c
	}
	*g = *rebuilt
	return nil
}
