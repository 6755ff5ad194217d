// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pattern

import (
	"github.com/glyphloom/glyphloom/pkg/validation"
)

// Generator lays out symbol sequences as grids.
//
// Construct one per consumer via NewGenerator and pass it by reference;
// it holds only configuration and is safe for concurrent use.
type Generator struct {
	opts Options
}

// Options configures a Generator.
type Options struct {
	// MaxSequenceLength bounds accepted input length.
	MaxSequenceLength int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{MaxSequenceLength: validation.DefaultMaxSequenceLength}
}

// Option is a functional option for configuring a Generator.
type Option func(*Options)

// WithMaxSequenceLength sets the accepted input length bound.
func WithMaxSequenceLength(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxSequenceLength = n
		}
	}
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Generator{opts: options}
}

// Generate lays out sequence according to mode.
//
// An empty sequence yields an empty grid with no error. Validation is
// all-or-nothing: if any symbol fails, no grid is produced and the
// returned error is a *ValidationError naming the offending index.
//
// Concentric mode produces a square grid of side 2·len−1. The symbol at
// sequence[layer] traces the perimeter of the square ring at Chebyshev
// distance len−1−layer from the center. Each layer's distance is strictly
// smaller than the previous one, so later rings never overwrite earlier
// ones, and the final symbol lands on the single center cell.
//
// Linear mode produces a 1×len grid with sequence[i] at column i.
func (g *Generator) Generate(sequence []string, mode Mode) (*Grid, error) {
	if err := g.validate(sequence); err != nil {
		return nil, err
	}

	if len(sequence) == 0 {
		return newGrid(0, 0), nil
	}

	switch mode {
	case ModeLinear:
		return g.generateLinear(sequence), nil
	default:
		return g.generateConcentric(sequence), nil
	}
}

// validate checks the sequence bound and every symbol, reporting the first
// failure with its index.
func (g *Generator) validate(sequence []string) error {
	if len(sequence) > g.opts.MaxSequenceLength {
		return &ValidationError{
			Index: -1,
			Err:   errTooLong(len(sequence), g.opts.MaxSequenceLength),
		}
	}
	for i, s := range sequence {
		if err := validation.ValidateSymbol(s); err != nil {
			return &ValidationError{Index: i, Err: err}
		}
	}
	return nil
}

func (g *Generator) generateConcentric(sequence []string) *Grid {
	length := len(sequence)
	side := 2*length - 1
	center := side / 2
	grid := newGrid(side, side)

	for layer := 0; layer < length; layer++ {
		dist := length - 1 - layer
		symbol := sequence[layer]

		if dist == 0 {
			grid.cells[center][center] = &Cell{
				Symbol:   symbol,
				Row:      center,
				Col:      center,
				Layer:    layer,
				IsCenter: true,
			}
			continue
		}

		place := func(row, col int) {
			grid.cells[row][col] = &Cell{
				Symbol: symbol,
				Row:    row,
				Col:    col,
				Layer:  layer,
			}
		}

		top, bottom := center-dist, center+dist
		for col := center - dist; col <= center+dist; col++ {
			place(top, col)
			place(bottom, col)
		}
		// Left and right edges, excluding the corners already placed.
		for row := top + 1; row <= bottom-1; row++ {
			place(row, center-dist)
			place(row, center+dist)
		}
	}

	return grid
}

func (g *Generator) generateLinear(sequence []string) *Grid {
	grid := newGrid(1, len(sequence))
	for i, symbol := range sequence {
		grid.cells[0][i] = &Cell{
			Symbol:   symbol,
			Row:      0,
			Col:      i,
			Layer:    i,
			IsCenter: i == len(sequence)-1,
		}
	}
	return grid
}
