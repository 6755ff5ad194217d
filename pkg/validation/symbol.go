// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for user-provided
// pictograph symbols.
//
// This package contains validators for symbol tokens before they reach the
// pattern generator, the bitmap cache, or any cache key construction. Using
// these validators keeps malformed multi-cluster strings and plain text out
// of cache keys and rendered grids.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// DefaultMaxSequenceLength bounds how many symbols a single pattern accepts.
const DefaultMaxSequenceLength = 10

// pictographRanges covers the Unicode blocks we accept as pictograph bases.
//
// A symbol's first rune must fall in one of these blocks. Trailing runes of
// the same grapheme cluster (skin tone modifiers, variation selectors, ZWJ
// joins, regional indicator pairs) are accepted as cluster continuation.
var pictographRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2190, Hi: 0x21FF, Stride: 1}, // Arrows
		{Lo: 0x2580, Hi: 0x25FF, Stride: 1}, // Block Elements, Geometric Shapes
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1}, // Miscellaneous Symbols
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1}, // Dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // Misc Symbols and Arrows
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1F0FF, Stride: 1}, // Mahjong, Dominoes, Playing Cards
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // Regional Indicators
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // Misc Symbols and Pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // Emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // Transport and Map
		{Lo: 0x1F780, Hi: 0x1F7FF, Stride: 1}, // Geometric Shapes Extended
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // Supplemental Symbols and Pictographs
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // Symbols and Pictographs Extended-A
	},
}

// continuationRunes are runes permitted after the base rune inside a single
// grapheme cluster.
func isContinuationRune(r rune) bool {
	switch {
	case r == 0x200D: // Zero-width joiner
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // Variation selectors
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // Skin tone modifiers
		return true
	case r == 0x20E3: // Combining enclosing keycap
		return true
	}
	return unicode.Is(pictographRanges, r)
}

// ValidateSymbol validates one pictograph token.
//
// Valid symbols:
//   - Non-empty
//   - Exactly one grapheme cluster (one user-perceived character)
//   - Base rune drawn from a recognized pictograph block
//
// Returns an error describing the first violation found.
//
// Example:
//
//	if err := validation.ValidateSymbol(token); err != nil {
//	    return fmt.Errorf("invalid symbol: %w", err)
//	}
//	// Safe to use as a cache key component
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}

	if uniseg.GraphemeClusterCount(symbol) != 1 {
		return fmt.Errorf("symbol %q must be exactly one grapheme cluster", symbol)
	}

	runes := []rune(symbol)
	if !unicode.Is(pictographRanges, runes[0]) {
		return fmt.Errorf("symbol %q is not a recognized pictograph", symbol)
	}
	for _, r := range runes[1:] {
		if !isContinuationRune(r) {
			return fmt.Errorf("symbol %q contains unexpected rune %U", symbol, r)
		}
	}

	return nil
}

// ValidateSequence validates an ordered list of symbols against the given
// length bound. A maxLen of 0 applies DefaultMaxSequenceLength.
//
// Returns an error naming the index of the first invalid symbol, so callers
// can surface which position in the pattern failed.
func ValidateSequence(symbols []string, maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxSequenceLength
	}
	if len(symbols) > maxLen {
		return fmt.Errorf("sequence has %d symbols, maximum is %d", len(symbols), maxLen)
	}

	for i, s := range symbols {
		if err := ValidateSymbol(s); err != nil {
			return fmt.Errorf("symbol at index %d: %w", i, err)
		}
	}
	return nil
}

// SanitizeSymbol normalizes and validates a symbol token.
// Strips surrounding whitespace, then validates.
//
// Use this on tokens arriving from text or voice input:
//
//	safe, err := validation.SanitizeSymbol(userToken)
//	if err != nil {
//	    return err
//	}
func SanitizeSymbol(symbol string) (string, error) {
	normalized := strings.TrimSpace(symbol)
	if err := ValidateSymbol(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
