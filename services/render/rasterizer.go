// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Raster is a rasterized symbol at a fixed pixel size.
//
// Rasters are immutable once produced and shared between cache consumers;
// callers must not mutate Image.
type Raster struct {
	// Symbol is the pictograph this raster was produced from.
	Symbol string

	// Size is the square pixel dimension of the raster.
	Size int

	// Image holds the pixels.
	Image *image.RGBA
}

// Rasterizer produces pixel rasters for symbols.
//
// Implementations must be deterministic: the same (symbol, size) pair
// always yields pixel-identical output, since rasters are cached and
// shared by symbol and size alone.
type Rasterizer interface {
	Rasterize(symbol string, size int) (*Raster, error)
}

// GlyphRasterizer is the default Rasterizer.
//
// It renders the symbol's text with a bitmap face from
// golang.org/x/image/font/basicfont over a background tint derived
// deterministically from the symbol. Full-color emoji font stacks plug in
// behind the Rasterizer interface; this implementation keeps the render
// path self-contained and dependency-light.
type GlyphRasterizer struct {
	face font.Face
}

// NewGlyphRasterizer creates the default rasterizer.
func NewGlyphRasterizer() *GlyphRasterizer {
	return &GlyphRasterizer{face: basicfont.Face7x13}
}

// Rasterize implements the Rasterizer interface.
func (g *GlyphRasterizer) Rasterize(symbol string, size int) (*Raster, error) {
	if symbol == "" {
		return nil, fmt.Errorf("cannot rasterize empty symbol")
	}
	if size <= 0 {
		return nil, fmt.Errorf("raster size must be positive, got %d", size)
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(symbolTint(symbol)), image.Point{}, draw.Src)

	// One-pixel border so adjacent cells read as distinct on dense grids.
	border := color.RGBA{A: 0xFF}
	for i := 0; i < size; i++ {
		img.SetRGBA(i, 0, border)
		img.SetRGBA(i, size-1, border)
		img.SetRGBA(0, i, border)
		img.SetRGBA(size-1, i, border)
	}

	d := font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: g.face,
	}
	w := d.MeasureString(symbol)
	d.Dot = fixed.Point26_6{
		X: (fixed.I(size) - w) / 2,
		Y: fixed.I(size/2) + g.face.Metrics().Ascent/2,
	}
	d.DrawString(symbol)

	return &Raster{Symbol: symbol, Size: size, Image: img}, nil
}

// symbolTint derives a stable pastel background color from a symbol.
func symbolTint(symbol string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	v := h.Sum32()
	// Keep channels in the upper half so the black glyph stays legible.
	return color.RGBA{
		R: uint8(128 + v%128),
		G: uint8(128 + (v>>8)%128),
		B: uint8(128 + (v>>16)%128),
		A: 0xFF,
	}
}
