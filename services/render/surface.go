// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"image"
	"image/draw"
	"sync"
)

// Surface is the presentation layer's drawing target.
//
// The presentation layer owns the physical canvas; the render pipeline only
// needs its dimensions and a way to blit rasters onto it. Implementations
// must tolerate draws arriving from the scheduler's paint goroutine.
type Surface interface {
	// Size returns the drawable width and height in pixels.
	Size() (width, height int)

	// DrawRaster blits a raster at (x, y), scaled to size pixels square.
	DrawRaster(r *Raster, x, y, size int)
}

// ImageSurface is an in-memory Surface backed by an RGBA image.
//
// Used by the CLI preview path and by tests; a GUI embeds its own Surface.
type ImageSurface struct {
	mu  sync.Mutex
	img *image.RGBA

	drawCalls int
}

// NewImageSurface creates a surface of the given dimensions.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Size returns the surface dimensions.
func (s *ImageSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// DrawRaster blits the raster using nearest-neighbor scaling.
func (s *ImageSurface) DrawRaster(r *Raster, x, y, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drawCalls++
	if r.Size == size {
		dst := image.Rect(x, y, x+size, y+size)
		draw.Draw(s.img, dst, r.Image, image.Point{}, draw.Over)
		return
	}
	for dy := 0; dy < size; dy++ {
		sy := dy * r.Size / size
		for dx := 0; dx < size; dx++ {
			sx := dx * r.Size / size
			s.img.Set(x+dx, y+dy, r.Image.At(sx, sy))
		}
	}
}

// Image returns the backing image for inspection or encoding.
func (s *ImageSurface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// DrawCalls returns how many rasters have been blitted.
func (s *ImageSurface) DrawCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawCalls
}
