// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glyphloom/glyphloom/services/pattern"
)

// DefaultPaintInterval approximates one paint per 60Hz animation tick.
const DefaultPaintInterval = 16 * time.Millisecond

// Frame is one scheduled draw request.
type Frame struct {
	// Grid is the layout to paint.
	Grid *pattern.Grid

	// Progress is the animation progress in [0,1]; cells are drawn scaled
	// by it so patterns grow in as a sequence is assembled.
	Progress float64
}

// SchedulerStats contains paint-loop counters.
type SchedulerStats struct {
	// Paints is the number of frames actually drawn.
	Paints int64

	// Coalesced is the number of scheduled frames dropped because a newer
	// frame replaced them before the next tick.
	Coalesced int64
}

// Scheduler coalesces redraw requests into one paint per tick.
//
// Multiple Schedule calls within one paint interval collapse to the most
// recent frame; older frames are silently dropped, never queued. This
// bounds redraw cost under rapid sequence edits such as fast typing or
// voice dictation.
//
// Drawing reads exclusively through the BitmapCache: the paint path never
// rasterizes inline.
//
// # Lifecycle
//
//	sched := render.NewScheduler(cache, surface, 0)
//	sched.Start(ctx)
//	defer sched.Stop()
type Scheduler struct {
	cache    *BitmapCache
	surface  Surface
	interval time.Duration

	mu      sync.Mutex
	pending *Frame
	cancel  context.CancelFunc
	done    chan struct{}

	paints    int64
	coalesced int64
}

// NewScheduler creates a scheduler drawing through cache onto surface.
//
// An interval of 0 or less applies DefaultPaintInterval.
func NewScheduler(cache *BitmapCache, surface Surface, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultPaintInterval
	}
	return &Scheduler{cache: cache, surface: surface, interval: interval}
}

// Schedule records a frame for the next paint opportunity.
//
// Last write wins: a frame scheduled before the next tick replaces any
// frame already waiting.
func (s *Scheduler) Schedule(grid *pattern.Grid, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		atomic.AddInt64(&s.coalesced, 1)
		recordCount(paintsCoalesced)
	}
	s.pending = &Frame{Grid: grid, Progress: progress}
}

// Start launches the paint loop. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	// The goroutine gets its own copy of the channel: Stop nils the field,
	// so the loop must never read it back off the struct.
	go s.loop(loopCtx, done)
}

// Stop halts the paint loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// PaintNow synchronously paints the pending frame, if any.
//
// Used by the CLI preview path and by tests; the paint loop calls the same
// path on every tick.
func (s *Scheduler) PaintNow() {
	s.mu.Lock()
	frame := s.pending
	s.pending = nil
	s.mu.Unlock()

	if frame == nil {
		return
	}
	s.paint(frame)
}

// Stats returns paint-loop counters.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Paints:    atomic.LoadInt64(&s.paints),
		Coalesced: atomic.LoadInt64(&s.coalesced),
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PaintNow()
		}
	}
}

// paint draws one frame, centered on the surface.
func (s *Scheduler) paint(f *Frame) {
	if f.Grid == nil || f.Grid.IsEmpty() {
		return
	}

	width, height := s.surface.Size()
	side := f.Grid.Side()
	cellPx := min(width, height) / side
	if cellPx < 1 {
		cellPx = 1
	}

	progress := f.Progress
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	drawPx := int(float64(cellPx) * progress)
	if drawPx == 0 {
		return
	}

	offsetX := (width - cellPx*f.Grid.Cols()) / 2
	offsetY := (height - cellPx*f.Grid.Rows()) / 2
	inset := (cellPx - drawPx) / 2

	for _, cell := range f.Grid.Cells() {
		// Rasters are cached at the full cell size; animation scaling
		// happens at blit time so it never thrashes the cache.
		raster, err := s.cache.Get(cell.Symbol, cellPx)
		if err != nil {
			slog.Warn("skipping cell with unrenderable symbol",
				"symbol", cell.Symbol, "error", err)
			continue
		}
		x := offsetX + cell.Col*cellPx + inset
		y := offsetY + cell.Row*cellPx + inset
		s.surface.DrawRaster(raster, x, y, drawPx)
	}

	atomic.AddInt64(&s.paints, 1)
	recordCount(paintsTotal)
}
