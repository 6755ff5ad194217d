// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"context"
	"testing"
	"time"

	"github.com/glyphloom/glyphloom/services/pattern"
)

func testGrid(t *testing.T, n int) *pattern.Grid {
	t.Helper()
	palette := []string{"🌊", "💙", "⭐", "🌙", "☀️"}
	grid, err := pattern.NewGenerator().Generate(palette[:n], pattern.ModeConcentric)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	return grid
}

func TestScheduler_CoalescesToLatestFrame(t *testing.T) {
	cache := NewBitmapCache(&countingRasterizer{}, 50)
	surface := NewImageSurface(90, 90)
	sched := NewScheduler(cache, surface, 0)

	small := testGrid(t, 1)
	large := testGrid(t, 2)

	sched.Schedule(small, 1.0)
	sched.Schedule(small, 1.0)
	sched.Schedule(large, 1.0)
	sched.PaintNow()

	stats := sched.Stats()
	if stats.Paints != 1 {
		t.Errorf("paints = %d, want 1", stats.Paints)
	}
	if stats.Coalesced != 2 {
		t.Errorf("coalesced = %d, want 2", stats.Coalesced)
	}

	// The painted frame is the most recent one: a 3x3 grid draws 9 cells.
	if surface.DrawCalls() != 9 {
		t.Errorf("draw calls = %d, want 9 (latest grid)", surface.DrawCalls())
	}
}

func TestScheduler_NoPendingFrameNoPaint(t *testing.T) {
	cache := NewBitmapCache(&countingRasterizer{}, 50)
	surface := NewImageSurface(90, 90)
	sched := NewScheduler(cache, surface, 0)

	sched.PaintNow()
	sched.PaintNow()

	if sched.Stats().Paints != 0 {
		t.Errorf("paints = %d, want 0", sched.Stats().Paints)
	}
}

func TestScheduler_DrawsThroughCache(t *testing.T) {
	raster := &countingRasterizer{}
	cache := NewBitmapCache(raster, 50)
	surface := NewImageSurface(90, 90)
	sched := NewScheduler(cache, surface, 0)

	grid := testGrid(t, 2)

	sched.Schedule(grid, 1.0)
	sched.PaintNow()
	sched.Schedule(grid, 1.0)
	sched.PaintNow()

	// Two symbols at one size: two rasterizations total, the second paint
	// is served entirely from cache.
	if raster.Calls() != 2 {
		t.Errorf("rasterization calls = %d, want 2", raster.Calls())
	}
	if surface.DrawCalls() != 18 {
		t.Errorf("draw calls = %d, want 18", surface.DrawCalls())
	}
}

func TestScheduler_ZeroProgressSkipsDraw(t *testing.T) {
	cache := NewBitmapCache(&countingRasterizer{}, 50)
	surface := NewImageSurface(90, 90)
	sched := NewScheduler(cache, surface, 0)

	sched.Schedule(testGrid(t, 2), 0)
	sched.PaintNow()

	if surface.DrawCalls() != 0 {
		t.Errorf("draw calls = %d, want 0 at progress 0", surface.DrawCalls())
	}
}

func TestScheduler_EmptyGridIsNoop(t *testing.T) {
	cache := NewBitmapCache(&countingRasterizer{}, 50)
	surface := NewImageSurface(90, 90)
	sched := NewScheduler(cache, surface, 0)

	empty, err := pattern.NewGenerator().Generate(nil, pattern.ModeConcentric)
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	sched.Schedule(empty, 1.0)
	sched.PaintNow()

	if surface.DrawCalls() != 0 {
		t.Errorf("draw calls = %d, want 0 for empty grid", surface.DrawCalls())
	}
}

func TestScheduler_PaintLoopLifecycle(t *testing.T) {
	cache := NewBitmapCache(&countingRasterizer{}, 50)
	surface := NewImageSurface(90, 90)
	sched := NewScheduler(cache, surface, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched.Start(ctx)
	sched.Schedule(testGrid(t, 1), 1.0)

	deadline := time.After(time.Second)
	for sched.Stats().Paints == 0 {
		select {
		case <-deadline:
			t.Fatal("paint loop never painted the scheduled frame")
		case <-time.After(time.Millisecond):
		}
	}

	sched.Stop()

	// After Stop, newly scheduled frames stay pending.
	painted := sched.Stats().Paints
	sched.Schedule(testGrid(t, 1), 1.0)
	time.Sleep(10 * time.Millisecond)
	if sched.Stats().Paints != painted {
		t.Error("scheduler painted after Stop")
	}
}

func TestScheduler_ImmediateStopAfterStart(t *testing.T) {
	cache := NewBitmapCache(&countingRasterizer{}, 50)
	surface := NewImageSurface(90, 90)
	sched := NewScheduler(cache, surface, time.Millisecond)

	// Stop can win the race against the loop goroutine's first statement;
	// the loop must still close the channel Stop is waiting on.
	for i := 0; i < 2000; i++ {
		sched.Start(context.Background())
		sched.Stop()
	}
}
