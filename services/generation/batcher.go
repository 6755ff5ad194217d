// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// CallFunc performs one upstream generation call.
type CallFunc func(ctx context.Context, req Request) (*Result, error)

// flight is one pending signature and every caller waiting on it.
type flight struct {
	key  string
	req  Request
	done chan struct{}
	res  *Result
	err  error
}

// RequestBatcher groups near-simultaneous generation requests and issues
// one upstream call per distinct signature.
//
// The first request for a signature opens a time-boxed batch; callers
// arriving within the window (or while the signature's upstream call is
// still in flight) attach to the existing flight instead of triggering a
// new call. The batch flushes when the window elapses or when enough
// distinct signatures have queued, whichever comes first. Every caller
// sharing a signature observes the identical result.
//
// A caller that cancels its context merely detaches from the fan-out; the
// shared upstream call keeps running for the remaining callers.
//
// # Thread Safety
//
// RequestBatcher is safe for concurrent use.
type RequestBatcher struct {
	window        time.Duration
	maxSignatures int
	call          CallFunc

	mu      sync.Mutex
	flights map[string]*flight
	batch   []*flight
	timer   *time.Timer

	group singleflight.Group

	upstreamCalls int64
	batchCount    int64
}

// NewRequestBatcher creates a batcher invoking call on flush.
//
// Non-positive window or maxSignatures apply DefaultBatchWindow and
// DefaultBatchMaxSignatures.
func NewRequestBatcher(call CallFunc, window time.Duration, maxSignatures int) *RequestBatcher {
	if window <= 0 {
		window = DefaultBatchWindow
	}
	if maxSignatures <= 0 {
		maxSignatures = DefaultBatchMaxSignatures
	}
	return &RequestBatcher{
		window:        window,
		maxSignatures: maxSignatures,
		call:          call,
		flights:       make(map[string]*flight),
	}
}

// Do submits a request and waits for its batched result.
//
// Returns ctx.Err() if the caller's context is done first; that only
// detaches this caller, never the shared flight.
func (b *RequestBatcher) Do(ctx context.Context, req Request) (*Result, error) {
	key := normalize(req.Prompt, req.Language).key()

	b.mu.Lock()
	fl, ok := b.flights[key]
	if !ok {
		fl = &flight{key: key, req: req, done: make(chan struct{})}
		b.flights[key] = fl
		b.batch = append(b.batch, fl)

		if len(b.batch) == 1 {
			b.timer = time.AfterFunc(b.window, b.flush)
		}
		if len(b.batch) >= b.maxSignatures {
			b.flushLocked()
		}
	}
	b.mu.Unlock()

	select {
	case <-fl.done:
		return fl.res, fl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Flush forces the current batch out immediately.
//
// Exposed for shutdown paths; normal operation relies on the window timer
// and the size threshold.
func (b *RequestBatcher) Flush() {
	b.flush()
}

// UpstreamCalls returns how many upstream calls have been issued.
func (b *RequestBatcher) UpstreamCalls() int64 {
	return atomic.LoadInt64(&b.upstreamCalls)
}

// Batches returns how many batches have been flushed.
func (b *RequestBatcher) Batches() int64 {
	return atomic.LoadInt64(&b.batchCount)
}

func (b *RequestBatcher) flush() {
	b.mu.Lock()
	b.flushLocked()
	b.mu.Unlock()
}

// flushLocked hands the current batch to worker goroutines. Caller holds b.mu.
func (b *RequestBatcher) flushLocked() {
	if len(b.batch) == 0 {
		return
	}

	batch := b.batch
	b.batch = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}

	atomic.AddInt64(&b.batchCount, 1)
	slog.Debug("flushing generation batch",
		"batch_id", uuid.NewString(),
		"signatures", len(batch),
	)

	for _, fl := range batch {
		go b.resolve(fl)
	}
}

// resolve executes one flight's upstream call and fans the result out.
func (b *RequestBatcher) resolve(fl *flight) {
	// The flush is shared with other callers, so it runs on its own
	// context; per-attempt deadlines are applied inside the call func.
	v, err, _ := b.group.Do(fl.key, func() (interface{}, error) {
		atomic.AddInt64(&b.upstreamCalls, 1)
		return b.call(context.Background(), fl.req)
	})

	fl.res, _ = v.(*Result)
	fl.err = err

	b.mu.Lock()
	if b.flights[fl.key] == fl {
		delete(b.flights, fl.key)
	}
	b.mu.Unlock()

	close(fl.done)
}
