// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphloom/glyphloom/services/pattern"
)

// fakeUpstream is a scriptable UpstreamClient.
type fakeUpstream struct {
	result *Result
	err    error
	calls  int64
}

func (u *fakeUpstream) Generate(ctx context.Context, req Request) (*Result, error) {
	atomic.AddInt64(&u.calls, 1)
	if u.err != nil {
		return nil, u.err
	}
	out := *u.result
	return &out, nil
}

func (u *fakeUpstream) Calls() int64 {
	return atomic.LoadInt64(&u.calls)
}

// fastConfig keeps test latencies tiny.
func fastConfig() Config {
	return Config{
		RateWindow:         time.Minute,
		RateQuota:          100,
		FailureThreshold:   3,
		OpenTimeout:        time.Minute,
		BatchWindow:        2 * time.Millisecond,
		BatchMaxSignatures: 5,
		RequestTimeout:     time.Second,
		MaxRetries:         1,
		RetryBaseDelay:     time.Millisecond,
	}
}

func oceanUpstream() *fakeUpstream {
	return &fakeUpstream{result: &Result{
		Sequence:   []string{"🌊", "💙"},
		Rationale:  "calm water tones",
		Confidence: 0.9,
		Name:       "Ocean calm",
		Source:     SourceRemote,
	}}
}

func TestOrchestrator_RemoteGenerationEndToEnd(t *testing.T) {
	upstream := oceanUpstream()
	o := NewOrchestrator(upstream, fastConfig())

	result, err := o.Generate(context.Background(), "ocean waves", "en")
	require.NoError(t, err)
	require.Equal(t, SourceRemote, result.Source)
	require.Equal(t, []string{"🌊", "💙"}, result.Sequence)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)

	// The sequence lays out as a 3×3 concentric grid: first symbol on the
	// full perimeter, last symbol centered.
	grid, err := pattern.NewGenerator().Generate(result.Sequence, pattern.ModeConcentric)
	require.NoError(t, err)
	require.Equal(t, 3, grid.Side())

	center := grid.Center()
	require.NotNil(t, center)
	assert.Equal(t, "💙", center.Symbol)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if row == 1 && col == 1 {
				continue
			}
			cell, ok := grid.At(row, col)
			require.True(t, ok, "perimeter cell (%d,%d)", row, col)
			require.NotNil(t, cell, "perimeter cell (%d,%d)", row, col)
			assert.Equal(t, "🌊", cell.Symbol, "perimeter cell (%d,%d)", row, col)
		}
	}
}

func TestOrchestrator_SecondCallServedFromCache(t *testing.T) {
	upstream := oceanUpstream()
	o := NewOrchestrator(upstream, fastConfig())
	ctx := context.Background()

	first, err := o.Generate(ctx, "ocean waves", "en")
	require.NoError(t, err)
	require.Equal(t, SourceRemote, first.Source)

	// Same prompt modulo case and whitespace.
	second, err := o.Generate(ctx, "  Ocean Waves ", "en")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Sequence, second.Sequence)
	assert.EqualValues(t, 1, upstream.Calls())
}

func TestOrchestrator_ValidationErrorsAreTerminal(t *testing.T) {
	upstream := oceanUpstream()
	o := NewOrchestrator(upstream, fastConfig())
	ctx := context.Background()

	tests := []struct {
		name   string
		prompt string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"over length limit", strings.Repeat("a", MaxPromptLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := o.Generate(ctx, tt.prompt, "en")
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "err = %v", err)
			assert.Nil(t, result, "no fallback on validation failure")
		})
	}
	assert.EqualValues(t, 0, upstream.Calls())
}

func TestOrchestrator_RateLimitRoutesToFallback(t *testing.T) {
	cfg := fastConfig()
	cfg.RateQuota = 1
	upstream := oceanUpstream()
	o := NewOrchestrator(upstream, cfg)
	ctx := context.Background()

	first, err := o.Generate(ctx, "ocean waves", "en")
	require.NoError(t, err)
	require.Equal(t, SourceRemote, first.Source)

	// Quota spent; a different prompt cannot go upstream.
	second, err := o.Generate(ctx, "forest fire", "en")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, second.Source)
	assert.Equal(t, FallbackConfidence, second.Confidence)
	assert.NotEmpty(t, second.Sequence)
	assert.EqualValues(t, 1, upstream.Calls())
}

func TestOrchestrator_UpstreamFailureFallsBack(t *testing.T) {
	upstream := &fakeUpstream{err: errors.New("upstream down")}
	o := NewOrchestrator(upstream, fastConfig())

	result, err := o.Generate(context.Background(), "ocean waves", "en")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, result.Source)
	assert.Equal(t, FallbackConfidence, result.Confidence)
	assert.NotEmpty(t, result.Sequence)
	// Initial attempt plus one retry.
	assert.EqualValues(t, 2, upstream.Calls())
}

func TestOrchestrator_BreakerOpensAndShortCircuits(t *testing.T) {
	cfg := fastConfig()
	cfg.FailureThreshold = 2
	upstream := &fakeUpstream{err: errors.New("upstream down")}
	o := NewOrchestrator(upstream, cfg)
	ctx := context.Background()

	// Each failed generation records one breaker failure (retries happen
	// inside a single upstream call from the breaker's point of view).
	o.Generate(ctx, "prompt one", "en")
	o.Generate(ctx, "prompt two", "en")
	require.Equal(t, CircuitOpen, o.BreakerState())

	callsWhenOpened := upstream.Calls()
	result, err := o.Generate(ctx, "prompt three", "en")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, result.Source)
	assert.Equal(t, callsWhenOpened, upstream.Calls(), "open breaker must not reach upstream")
}

func TestOrchestrator_FallbackStillHonorsSequenceInvariants(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxSymbols = 3
	upstream := &fakeUpstream{err: errors.New("upstream down")}
	o := NewOrchestrator(upstream, cfg)

	result, err := o.Generate(context.Background(), "ocean fire stars moon flowers", "en")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, result.Source)
	require.NotEmpty(t, result.Sequence)
	assert.LessOrEqual(t, len(result.Sequence), 3)

	// The fallback sequence still lays out cleanly.
	_, err = pattern.NewGenerator().Generate(result.Sequence, pattern.ModeConcentric)
	assert.NoError(t, err)
}

func TestOrchestrator_CallerCancellationPropagates(t *testing.T) {
	block := make(chan struct{})
	upstream := &fakeUpstream{result: &Result{Sequence: []string{"⭐"}, Source: SourceRemote}}
	slow := &slowUpstream{inner: upstream, block: block}
	defer close(block)

	o := NewOrchestrator(slow, fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result, err := o.Generate(ctx, "ocean waves", "en")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

// slowUpstream blocks until released.
type slowUpstream struct {
	inner UpstreamClient
	block chan struct{}
}

func (u *slowUpstream) Generate(ctx context.Context, req Request) (*Result, error) {
	select {
	case <-u.block:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return u.inner.Generate(ctx, req)
}
