// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package generation wraps the external text-generation service in a
// resilience pipeline: response cache, sliding-window rate limiter,
// circuit breaker, request batcher, bounded retry and a deterministic
// offline fallback.
//
// # Error Policy
//
// Only *ValidationError crosses the Orchestrator boundary as an error
// (besides the caller's own context cancellation). Rate limiting, open
// circuits, upstream timeouts and upstream failures are absorbed
// internally and surface as a fallback-sourced result with reduced
// confidence, so callers never need failure-specific branching beyond
// checking Result.Source.
package generation

import (
	"errors"
	"fmt"
)

// Sentinel errors for the resilience pipeline.
var (
	// ErrRateLimited marks the sliding-window quota being exhausted.
	// RateLimiter.TryAcquire reports denial through its Decision; this
	// sentinel names the condition in logs and for errors.Is checks. The
	// orchestrator treats it as a trigger to use the fallback generator,
	// never as a caller-visible failure.
	ErrRateLimited = errors.New("generation rate limit exceeded")

	// ErrCircuitOpen is returned while the circuit breaker is open.
	// Calls are rejected without any network attempt.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ValidationError reports invalid caller input (empty or oversized
// prompt, bad language code).
//
// ValidationError is terminal: it is surfaced to the caller immediately,
// never retried and never answered with a fallback result.
type ValidationError struct {
	// Field names the invalid input.
	Field string

	// Reason describes the violation.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError wraps a failure from the external generation service.
type UpstreamError struct {
	// Op is the operation that failed.
	Op string

	// StatusCode is the HTTP status when the upstream answered at all.
	StatusCode int

	// Timeout is true when the attempt deadline elapsed.
	Timeout bool

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("upstream %s timed out: %v", e.Op, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
