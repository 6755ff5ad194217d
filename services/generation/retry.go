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
	"log/slog"
	"time"
)

// retryPolicy bounds the upstream call: per-attempt timeout plus a fixed
// number of exponentially backed-off retries.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
}

// retryState is the explicit state of the retry machine: which attempt we
// are on and how long to wait before the next one.
type retryState struct {
	attempt   int
	nextDelay time.Duration
}

// run drives op through the retry loop.
//
// Each attempt gets its own deadline. Failed attempts back off and retry
// until the budget is exhausted; the caller's context cancels the whole
// loop. The last attempt's error is returned unretouched so the caller
// can classify it.
func (p retryPolicy) run(ctx context.Context, op func(ctx context.Context) (*Result, error)) (*Result, error) {
	state := retryState{attempt: 0, nextDelay: p.baseDelay}

	for {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		res, err := op(attemptCtx)
		cancel()

		if err == nil {
			return res, nil
		}

		// The caller gave up; stop retrying on their behalf.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if errors.Is(err, context.DeadlineExceeded) {
			err = &UpstreamError{Op: "generate", Timeout: true, Err: err}
		}

		if state.attempt >= p.maxRetries {
			return nil, err
		}

		slog.Warn("retrying upstream generation",
			"attempt", state.attempt+1,
			"max_retries", p.maxRetries,
			"delay", state.nextDelay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(state.nextDelay):
		}

		state.attempt++
		state.nextDelay *= 2
	}
}
