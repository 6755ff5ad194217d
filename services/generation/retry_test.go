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
	"testing"
	"time"
)

func TestRetryPolicy_SucceedsAfterTransientFailures(t *testing.T) {
	policy := retryPolicy{maxRetries: 2, baseDelay: time.Millisecond, timeout: time.Second}

	attempts := 0
	res, err := policy.run(context.Background(), func(ctx context.Context) (*Result, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return remoteResult("🌊"), nil
	})
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if res == nil || len(res.Sequence) != 1 {
		t.Fatalf("res = %+v, want one symbol", res)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryPolicy_ExhaustsBudget(t *testing.T) {
	policy := retryPolicy{maxRetries: 2, baseDelay: time.Millisecond, timeout: time.Second}

	wantErr := errors.New("persistent")
	attempts := 0
	_, err := policy.run(context.Background(), func(ctx context.Context) (*Result, error) {
		attempts++
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("run error = %v, want %v", err, wantErr)
	}
	// Initial attempt plus two retries.
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryPolicy_TimeoutClassifiedAsUpstreamError(t *testing.T) {
	policy := retryPolicy{maxRetries: 0, baseDelay: time.Millisecond, timeout: 10 * time.Millisecond}

	_, err := policy.run(context.Background(), func(ctx context.Context) (*Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("run error = %T, want *UpstreamError", err)
	}
	if !uerr.Timeout {
		t.Error("UpstreamError.Timeout = false, want true")
	}
}

func TestRetryPolicy_CallerCancellationStopsRetries(t *testing.T) {
	policy := retryPolicy{maxRetries: 5, baseDelay: 50 * time.Millisecond, timeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	done := make(chan error, 1)
	go func() {
		_, err := policy.run(ctx, func(ctx context.Context) (*Result, error) {
			attempts++
			return nil, errors.New("transient")
		})
		done <- err
	}()

	// Cancel during the first backoff sleep.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
