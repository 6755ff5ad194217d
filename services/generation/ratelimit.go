// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"sync"
	"time"
)

// Decision is the outcome of a rate-limit admission check.
type Decision struct {
	// Allowed is true when the call may proceed.
	Allowed bool

	// RetryAfter is how long until a slot frees up. Only meaningful when
	// Allowed is false.
	RetryAfter time.Duration
}

// RateLimiter is a sliding-window admission gate in front of the upstream
// generation call.
//
// Per identity it keeps a time-ordered list of acceptance timestamps; each
// TryAcquire discards entries older than the window and admits the call
// only while fewer than quota acceptances remain. This budgets upstream
// spend, which is a different concern from the transport-edge token bucket
// the HTTP server applies per client.
//
// # Thread Safety
//
// RateLimiter is safe for concurrent use.
type RateLimiter struct {
	mu          sync.Mutex
	window      time.Duration
	quota       int
	acceptances map[string][]time.Time

	// now is swappable in tests.
	now func() time.Time
}

// NewRateLimiter creates a limiter with the given window and quota.
//
// Non-positive values apply DefaultRateWindow and DefaultRateQuota.
func NewRateLimiter(window time.Duration, quota int) *RateLimiter {
	if window <= 0 {
		window = DefaultRateWindow
	}
	if quota <= 0 {
		quota = DefaultRateQuota
	}
	return &RateLimiter{
		window:      window,
		quota:       quota,
		acceptances: make(map[string][]time.Time),
		now:         time.Now,
	}
}

// TryAcquire attempts to admit one call for identity.
//
// On denial, Decision.RetryAfter reports when the oldest in-window
// acceptance will age out.
func (rl *RateLimiter) TryAcquire(identity string) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	kept := rl.acceptances[identity][:0]
	for _, ts := range rl.acceptances[identity] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= rl.quota {
		rl.acceptances[identity] = kept
		return Decision{
			Allowed:    false,
			RetryAfter: kept[0].Sub(cutoff),
		}
	}

	rl.acceptances[identity] = append(kept, now)
	return Decision{Allowed: true}
}

// Reset forgets all acceptances for identity.
func (rl *RateLimiter) Reset(identity string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.acceptances, identity)
}
