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
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glyphloom/glyphloom/pkg/validation"
)

// Config carries every knob of the resilience pipeline.
//
// Zero values apply the package defaults, so Config{} is a working
// production configuration.
type Config struct {
	// RateWindow and RateQuota configure the sliding-window limiter.
	RateWindow time.Duration `yaml:"rate_window"`
	RateQuota  int           `yaml:"rate_quota"`

	// FailureThreshold and OpenTimeout configure the circuit breaker.
	FailureThreshold int           `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`

	// ResponseTTL and ResponseCapacity configure the response cache.
	ResponseTTL      time.Duration `yaml:"response_ttl"`
	ResponseCapacity int           `yaml:"response_capacity"`

	// BatchWindow and BatchMaxSignatures configure the request batcher.
	BatchWindow        time.Duration `yaml:"batch_window"`
	BatchMaxSignatures int           `yaml:"batch_max_signatures"`

	// RequestTimeout, MaxRetries and RetryBaseDelay bound the upstream call.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`

	// MaxSymbols bounds generated sequence length.
	MaxSymbols int `yaml:"max_symbols"`

	// Identity names the rate-limit bucket this orchestrator spends from.
	Identity string `yaml:"identity"`
}

// Orchestrator composes the resilience pipeline around the upstream call.
//
// Pipeline order, short-circuiting on first success:
//
//	validate → response cache → rate limiter → circuit breaker →
//	batched upstream call with retry → fallback
//
// The orchestrator is the only component with network I/O. It decides
// which symbols a prompt maps to; laying them out is the caller's job via
// the pattern package, which keeps "what symbols" and "how arranged"
// separate.
//
// Construct one per upstream with NewOrchestrator and inject it where
// needed; there is no global instance.
type Orchestrator struct {
	cfg      Config
	cache    *ResponseCache
	limiter  *RateLimiter
	breaker  *CircuitBreaker
	batcher  *RequestBatcher
	fallback *FallbackGenerator
	upstream UpstreamClient
}

// NewOrchestrator wires the pipeline around upstream.
func NewOrchestrator(upstream UpstreamClient, cfg Config) *Orchestrator {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.MaxSymbols <= 0 {
		cfg.MaxSymbols = validation.DefaultMaxSequenceLength
	}
	if cfg.Identity == "" {
		cfg.Identity = "default"
	}

	o := &Orchestrator{
		cfg:      cfg,
		cache:    NewResponseCache(cfg.ResponseTTL, cfg.ResponseCapacity),
		limiter:  NewRateLimiter(cfg.RateWindow, cfg.RateQuota),
		breaker: NewCircuitBreaker(CircuitBreakerConfig{
			FailureThreshold: cfg.FailureThreshold,
			OpenTimeout:      cfg.OpenTimeout,
		}),
		fallback: NewFallbackGenerator(cfg.MaxSymbols),
		upstream: upstream,
	}
	o.batcher = NewRequestBatcher(o.callUpstream, cfg.BatchWindow, cfg.BatchMaxSignatures)
	return o
}

// Generate produces a symbol sequence for prompt in the given language.
//
// The happy path needs no failure branching: generation always completes
// with some result, and Result.Source tells the caller whether it was
// remote, cached or offline-derived. Only *ValidationError (and the
// caller's own context cancellation) is returned as an error.
func (o *Orchestrator) Generate(ctx context.Context, prompt, language string) (*Result, error) {
	// Step 1: validate. Terminal on failure, no fallback.
	if err := validatePrompt(prompt); err != nil {
		return nil, err
	}
	if language == "" {
		language = DefaultLanguage
	}

	// Step 2: response cache.
	if cached, ok := o.cache.Get(prompt, language); ok {
		cached.Source = SourceCache
		recordGeneration(SourceCache)
		return cached, nil
	}

	// Step 3: rate limiter. Denial routes to fallback, not to the caller.
	if decision := o.limiter.TryAcquire(o.cfg.Identity); !decision.Allowed {
		recordDenial(rateDenials)
		slog.Info("generation rate limited, using fallback",
			"error", ErrRateLimited,
			"identity", o.cfg.Identity,
			"retry_after", decision.RetryAfter,
		)
		return o.useFallback(prompt, language), nil
	}

	// Step 4: circuit breaker gate.
	if err := o.breaker.Allow(); err != nil {
		recordDenial(breakerRejects)
		slog.Info("circuit open, using fallback", "state", o.breaker.State().String())
		return o.useFallback(prompt, language), nil
	}

	// Step 5: batched upstream call with bounded retry.
	result, err := o.batcher.Do(ctx, Request{
		Prompt:     prompt,
		Language:   language,
		MaxSymbols: o.cfg.MaxSymbols,
	})
	if err == nil {
		recordGeneration(SourceRemote)
		return result, nil
	}
	if ctx.Err() != nil {
		// The caller abandoned the request; don't hand them a result they
		// no longer want.
		return nil, ctx.Err()
	}

	// Step 6: deterministic fallback. Always succeeds.
	slog.Warn("upstream generation failed, using fallback", "error", err)
	return o.useFallback(prompt, language), nil
}

// callUpstream is the batcher's flush target: one retry loop around the
// upstream client, reporting the outcome to the circuit breaker exactly
// once per upstream call.
func (o *Orchestrator) callUpstream(ctx context.Context, req Request) (*Result, error) {
	policy := retryPolicy{
		maxRetries: o.cfg.MaxRetries,
		baseDelay:  o.cfg.RetryBaseDelay,
		timeout:    o.cfg.RequestTimeout,
	}

	result, err := policy.run(ctx, func(attemptCtx context.Context) (*Result, error) {
		return o.upstream.Generate(attemptCtx, req)
	})
	if err != nil {
		o.breaker.RecordFailure()
		return nil, err
	}

	o.breaker.RecordSuccess()
	o.cache.Put(req.Prompt, req.Language, result)
	return result, nil
}

// useFallback produces an offline result.
func (o *Orchestrator) useFallback(prompt, language string) *Result {
	recordGeneration(SourceFallback)
	return o.fallback.Generate(prompt, language)
}

// BreakerState exposes the circuit state for health reporting.
func (o *Orchestrator) BreakerState() CircuitState {
	return o.breaker.State()
}

// validatePrompt enforces the prompt contract.
func validatePrompt(prompt string) error {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return &ValidationError{Field: "prompt", Reason: "must not be empty"}
	}
	if n := utf8.RuneCountInString(prompt); n > MaxPromptLength {
		return &ValidationError{
			Field:  "prompt",
			Reason: fmt.Sprintf("%d characters exceeds the maximum of %d", n, MaxPromptLength),
		}
	}
	return nil
}

// IsValidationError reports whether err is a caller-input failure.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
