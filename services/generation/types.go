// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"strings"
	"time"
)

// Default configuration values for the resilience pipeline.
const (
	// MaxPromptLength bounds accepted prompt length in runes.
	MaxPromptLength = 500

	// DefaultLanguage is assumed when the caller omits a language code.
	DefaultLanguage = "en"

	// DefaultRateWindow is the sliding-window length for rate limiting.
	DefaultRateWindow = 60 * time.Second

	// DefaultRateQuota is how many upstream calls the window admits.
	DefaultRateQuota = 10

	// DefaultFailureThreshold is consecutive failures before the breaker opens.
	DefaultFailureThreshold = 5

	// DefaultOpenTimeout is how long the breaker stays open before a trial.
	DefaultOpenTimeout = 60 * time.Second

	// DefaultResponseTTL is how long cached generation results stay valid.
	DefaultResponseTTL = time.Hour

	// DefaultResponseCapacity bounds the response cache entry count.
	DefaultResponseCapacity = 1000

	// DefaultBatchWindow is how long a batch collects callers before flushing.
	DefaultBatchWindow = 100 * time.Millisecond

	// DefaultBatchMaxSignatures flushes a batch early once this many
	// distinct signatures are queued.
	DefaultBatchMaxSignatures = 5

	// DefaultRequestTimeout bounds each upstream attempt.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultMaxRetries is how many times a failed upstream call is retried.
	DefaultMaxRetries = 2

	// DefaultRetryBaseDelay seeds the exponential backoff schedule.
	DefaultRetryBaseDelay = 200 * time.Millisecond

	// FallbackConfidence is reported on offline-derived results to signal
	// degraded quality to the caller.
	FallbackConfidence = 0.6
)

// Source identifies where a generation result came from.
type Source string

const (
	// SourceRemote means the upstream service produced the result.
	SourceRemote Source = "remote"

	// SourceCache means a previous remote result was reused.
	SourceCache Source = "cache"

	// SourceFallback means the deterministic offline mapper produced it.
	SourceFallback Source = "fallback"
)

// Request is one generation request shaped for the upstream service.
type Request struct {
	// Prompt is the user's free-text description, at most MaxPromptLength runes.
	Prompt string `json:"prompt_text"`

	// Language is an ISO 639-1 code such as "en" or "fr".
	Language string `json:"language_code"`

	// MaxSymbols bounds the returned sequence length.
	MaxSymbols int `json:"max_symbols"`
}

// Result is a completed generation.
type Result struct {
	// Sequence is the ordered pictograph list, every entry a valid symbol.
	Sequence []string `json:"sequence"`

	// Rationale explains the symbol choice in the request's language.
	Rationale string `json:"rationale"`

	// Confidence is the generator's self-reported quality in [0,1].
	Confidence float64 `json:"confidence"`

	// Name is a short human-readable title for the pattern.
	Name string `json:"name"`

	// Source reports which pipeline stage produced the result.
	Source Source `json:"source"`
}

// signature is the normalized identity of a generation request.
//
// Requests are grouped by exact normalized prompt text (trim + lowercase)
// and language; no fuzzy or semantic matching is applied.
type signature struct {
	prompt   string
	language string
}

// normalize derives the request signature used by the response cache and
// the request batcher.
func normalize(prompt, language string) signature {
	if language == "" {
		language = DefaultLanguage
	}
	return signature{
		prompt:   strings.ToLower(strings.TrimSpace(prompt)),
		language: strings.ToLower(strings.TrimSpace(language)),
	}
}

// key renders the signature as a single string for map and flight keys.
func (s signature) key() string {
	return s.language + "\x00" + s.prompt
}
