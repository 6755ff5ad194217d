// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"github.com/glyphloom/glyphloom/services/generation"
	"github.com/glyphloom/glyphloom/services/pattern"
)

// ServiceVersion is the glyphloom service version.
const ServiceVersion = "0.1.0"

// GenerateRequest is the body of POST /api/v1/generate.
type GenerateRequest struct {
	// Prompt is the free-text description to map to symbols.
	Prompt string `json:"prompt" binding:"required,max=500"`

	// Language is the BCP-47-ish language code ("en", "fr"). Optional.
	Language string `json:"language" binding:"omitempty,max=8"`
}

// GenerateResponse wraps an orchestrator result.
type GenerateResponse struct {
	Result    *generation.Result `json:"result"`
	RequestID string             `json:"request_id"`
}

// PatternRequest is the body of POST /api/v1/pattern.
type PatternRequest struct {
	// Sequence is the ordered symbol list to lay out.
	Sequence []string `json:"sequence" binding:"required,min=1"`

	// Mode is the layout mode: "concentric" (default) or "linear".
	Mode string `json:"mode" binding:"omitempty,oneof=concentric linear"`
}

// PatternResponse carries the generated grid.
type PatternResponse struct {
	Grid      *pattern.Grid `json:"grid"`
	Mode      pattern.Mode  `json:"mode"`
	RequestID string        `json:"request_id"`
}

// CommandRequest is the body of POST /api/v1/command: a parsed user
// intent from the capture layer.
type CommandRequest struct {
	Intent     string            `json:"intent" binding:"required"`
	Parameters map[string]string `json:"parameters"`
	Confidence float64           `json:"confidence" binding:"min=0,max=1"`
}

// CommandResponse carries the session state after a command.
type CommandResponse struct {
	Outcome   *generation.CommandOutcome `json:"outcome"`
	RequestID string                     `json:"request_id"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`

	// Breaker is the upstream circuit state, useful for dashboards.
	Breaker string `json:"breaker"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`
}
