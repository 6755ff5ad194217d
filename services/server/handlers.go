// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glyphloom/glyphloom/services/generation"
	"github.com/glyphloom/glyphloom/services/pattern"
)

// GenerationService is the slice of the orchestrator the handlers need.
type GenerationService interface {
	Generate(ctx context.Context, prompt, language string) (*generation.Result, error)
	BreakerState() generation.CircuitState
}

// Handlers contains the HTTP handlers for glyphloom.
type Handlers struct {
	orchestrator GenerationService
	patterns     *pattern.Generator
	dispatcher   *generation.Dispatcher
}

// NewHandlers creates handlers over the given services.
//
// dispatcher may be nil; the command endpoint then rejects all requests.
func NewHandlers(orchestrator GenerationService, patterns *pattern.Generator, dispatcher *generation.Dispatcher) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		patterns:     patterns,
		dispatcher:   dispatcher,
	}
}

// HandleGenerate handles POST /api/v1/generate.
//
// Description:
//
//	Maps a free-text prompt to a symbol sequence via the generation
//	orchestrator. The call always yields some sequence; Result.Source
//	tells the client whether it was remote, cached or offline-derived.
//
// Response:
//
//	200 OK: GenerateResponse
//	400 Bad Request: Validation error
//	500 Internal Server Error: Processing error
func (h *Handlers) HandleGenerate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGenerate")

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.orchestrator.Generate(c.Request.Context(), req.Prompt, req.Language)
	if err != nil {
		if generation.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Code:  "VALIDATION_FAILED",
			})
			return
		}
		logger.Error("Generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Generation failed",
			Code:  "GENERATION_FAILED",
		})
		return
	}

	logger.Info("Generated sequence",
		"source", result.Source,
		"symbols", len(result.Sequence),
	)
	c.JSON(http.StatusOK, GenerateResponse{Result: result, RequestID: requestID})
}

// HandlePattern handles POST /api/v1/pattern.
//
// Description:
//
//	Lays a symbol sequence out as a grid. Mode defaults to concentric.
//
// Response:
//
//	200 OK: PatternResponse
//	400 Bad Request: Validation error
func (h *Handlers) HandlePattern(c *gin.Context) {
	requestID := getOrCreateRequestID(c)

	var req PatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	mode := pattern.ModeConcentric
	if req.Mode != "" {
		var err error
		if mode, err = pattern.ParseMode(req.Mode); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Code:  "INVALID_MODE",
			})
			return
		}
	}

	grid, err := h.patterns.Generate(req.Sequence, mode)
	if err != nil {
		var verr *pattern.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Code:  "INVALID_SEQUENCE",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Pattern generation failed",
			Code:  "PATTERN_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, PatternResponse{Grid: grid, Mode: mode, RequestID: requestID})
}

// HandleCommand handles POST /api/v1/command.
//
// Description:
//
//	Dispatches a parsed user intent (add_symbol, generate, save, clear,
//	undo) against the server's session.
//
// Response:
//
//	200 OK: CommandResponse
//	400 Bad Request: Validation error or low-confidence command
//	503 Service Unavailable: No dispatcher configured
func (h *Handlers) HandleCommand(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCommand")

	if h.dispatcher == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Command dispatch is not configured",
			Code:  "NO_DISPATCHER",
		})
		return
	}

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	outcome, err := h.dispatcher.Dispatch(c.Request.Context(), generation.Command{
		Intent:     generation.Intent(req.Intent),
		Parameters: req.Parameters,
		Confidence: req.Confidence,
	})
	if err != nil {
		if generation.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Code:  "COMMAND_REJECTED",
			})
			return
		}
		logger.Error("Command failed", "intent", req.Intent, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Command failed",
			Code:  "COMMAND_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, CommandResponse{Outcome: outcome, RequestID: requestID})
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: ServiceVersion,
		Breaker: h.orchestrator.BreakerState().String(),
	})
}

// getOrCreateRequestID returns the X-Request-ID header, minting one when
// the client did not send any.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
