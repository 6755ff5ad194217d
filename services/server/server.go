// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package server is glyphloom's HTTP boundary: a gin engine exposing the
// generation orchestrator, the pattern generator and the command
// dispatcher, plus health and Prometheus metrics endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glyphloom/glyphloom/services/generation"
	"github.com/glyphloom/glyphloom/services/pattern"
)

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address, e.g. ":8492".
	Addr string `yaml:"addr"`

	// ClientRPS and ClientBurst configure the per-IP token bucket.
	ClientRPS   float64 `yaml:"client_rps"`
	ClientBurst int     `yaml:"client_burst"`
}

// Defaults for the HTTP edge.
const (
	DefaultAddr        = ":8492"
	DefaultClientRPS   = 5.0
	DefaultClientBurst = 10

	shutdownGrace = 10 * time.Second
)

// Server is the glyphloom HTTP server.
type Server struct {
	cfg      Config
	engine   *gin.Engine
	handlers *Handlers
}

// New assembles the engine, middleware and routes.
func New(cfg Config, orchestrator GenerationService, dispatcher *generation.Dispatcher) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ClientRPS <= 0 {
		cfg.ClientRPS = DefaultClientRPS
	}
	if cfg.ClientBurst <= 0 {
		cfg.ClientBurst = DefaultClientBurst
	}

	handlers := NewHandlers(orchestrator, pattern.NewGenerator(), dispatcher)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	s := &Server{cfg: cfg, engine: engine, handlers: handlers}
	s.registerRoutes(newClientLimiter(cfg.ClientRPS, cfg.ClientBurst))
	return s
}

// registerRoutes wires every endpoint.
//
// Endpoints:
//
//	POST /api/v1/generate - Prompt to symbol sequence
//	POST /api/v1/pattern - Symbol sequence to grid layout
//	POST /api/v1/command - Parsed intent dispatch
//	GET  /healthz - Health check with circuit state
//	GET  /metrics - Prometheus metrics
func (s *Server) registerRoutes(limiter *clientLimiter) {
	v1 := s.engine.Group("/api/v1")
	v1.Use(limiter.middleware())
	{
		v1.POST("/generate", s.handlers.HandleGenerate)
		v1.POST("/pattern", s.handlers.HandlePattern)
		v1.POST("/command", s.handlers.HandleCommand)
	}

	// Health and metrics bypass the client limiter so probes never 429.
	s.engine.GET("/healthz", s.handlers.HandleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("glyphloom server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
