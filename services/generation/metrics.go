// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for generation operations.
var meter = otel.Meter("glyphloom.generation")

var (
	generationsTotal metric.Int64Counter
	rateDenials      metric.Int64Counter
	breakerRejects   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		generationsTotal, err = meter.Int64Counter(
			"generations_total",
			metric.WithDescription("Completed generations, labeled by result source"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rateDenials, err = meter.Int64Counter(
			"rate_limit_denials_total",
			metric.WithDescription("Generation requests denied by the rate limiter"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		breakerRejects, err = meter.Int64Counter(
			"circuit_breaker_rejects_total",
			metric.WithDescription("Generation requests rejected by an open circuit breaker"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordGeneration counts a completed generation by source.
func recordGeneration(source Source) {
	if initMetrics() != nil || generationsTotal == nil {
		return
	}
	generationsTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("source", string(source))))
}

// recordDenial adds one to a counter if metrics initialized cleanly.
func recordDenial(c metric.Int64Counter) {
	if initMetrics() != nil || c == nil {
		return
	}
	c.Add(context.Background(), 1)
}
