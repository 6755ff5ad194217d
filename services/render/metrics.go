// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for render operations.
var meter = otel.Meter("glyphloom.render")

// Metrics for the bitmap cache and paint loop.
var (
	bitmapHits      metric.Int64Counter
	bitmapMisses    metric.Int64Counter
	bitmapEvictions metric.Int64Counter
	paintsTotal     metric.Int64Counter
	paintsCoalesced metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		bitmapHits, err = meter.Int64Counter(
			"bitmap_cache_hits_total",
			metric.WithDescription("Total number of bitmap cache hits"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		bitmapMisses, err = meter.Int64Counter(
			"bitmap_cache_misses_total",
			metric.WithDescription("Total number of bitmap cache misses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		bitmapEvictions, err = meter.Int64Counter(
			"bitmap_cache_evictions_total",
			metric.WithDescription("Total number of bitmap cache evictions"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		paintsTotal, err = meter.Int64Counter(
			"paints_total",
			metric.WithDescription("Total number of frames painted"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		paintsCoalesced, err = meter.Int64Counter(
			"paints_coalesced_total",
			metric.WithDescription("Scheduled frames dropped by last-write-wins coalescing"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordCount adds one to a counter if metrics initialized cleanly.
func recordCount(c metric.Int64Counter) {
	if initMetrics() != nil || c == nil {
		return
	}
	c.Add(context.Background(), 1)
}
