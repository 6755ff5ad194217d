// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so the YAML file round-trips humane
// strings ("100ms", "1h") while still accepting plain nanosecond
// integers.
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*d = Duration(v)
	case int64:
		*d = Duration(v)
	case float64:
		*d = Duration(int64(v))
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// Config is the full glyphloom configuration tree.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Generation GenerationConfig `yaml:"generation"`
	Render     RenderConfig     `yaml:"render"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP edge.
type ServerConfig struct {
	Addr        string  `yaml:"addr" validate:"required"`
	ClientRPS   float64 `yaml:"client_rps" validate:"gt=0"`
	ClientBurst int     `yaml:"client_burst" validate:"gt=0"`
}

// GenerationConfig configures the resilience pipeline around the
// upstream generation call.
type GenerationConfig struct {
	RateWindow         Duration `yaml:"rate_window" validate:"gt=0"`
	RateQuota          int      `yaml:"rate_quota" validate:"gt=0"`
	FailureThreshold   int      `yaml:"failure_threshold" validate:"gt=0"`
	OpenTimeout        Duration `yaml:"open_timeout" validate:"gt=0"`
	ResponseTTL        Duration `yaml:"response_ttl" validate:"gt=0"`
	ResponseCapacity   int      `yaml:"response_capacity" validate:"gt=0"`
	BatchWindow        Duration `yaml:"batch_window" validate:"gt=0"`
	BatchMaxSignatures int      `yaml:"batch_max_signatures" validate:"gt=0"`
	RequestTimeout     Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxRetries         int      `yaml:"max_retries" validate:"gte=0"`
	RetryBaseDelay     Duration `yaml:"retry_base_delay" validate:"gt=0"`
	MaxSymbols         int      `yaml:"max_symbols" validate:"gt=0,lte=50"`
}

// RenderConfig configures the bitmap cache and paint loop.
type RenderConfig struct {
	BitmapCapacity int      `yaml:"bitmap_capacity" validate:"gt=0"`
	PaintInterval  Duration `yaml:"paint_interval" validate:"gt=0"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`

	// Dir enables file logging when non-empty. Supports ~ expansion.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":8492",
			ClientRPS:   5,
			ClientBurst: 10,
		},
		Generation: GenerationConfig{
			RateWindow:         Duration(time.Minute),
			RateQuota:          10,
			FailureThreshold:   5,
			OpenTimeout:        Duration(time.Minute),
			ResponseTTL:        Duration(time.Hour),
			ResponseCapacity:   1000,
			BatchWindow:        Duration(100 * time.Millisecond),
			BatchMaxSignatures: 5,
			RequestTimeout:     Duration(10 * time.Second),
			MaxRetries:         2,
			RetryBaseDelay:     Duration(200 * time.Millisecond),
			MaxSymbols:         10,
		},
		Render: RenderConfig{
			BitmapCapacity: 200,
			PaintInterval:  Duration(16 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// Validate checks the whole tree with struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
