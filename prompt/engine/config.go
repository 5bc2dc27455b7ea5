/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/promptkit/prompt/clock"
	"chainguard.dev/promptkit/prompt/compiler"
	"github.com/sethvargo/go-envconfig"
)

// Config configures an Engine. It is usually populated from the environment
// with LoadConfig.
type Config struct {
	// FixedTime pins the clock to an RFC 3339 instant. Empty means the system
	// clock.
	FixedTime string `env:"PROMPT_FIXED_TIME"`
	// RequiredSections lists sections every template must declare. An entry
	// may name alternatives separated by "|".
	RequiredSections []string `env:"PROMPT_REQUIRED_SECTIONS"`
	// MaxDepth bounds section nesting (default: 64).
	MaxDepth int `env:"PROMPT_MAX_DEPTH,default=64"`
	// CacheSize bounds the number of compiled templates kept (default: 256).
	// 0 means unbounded.
	CacheSize int `env:"PROMPT_CACHE_SIZE,default=256"`
	// DisableCache compiles every call from scratch.
	DisableCache bool `env:"PROMPT_DISABLE_CACHE,default=false"`
	// MeterName names the OpenTelemetry meter (default: chainguard.prompts).
	MeterName string `env:"PROMPT_METER_NAME,default=chainguard.prompts"`
}

// DefaultConfig returns the configuration LoadConfig produces from an empty
// environment.
func DefaultConfig() Config {
	return Config{
		MaxDepth:  compiler.DefaultMaxDepth,
		CacheSize: 256,
		MeterName: "chainguard.prompts",
	}
}

// LoadConfig reads Config from the process environment.
func LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFrom reads Config from an explicit lookuper, such as
// envconfig.MapLookuper in tests.
func LoadConfigFrom(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return errors.New("max depth must be at least 1")
	}
	if c.CacheSize < 0 {
		return errors.New("cache size cannot be negative")
	}
	if c.MeterName == "" {
		return errors.New("meter name is required")
	}
	if _, err := c.clock(); err != nil {
		return err
	}
	if err := compiler.ValidateOptions(c.compilerOptions()...); err != nil {
		return fmt.Errorf("invalid required sections: %w", err)
	}
	return nil
}

func (c Config) clock() (clock.Clock, error) {
	if c.FixedTime == "" {
		return clock.System(), nil
	}
	return clock.Parse(c.FixedTime)
}

func (c Config) compilerOptions() []compiler.Option {
	opts := []compiler.Option{compiler.WithMaxDepth(c.MaxDepth)}
	if len(c.RequiredSections) > 0 {
		opts = append(opts, compiler.WithRequiredSections(c.RequiredSections...))
	}
	return opts
}
