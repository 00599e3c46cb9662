// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wheel

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMinTurns      = 3.0
	DefaultMaxTurns      = 5.0
	DefaultDuration      = 3 * time.Second
	DefaultPointerOffset = 45.0
	DefaultFirstTick     = 500 * time.Millisecond
	DefaultTickInterval  = 200 * time.Millisecond
	DefaultTickCount     = 10
)

// Config tunes the spin draw and the feedback cadence.
type Config struct {
	MinTurns      float64       `yaml:"min_turns"`
	MaxTurns      float64       `yaml:"max_turns"`
	Duration      time.Duration `yaml:"duration"`
	PointerOffset float64       `yaml:"pointer_offset"`
	FirstTick     time.Duration `yaml:"first_tick"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	TickCount     int           `yaml:"tick_count"`
}

// DefaultConfig returns 3–5 turns over 3 seconds with a 45° pointer.
func DefaultConfig() Config {
	return Config{
		MinTurns:      DefaultMinTurns,
		MaxTurns:      DefaultMaxTurns,
		Duration:      DefaultDuration,
		PointerOffset: DefaultPointerOffset,
		FirstTick:     DefaultFirstTick,
		TickInterval:  DefaultTickInterval,
		TickCount:     DefaultTickCount,
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	if c.MinTurns <= 0 {
		return errors.New("min_turns must be positive")
	}
	if c.MaxTurns < c.MinTurns {
		return fmt.Errorf("max_turns (%g) must not be below min_turns (%g)", c.MaxTurns, c.MinTurns)
	}
	if c.Duration <= 0 {
		return errors.New("duration must be positive")
	}
	if c.PointerOffset < 0 || c.PointerOffset >= 360 {
		return fmt.Errorf("pointer_offset must be in [0, 360), got %g", c.PointerOffset)
	}
	if c.TickCount < 0 {
		return errors.New("tick_count must not be negative")
	}
	if c.TickCount > 0 {
		if c.FirstTick < 0 || c.TickInterval < 0 {
			return errors.New("tick offsets must not be negative")
		}
		last := c.FirstTick + time.Duration(c.TickCount-1)*c.TickInterval
		if last > c.Duration {
			return fmt.Errorf("last tick at %s falls after the spin duration %s", last, c.Duration)
		}
	}
	return nil
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read wheel config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse wheel config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid wheel config: %w", err)
	}
	return cfg, nil
}
