// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wheel

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// SpinPlan is everything a renderer needs to animate one spin.
// Rotation is interpolated from StartRotation to FinalRotation over Duration
// with an ease-out curve.
type SpinPlan struct {
	StartRotation float64       `json:"start_rotation"`
	FinalRotation float64       `json:"final_rotation"`
	FullTurns     float64       `json:"full_turns"`
	OffsetDegrees float64       `json:"offset_degrees"`
	PointerOffset float64       `json:"pointer_offset"`
	Duration      time.Duration `json:"-"`
	Signals       []Signal      `json:"-"`
}

// RotationAt returns the animated rotation after elapsed time.
func (p SpinPlan) RotationAt(elapsed time.Duration) float64 {
	if p.Duration <= 0 || elapsed >= p.Duration {
		return p.FinalRotation
	}
	if elapsed <= 0 {
		return p.StartRotation
	}
	t := float64(elapsed) / float64(p.Duration)
	return p.StartRotation + (p.FinalRotation-p.StartRotation)*EaseOut(t)
}

// Resolve maps the plan's final rotation to an index in [0, n) using the
// pointer offset in force when the plan was drawn.
func (p SpinPlan) Resolve(n int) int {
	return resolve(n, p.FinalRotation, p.PointerOffset)
}

// CanSpin reports whether a spin may start: at least two candidates and no
// spin in flight.
func CanSpin(n int, isSpinning bool) bool {
	return n >= 2 && !isSpinning
}

// Selector draws spin targets and maps resting angles back to candidates.
type Selector struct {
	cfg    Config
	rng    RandomSource
	strict bool
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithStrict makes precondition violations panic instead of being ignored.
func WithStrict(strict bool) SelectorOption {
	return func(s *Selector) { s.strict = strict }
}

// NewSelector panics if cfg is invalid; configs from LoadConfig are already
// validated.
func NewSelector(cfg Config, rng RandomSource, opts ...SelectorOption) *Selector {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("wheel: %v", err))
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	s := &Selector{cfg: cfg, rng: rng}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the selector's configuration.
func (s *Selector) Config() Config { return s.cfg }

// Spin draws a new target rotation on top of state.CurrentRotation.
// It returns false without touching the random source when CanSpin fails.
func (s *Selector) Spin(candidates []Candidate, state SpinState) (SpinPlan, bool) {
	if !CanSpin(len(candidates), state.IsSpinning) {
		s.violation("spin requested", "candidates", len(candidates), "is_spinning", state.IsSpinning)
		return SpinPlan{}, false
	}

	fullTurns := s.cfg.MinTurns + (s.cfg.MaxTurns-s.cfg.MinTurns)*s.rng.Float64()
	offset := 360 * s.rng.Float64()

	return SpinPlan{
		StartRotation: state.CurrentRotation,
		FinalRotation: state.CurrentRotation + fullTurns*360 + offset,
		FullTurns:     fullTurns,
		OffsetDegrees: offset,
		PointerOffset: s.cfg.PointerOffset,
		Duration:      s.cfg.Duration,
		Signals:       Schedule(s.cfg),
	}, true
}

// Resolve maps a resting angle to a candidate index using the configured
// pointer offset.
func (s *Selector) Resolve(n int, finalRotation float64) int {
	return resolve(n, finalRotation, s.cfg.PointerOffset)
}

func (s *Selector) violation(msg string, args ...any) {
	if s.strict {
		panic("wheel: precondition violated: " + msg)
	}
	slog.Debug("wheel: ignoring "+msg, args...)
}

// ResolveSelection maps finalRotation to an index in [0, n) for a wheel whose
// pointer sits 45° clockwise of the top. It panics when n <= 0.
func ResolveSelection(n int, finalRotation float64) int {
	return resolve(n, finalRotation, DefaultPointerOffset)
}

func resolve(n int, finalRotation, pointerOffset float64) int {
	if n <= 0 {
		panic(fmt.Sprintf("wheel: cannot resolve a selection over %d candidates", n))
	}
	segment := 360 / float64(n)

	normalized := normalizeDegrees(finalRotation)
	pointer := normalizeDegrees(360 - normalized + pointerOffset)

	idx := int(math.Floor(pointer/segment)) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

// normalizeDegrees folds any finite angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	// a tiny negative remainder rounds up to exactly 360 after the add
	if r >= 360 {
		r = 0
	}
	return r
}
