// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wheel

import "time"

// SignalKind is the payload-free feedback emitted while a wheel spins.
type SignalKind string

const (
	SignalTick SignalKind = "tick"
	SignalDone SignalKind = "done"
)

// Signal is one feedback event, Offset after spin start.
type Signal struct {
	Offset time.Duration `json:"-"`
	Kind   SignalKind    `json:"kind"`
}

// Schedule returns the feedback cadence for one spin, ordered by offset:
// a tick at start, TickCount ticks from FirstTick every TickInterval, and a
// single done at Duration.
func Schedule(cfg Config) []Signal {
	signals := make([]Signal, 0, cfg.TickCount+2)
	signals = append(signals, Signal{Offset: 0, Kind: SignalTick})
	for i := 0; i < cfg.TickCount; i++ {
		signals = append(signals, Signal{
			Offset: cfg.FirstTick + time.Duration(i)*cfg.TickInterval,
			Kind:   SignalTick,
		})
	}
	return append(signals, Signal{Offset: cfg.Duration, Kind: SignalDone})
}
