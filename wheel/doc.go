// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package wheel implements the spinning-wheel selection used to pick one
restaurant out of a candidate list.

# Geometry

Candidates are laid out clockwise in input order, each owning a segment of
360/n degrees. The pointer is mounted at the upper-right of the wheel, which
is folded in as a fixed 45° offset when the resting angle is mapped back to a
segment:

	normalized := finalRotation mod 360
	pointer    := (360 - normalized + 45) mod 360
	index      := floor(pointer / (360/n)) mod n

ResolveSelection is a pure function: the same (n, finalRotation) pair always
yields the same index. All randomness is consumed by Selector.Spin.

# Spinning

A spin draws 3–5 full turns plus a 0–360° offset and adds them to the
accumulated rotation:

	sel := wheel.NewSelector(wheel.DefaultConfig(), wheel.DefaultRNG())
	plan, ok := sel.Spin(candidates, state)

The plan carries the target rotation, the animation duration and the ordered
feedback signals (ticks and one final done) to replay while the wheel
decelerates. Callers must gate on CanSpin; calling Spin with fewer than two
candidates or while a spin is in flight is a programming error that panics in
strict mode and is ignored otherwise.

# Driver

Wheel owns one SpinState and replays a plan through a Clock:

	w := wheel.New(sel,
		wheel.WithFeedback(sink),
		wheel.WithConsumer(consumer),
	)
	w.Trigger(candidates)

Tests inject a VirtualClock and advance it by hand, so the full cadence can be
checked without real time passing.
*/
package wheel
