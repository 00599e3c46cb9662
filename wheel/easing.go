// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wheel

// Control points of the standard ease-out cubic Bézier: (0,0) (0.58,1) (1,1).
const (
	easeOutX1 = 0.0
	easeOutY1 = 0.0
	easeOutX2 = 0.58
	easeOutY2 = 1.0
)

// EaseOut maps linear progress t in [0, 1] onto the ease-out curve: fast at
// the start, decelerating to a stop.
func EaseOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	// x(u) is monotonic on [0,1], so bisection always converges.
	lo, hi := 0.0, 1.0
	u := t
	for range 40 {
		u = (lo + hi) / 2
		if bezier(u, easeOutX1, easeOutX2) < t {
			lo = u
		} else {
			hi = u
		}
	}
	return bezier(u, easeOutY1, easeOutY2)
}

func bezier(u, p1, p2 float64) float64 {
	v := 1 - u
	return 3*v*v*u*p1 + 3*v*u*u*p2 + u*u*u
}
