package easing

import "math"

// CubicBezier returns the timing function of cubic-bezier(x1, y1, x2, y2)
// with endpoints fixed at (0, 0) and (1, 1).
func CubicBezier(x1, y1, x2, y2 float64) Func {
	// Polynomial coefficients: B(s) = ((a*s + b)*s + c)*s
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(s float64) float64 { return ((ax*s+bx)*s + cx) * s }
	sampleY := func(s float64) float64 { return ((ay*s+by)*s + cy) * s }
	slopeX := func(s float64) float64 { return (3*ax*s+2*bx)*s + cx }

	solve := func(x float64) float64 {
		const eps = 1e-7

		// Newton-Raphson converges in a few steps for well-behaved curves.
		s := x
		for range 8 {
			d := sampleX(s) - x
			if math.Abs(d) < eps {
				return s
			}
			slope := slopeX(s)
			if math.Abs(slope) < 1e-6 {
				break
			}
			s -= d / slope
		}

		// Fall back to bisection.
		lo, hi := 0.0, 1.0
		s = x
		for range 64 {
			v := sampleX(s)
			if math.Abs(v-x) < eps {
				break
			}
			if v < x {
				lo = s
			} else {
				hi = s
			}
			s = (lo + hi) / 2
		}
		return s
	}

	return func(t float64) float64 {
		if t <= 0 || t >= 1 {
			return clamp01(t)
		}
		return sampleY(solve(t))
	}
}
