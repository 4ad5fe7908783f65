package vecmath

import "math"

const (
	TwoPi = 2 * math.Pi

	// DefaultEpsilon is the tolerance used by approximate comparisons.
	DefaultEpsilon = 1e-6
)

// Clamp limits v to [lo, hi]. NaN is passed through.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// ClampSym limits v to [-limit, limit].
func ClampSym(v, limit float64) float64 {
	return Clamp(v, -limit, limit)
}

// WrapAngle maps an angle into [0, 2π).
func WrapAngle(a float64) float64 {
	w := math.Mod(a, TwoPi)
	if w < 0 {
		w += TwoPi
	}
	// Mod of a tiny negative value can round up to exactly 2π.
	if w >= TwoPi {
		w = 0
	}
	return w
}

func ApproxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func IsFinite(f float64) bool {
	return isFinite(f)
}
