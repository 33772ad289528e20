// Package fixmath implements 16.16 fixed-point arithmetic.
//
// Integer part in the high 16 bits, fractional part in the low 16.
// Range ±32767.99998, resolution 1/65536. All operations are total:
// degenerate input saturates or clamps, never panics.
package fixmath

import "math"

// T is a 16.16 fixed-point value.
type T = int32

const (
	Shift = 16
	One   = T(1) << Shift
	Half  = T(1) << (Shift - 1)

	MaxT = T(math.MaxInt32)
	MinT = T(math.MinInt32)

	// Pi and friends, angle values for general math. Note that Sin/Cos
	// use the turn convention (One = full circle), not radians.
	Pi     = T(205887)
	TwoPi  = T(411775)
	HalfPi = T(102944)

	Tenth   = T(6554)
	Quarter = T(16384)
	Third   = T(21845)
)

// FromInt converts an integer to fixed-point.
func FromInt(i int) T { return T(i) << Shift }

// ToInt truncates a fixed-point value to an integer.
func ToInt(f T) int { return int(f >> Shift) }

// ToIntRound rounds a fixed-point value to the nearest integer.
func ToIntRound(f T) int { return int((f + Half) >> Shift) }

// FromFloat converts a float to fixed-point. Startup/config paths only,
// not for the per-frame hot loop.
func FromFloat(f float64) T {
	v := f * float64(One)
	if v >= float64(MaxT) {
		return MaxT
	}
	if v <= float64(MinT) {
		return MinT
	}
	return T(v)
}

// ToFloat converts fixed-point to a float.
func ToFloat(f T) float64 { return float64(f) / float64(One) }

// Mul multiplies two fixed-point values with a 64-bit intermediate.
func Mul(a, b T) T {
	return T((int64(a) * int64(b)) >> Shift)
}

// Div divides a by b with a 64-bit intermediate. Division by zero
// returns the representable extremum matching the sign of a; quotients
// outside the 32-bit range saturate.
func Div(a, b T) T {
	if b == 0 {
		if a >= 0 {
			return MaxT
		}
		return MinT
	}
	q := (int64(a) << Shift) / int64(b)
	if q > int64(MaxT) {
		return MaxT
	}
	if q < int64(MinT) {
		return MinT
	}
	return T(q)
}

// Abs returns the absolute value.
func Abs(x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Sqrt returns the square root using digit-by-digit binary search on a
// 64-bit widened value. Non-positive input returns 0.
func Sqrt(x T) T {
	if x <= 0 {
		return 0
	}

	// sqrt(X * 2^16) * 2^8 loses the fixed scale, so widen first:
	// sqrt(x << 16) yields sqrt(X) in 16.16.
	val := uint64(x) << Shift
	var result uint64
	bit := uint64(1) << 62

	for bit > val {
		bit >>= 2
	}
	for bit != 0 {
		if val >= result+bit {
			val -= result + bit
			result = (result >> 1) + bit
		} else {
			result >>= 1
		}
		bit >>= 2
	}

	return T(result)
}

// Lerp interpolates from a to b; t in [0, One].
func Lerp(a, b, t T) T {
	return a + Mul(b-a, t)
}

// SmoothStep is the cubic Hermite 3t²-2t³, clamped to [0, One].
func SmoothStep(t T) T {
	if t <= 0 {
		return 0
	}
	if t >= One {
		return One
	}
	t2 := Mul(t, t)
	t3 := Mul(t2, t)
	return Mul(FromInt(3), t2) - Mul(FromInt(2), t3)
}

// DistSq returns the squared distance between two points as a 48.16
// value. Kept in 64 bits: screen-scale distances overflow 32 bits once
// squared.
func DistSq(x1, y1, x2, y2 T) int64 {
	dx := int64(x2 - x1)
	dy := int64(y2 - y1)
	return (dx*dx + dy*dy) >> Shift
}
