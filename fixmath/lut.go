package fixmath

import "math"

// Quarter-wave sine table. 256 entries cover 0..90 degrees; the other
// three quadrants are reconstructed by mirror/negate symmetry, which
// keeps the table small without sacrificing full-circle correctness.
const (
	trigTableSize  = 256
	trigTableShift = 8
)

var sinTable [trigTableSize + 1]T

func init() {
	for i := 0; i <= trigTableSize; i++ {
		rad := float64(i) * (math.Pi / 2) / trigTableSize
		sinTable[i] = T(math.Round(math.Sin(rad) * float64(One)))
	}
}

// Sin returns the sine of an angle where One = full circle.
// Output is in [-One, One].
func Sin(angle T) T {
	a := uint16(angle & 0xFFFF)

	quadrant := a >> 14
	idx := (a & 0x3FFF) >> 6

	switch quadrant {
	case 0:
		return sinTable[idx]
	case 1:
		return sinTable[trigTableSize-idx]
	case 2:
		return -sinTable[idx]
	default:
		return -sinTable[trigTableSize-idx]
	}
}

// Cos returns the cosine: sin shifted by a quarter turn.
func Cos(angle T) T {
	return Sin(angle + 0x4000)
}
