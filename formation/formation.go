// Package formation maps a formation identifier and a particle's rank
// to a deterministic target position. Every shape is a closed-form
// curve or procedural placement; the same (formation, index, total)
// always yields the same point, so targets can be recomputed whenever
// the active count changes without discontinuity.
package formation

import (
	"math"

	"github.com/Loviti/AdaDesktopCompanion/fixmath"
)

// Type identifies a named target geometry.
type Type uint8

const (
	Idle Type = iota // no targets, free wander
	Cloud
	Sun
	Rain
	Snow
	Heart
	Thinking
	Wave
	Disconnected

	count
)

var names = [...]string{
	Idle:         "idle",
	Cloud:        "cloud",
	Sun:          "sun",
	Rain:         "rain",
	Snow:         "snow",
	Heart:        "heart",
	Thinking:     "thinking",
	Wave:         "wave",
	Disconnected: "disconnected",
}

func (t Type) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return "idle"
}

// Valid reports whether t names a known formation.
func (t Type) Valid() bool { return t < count }

// Parse maps a formation name to its Type.
func Parse(name string) (Type, bool) {
	for i, n := range names {
		if n == name {
			return Type(i), true
		}
	}
	return Idle, false
}

// goldenAngle in radians, for even non-patterned scatter.
const goldenAngle = 2.399

// Point returns the target position for a particle of the given rank.
// Geometry is evaluated in float64 off the hot path and quantized to
// fixed-point on return. Idle returns the screen center; callers treat
// Idle as "no target" and never ask for its points in practice.
func Point(f Type, index, total, width, height int) (fixmath.T, fixmath.T) {
	denom := total - 1
	if denom < 1 {
		denom = 1
	}
	t := float64(index) / float64(denom)

	cx := float64(width) / 2
	cy := float64(height) / 2
	radius := math.Min(float64(width), float64(height)) * 0.35

	x, y := cx, cy

	switch f {
	case Cloud:
		// Modulated ellipse plus per-index jitter for a fluffy silhouette
		angle := t * 2 * math.Pi
		r := radius * (0.4 + 0.6*math.Sin(angle*3+float64(index)*0.1))
		r *= 0.5 + 0.5*math.Cos(angle*2)
		x = cx + math.Cos(angle)*r*1.3
		y = cy + math.Sin(angle)*r*0.6 - radius*0.1
		x += math.Sin(float64(index)*1.3) * 20
		y += math.Cos(float64(index)*1.7) * 15

	case Sun:
		if float64(index) < float64(total)*0.3 {
			// Tight spiral cluster near the center. The radius grows
			// with raw t, so the cluster stays well inside the rays.
			angle := t * 10 * math.Pi
			r := t * radius * 0.4
			x = cx + math.Cos(angle)*r
			y = cy + math.Sin(angle)*r
		} else {
			// Remaining particles across 8 discrete rays
			rayT := (t - 0.3) / 0.7
			const numRays = 8
			rayIndex := int(rayT*numRays) % numRays
			rayAngle := float64(rayIndex) * (2 * math.Pi / numRays)
			rayProgress := math.Mod(rayT*numRays, 1)
			r := radius * (0.5 + rayProgress*0.5)
			x = cx + math.Cos(rayAngle)*r
			y = cy + math.Sin(rayAngle)*r
		}

	case Rain:
		const numColumns = 12
		col := index % numColumns
		colX := (float64(col) + 0.5) / numColumns * float64(width)
		rows := total / numColumns
		if rows < 1 {
			rows = 1
		}
		rowT := float64(index/numColumns) / float64(rows)
		x = colX + math.Sin(float64(index)*0.5)*10
		y = rowT * float64(height)

	case Snow:
		// Golden-angle spiral, radius proportional to sqrt(t)
		angle := float64(index) * goldenAngle
		r := math.Sqrt(t) * radius * 1.2
		x = cx + math.Cos(angle)*r
		y = cy + math.Sin(angle)*r

	case Heart:
		ht := t * 2 * math.Pi
		hx := 16 * math.Pow(math.Sin(ht), 3)
		hy := 13*math.Cos(ht) - 5*math.Cos(2*ht) - 2*math.Cos(3*ht) - math.Cos(4*ht)
		x = cx + hx*(radius/18)
		y = cy - hy*(radius/18) // flip for screen coordinates

	case Thinking:
		// Vortex: angle winds t*8pi while radius grows with t
		spiralAngle := t * 8 * math.Pi
		r := t * radius * 0.9
		x = cx + math.Cos(spiralAngle)*r
		y = cy + math.Sin(spiralAngle)*r

	case Wave:
		x = t * float64(width)
		y = cy + math.Sin(t*4*math.Pi)*radius*0.5

	case Disconnected:
		// Circle sagging by |cos| for the droopy silhouette
		angle := t * 2 * math.Pi
		r := radius * 0.6
		x = cx + math.Cos(angle)*r
		y = cy + math.Sin(angle)*r + math.Abs(math.Cos(angle))*radius*0.3
	}

	return fixmath.FromFloat(x), fixmath.FromFloat(y)
}
