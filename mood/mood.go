// Package mood maps the two-axis emotional state (valence, arousal) to
// a display color. Both axes drift toward their targets every frame so
// mood changes read as slow shifts, never snaps.
package mood

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/Loviti/AdaDesktopCompanion/display"
)

// Palette endpoints: blue for negative valence through cyan at neutral
// to gold for positive.
var (
	paletteBlue = colorful.Color{R: 0, G: 100.0 / 255.0, B: 1}
	paletteCyan = colorful.Color{R: 0, G: 1, B: 204.0 / 255.0}
	paletteGold = colorful.Color{R: 1, G: 220.0 / 255.0, B: 0}
)

// Disconnected override: dim blue-gray, applied at reduced brightness
// whenever the link is down, regardless of mood.
var disconnectedColor = display.RGB{R: 30, G: 40, B: 60}

// lerpRate is the per-second approach rate toward the target mood.
const lerpRate = 2.0

// Mapper holds the mood state machine.
type Mapper struct {
	valence float64
	arousal float64

	targetValence float64
	targetArousal float64

	disconnected bool
}

// NewMapper starts at neutral valence with low arousal.
func NewMapper() *Mapper {
	return &Mapper{
		valence:       0,
		arousal:       0.3,
		targetValence: 0,
		targetArousal: 0.3,
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Set updates the target mood. Out-of-range values clamp: valence to
// [-1, 1], arousal to [0, 1].
func (m *Mapper) Set(valence, arousal float64) {
	m.targetValence = clampF(valence, -1, 1)
	m.targetArousal = clampF(arousal, 0, 1)
}

// SetDisconnected switches the link-down color override.
func (m *Mapper) SetDisconnected(disconnected bool) {
	m.disconnected = disconnected
}

// Disconnected reports whether the override is active.
func (m *Mapper) Disconnected() bool { return m.disconnected }

// Valence returns the current (drifting) valence.
func (m *Mapper) Valence() float64 { return m.valence }

// Arousal returns the current (drifting) arousal.
func (m *Mapper) Arousal() float64 { return m.arousal }

// TargetValence returns the clamped target.
func (m *Mapper) TargetValence() float64 { return m.targetValence }

// TargetArousal returns the clamped target.
func (m *Mapper) TargetArousal() float64 { return m.targetArousal }

// Update advances both axes toward their targets.
func (m *Mapper) Update(dt float64) {
	t := clampF(lerpRate*dt, 0, 1)
	m.valence += (m.targetValence - m.valence) * t
	m.arousal += (m.targetArousal - m.arousal) * t
}

// Color resolves the current display color. Arousal scales brightness
// multiplicatively; the disconnected override takes priority.
func (m *Mapper) Color() display.RGB {
	if m.disconnected {
		return scale(disconnectedColor, (0.5+0.5*m.arousal)*0.5)
	}

	var c colorful.Color
	if m.valence < 0 {
		c = paletteBlue.BlendRgb(paletteCyan, m.valence+1)
	} else {
		c = paletteCyan.BlendRgb(paletteGold, m.valence)
	}

	brightness := 0.5 + 0.5*m.arousal
	return display.RGB{
		R: uint8(clampF(c.R*brightness, 0, 1) * 255),
		G: uint8(clampF(c.G*brightness, 0, 1) * 255),
		B: uint8(clampF(c.B*brightness, 0, 1) * 255),
	}
}

func scale(c display.RGB, brightness float64) display.RGB {
	return display.RGB{
		R: uint8(clampF(float64(c.R)*brightness, 0, 255)),
		G: uint8(clampF(float64(c.G)*brightness, 0, 255)),
		B: uint8(clampF(float64(c.B)*brightness, 0, 255)),
	}
}
