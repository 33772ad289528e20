package engine

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/Loviti/AdaDesktopCompanion/display"
)

// Config maps arrive from the network layer after JSON decoding, so
// numerics may show up as any of the common Go number types. Wrong
// types and unknown keys are dropped, never fatal.

var knownConfigKeys = map[string]struct{}{
	"particle_count": {},
	"particle_size":  {},
	"particle_speed": {},
	"dispersion":     {},
	"opacity":        {},
	"pulse_speed":    {},
	"rotation_speed": {},
	"link_count":     {},
	"link_opacity":   {},
	"animation":      {},
	"shape":          {},
	"bg_color":       {},
}

func numField(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func strField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Engine) applyConfig(m map[string]any) {
	for k := range m {
		if _, ok := knownConfigKeys[k]; !ok {
			e.log("config: ignoring unknown field %q", k)
		}
	}

	if v, ok := numField(m, "particle_count"); ok {
		e.targetCount = clampInt(int(v), MinParticles, MaxParticles)
	}
	if v, ok := numField(m, "particle_size"); ok {
		e.tunTarget.ParticleSize = clampFloat(v, 0.5, 8)
	}
	if v, ok := numField(m, "particle_speed"); ok {
		e.tunTarget.ParticleSpeed = clampFloat(v, 0.1, 5)
	}
	if v, ok := numField(m, "dispersion"); ok {
		e.tunTarget.Dispersion = clampFloat(v, 1, 200)
	}
	if v, ok := numField(m, "opacity"); ok {
		e.tunTarget.Opacity = clampFloat(v, 0, 1)
	}
	if v, ok := numField(m, "pulse_speed"); ok {
		e.tunTarget.PulseSpeed = clampFloat(v, 0.1, 5)
	}
	if v, ok := numField(m, "rotation_speed"); ok {
		e.tunTarget.RotationSpeed = v
	}
	if v, ok := numField(m, "link_count"); ok {
		e.linkCount = clampInt(int(v), 0, 100)
	}
	if v, ok := numField(m, "link_opacity"); ok {
		e.tunTarget.LinkOpacity = clampFloat(v, 0, 1)
	}

	if s, ok := strField(m, "animation"); ok {
		if a, ok := animationNames[s]; ok {
			e.animation = a
		} else {
			e.log("config: unknown animation %q", s)
		}
	}
	if s, ok := strField(m, "shape"); ok {
		if sh, ok := shapeNames[s]; ok {
			e.shape = sh
		} else {
			e.log("config: unknown shape %q", s)
		}
	}
	if s, ok := strField(m, "bg_color"); ok {
		if c, err := colorful.Hex(s); err == nil {
			e.background = display.RGB{
				R: uint8(c.R*255 + 0.5),
				G: uint8(c.G*255 + 0.5),
				B: uint8(c.B*255 + 0.5),
			}
		} else {
			e.log("config: bad bg_color %q: %v", s, err)
		}
	}
}
