package engine

import "github.com/Loviti/AdaDesktopCompanion/display"

// Pool and lifecycle limits.
const (
	MaxParticles         = 400
	MinParticles         = 50
	DefaultParticleCount = 300

	defaultTransitionMs = 1000
	rampPerTick         = 5
)

// Physics tuning. Velocities are px/frame at the nominal 30 FPS tick;
// gains that carry dt are computed per tick.
const (
	noiseScale     = 0.02
	noiseTimeSpeed = 0.2
	wanderStrength = 30.0

	springK            = 8.0
	formationTightness = 0.6

	centerPull         = 0.4
	centerPullTargeted = 0.3

	damping       = 0.94
	maxVelocityPx = 3.0

	touchRadiusPx = 100
	touchImpulse  = 240.0

	trailFade256    = 220
	linkMaxDistPx   = 40
	configLerpSpeed = 3.0
)

// Animation selects the ambient motion overlay applied on top of the
// curl-noise wander.
type Animation uint8

const (
	AnimationFloat Animation = iota
	AnimationDrift
	AnimationSwirlInward
	AnimationPulseOutward
)

var animationNames = map[string]Animation{
	"float":         AnimationFloat,
	"drift":         AnimationDrift,
	"swirl_inward":  AnimationSwirlInward,
	"pulse_outward": AnimationPulseOutward,
}

// Shape selects how a particle is stamped into the framebuffer.
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeSquare
	ShapeStar
)

var shapeNames = map[string]Shape{
	"circle": ShapeCircle,
	"square": ShapeSquare,
	"star":   ShapeStar,
}

// Tunables are the continuous parameters reachable through ParseConfig.
// They drift toward their targets each tick so a config push never
// causes a visual snap.
type Tunables struct {
	ParticleSize  float64 // [0.5, 8]
	ParticleSpeed float64 // [0.1, 5]
	Dispersion    float64 // [1, 200]
	Opacity       float64 // [0, 1]
	PulseSpeed    float64 // [0.1, 5]
	RotationSpeed float64 // unclamped, radians/s applied to targets
	LinkOpacity   float64 // [0, 1]
}

func defaultTunables() Tunables {
	return Tunables{
		ParticleSize:  1,
		ParticleSpeed: 1,
		Dispersion:    100,
		Opacity:       1,
		PulseSpeed:    1,
		RotationSpeed: 0,
		LinkOpacity:   0.4,
	}
}

func (t *Tunables) lerpToward(target Tunables, dt float64) {
	k := configLerpSpeed * dt
	if k > 1 {
		k = 1
	}
	t.ParticleSize += (target.ParticleSize - t.ParticleSize) * k
	t.ParticleSpeed += (target.ParticleSpeed - t.ParticleSpeed) * k
	t.Dispersion += (target.Dispersion - t.Dispersion) * k
	t.Opacity += (target.Opacity - t.Opacity) * k
	t.PulseSpeed += (target.PulseSpeed - t.PulseSpeed) * k
	t.RotationSpeed += (target.RotationSpeed - t.RotationSpeed) * k
	t.LinkOpacity += (target.LinkOpacity - t.LinkOpacity) * k
}

// Config is the construction-time configuration for an Engine.
type Config struct {
	Width  int
	Height int
	Seed   uint64

	// ParticleCount is the initial target count. Zero means the
	// default.
	ParticleCount int

	// Unbuffered skips the trail framebuffer and renders plain pixels
	// straight to the display. Lower quality, less memory.
	Unbuffered bool

	// Logf receives diagnostics. Nil discards them.
	Logf func(format string, args ...any)
}

var defaultBackground = display.RGB{}
