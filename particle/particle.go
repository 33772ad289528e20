// Package particle implements the fixed-capacity particle pool and the
// per-particle lifecycle. The pool owns the backing slab; particles are
// addressed by slot index only.
package particle

import (
	"github.com/pkg/errors"

	"github.com/Loviti/AdaDesktopCompanion/fixmath"
)

// State is the particle lifecycle state.
type State uint8

const (
	StateInactive State = iota
	StateActive
	StateFadingIn
	StateFadingOut
)

// Size selects one of the three pre-rendered sprite classes.
type Size uint8

const (
	SizeSmall Size = iota
	SizeMedium
	SizeLarge
)

// Fade progress counts 0..255 and completes in roughly half a second;
// abrupt pop-in looks wrong against the trail renderer.
const (
	fadeMax          = 255
	fadeUnitsPerSec  = 512
	spawnMarginPx    = 50
	brightnessFloor  = 180
	brightnessJitter = 76
)

// Particle is one simulated point. Position, velocity and targets are
// 16.16 fixed-point screen coordinates.
type Particle struct {
	X, Y   fixmath.T
	VX, VY fixmath.T

	TargetX, TargetY fixmath.T
	HasTarget        bool

	Size       Size
	Brightness uint8

	// Phase and noise offsets decorrelate particles sampling the same
	// noise field.
	Phase        fixmath.T
	NoiseOffsetX fixmath.T
	NoiseOffsetY fixmath.T

	State        State
	FadeProgress int
}

// Pool is a fixed-capacity slab of particles.
type Pool struct {
	particles []Particle
	active    int
	rng       *fixmath.Rand

	width  int
	height int
}

// NewPool allocates the slab once. The pool is unusable without its
// backing storage, so a degenerate capacity or screen size is an error.
func NewPool(capacity, width, height int, seed uint64) (*Pool, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("invalid pool capacity %d", capacity)
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid screen size %dx%d", width, height)
	}
	return &Pool{
		particles: make([]Particle, capacity),
		rng:       fixmath.NewRand(seed),
		width:     width,
		height:    height,
	}, nil
}

// Capacity returns the slab size.
func (p *Pool) Capacity() int { return len(p.particles) }

// ActiveCount returns the number of particles not in the inactive state.
func (p *Pool) ActiveCount() int { return p.active }

// At returns the particle at a slot. Out-of-range indices return nil.
func (p *Pool) At(index int) *Particle {
	if index < 0 || index >= len(p.particles) {
		return nil
	}
	return &p.particles[index]
}

func (p *Pool) findInactiveSlot() int {
	// Linear scan is fine at this capacity
	for i := range p.particles {
		if p.particles[i].State == StateInactive {
			return i
		}
	}
	return -1
}

func (p *Pool) initParticle(pt *Particle, x, y fixmath.T) {
	pt.X = x
	pt.Y = y
	pt.VX = 0
	pt.VY = 0
	pt.TargetX = 0
	pt.TargetY = 0
	pt.HasTarget = false

	// 60/30/10 size split, favoring small
	roll := p.rng.Intn(100)
	switch {
	case roll < 60:
		pt.Size = SizeSmall
	case roll < 90:
		pt.Size = SizeMedium
	default:
		pt.Size = SizeLarge
	}

	pt.Brightness = uint8(brightnessFloor + p.rng.Intn(brightnessJitter))
	pt.Phase = fixmath.T(p.rng.Intn(int(fixmath.One)))
	pt.NoiseOffsetX = fixmath.FromInt(p.rng.Intn(10000))
	pt.NoiseOffsetY = fixmath.FromInt(p.rng.Intn(10000))

	pt.State = StateFadingIn
	pt.FadeProgress = 0
}

// Activate spawns a particle at a random on-screen position inset by a
// margin. Returns the slot index and false when the pool is full.
func (p *Pool) Activate() (int, bool) {
	m := spawnMarginPx
	if 2*m >= p.width || 2*m >= p.height {
		m = 0
	}
	x := fixmath.FromInt(m + p.rng.Intn(p.width-2*m))
	y := fixmath.FromInt(m + p.rng.Intn(p.height-2*m))
	return p.ActivateAt(x, y)
}

// ActivateAt spawns a particle at a caller-supplied position.
func (p *Pool) ActivateAt(x, y fixmath.T) (int, bool) {
	slot := p.findInactiveSlot()
	if slot < 0 {
		return -1, false
	}
	p.initParticle(&p.particles[slot], x, y)
	p.active++
	return slot, true
}

// Deactivate immediately retires a particle.
func (p *Pool) Deactivate(index int) {
	if index < 0 || index >= len(p.particles) {
		return
	}
	if p.particles[index].State != StateInactive {
		p.particles[index].State = StateInactive
		p.active--
		if p.active < 0 {
			p.active = 0
		}
	}
}

// StartFadeOut begins retiring a particle. Only valid from the active
// or fading-in states; the slot is reused once the fade completes.
func (p *Pool) StartFadeOut(index int) {
	if index < 0 || index >= len(p.particles) {
		return
	}
	s := p.particles[index].State
	if s == StateActive || s == StateFadingIn {
		p.particles[index].State = StateFadingOut
		p.particles[index].FadeProgress = fadeMax
	}
}

// UpdateFades advances fade progress for all transitioning particles.
// A full fade takes about half a second of cumulative dt.
func (p *Pool) UpdateFades(dt float64) {
	step := int(dt * fadeUnitsPerSec)
	if step < 1 {
		step = 1
	}

	for i := range p.particles {
		pt := &p.particles[i]
		switch pt.State {
		case StateFadingIn:
			pt.FadeProgress += step
			if pt.FadeProgress >= fadeMax {
				pt.FadeProgress = fadeMax
				pt.State = StateActive
			}
		case StateFadingOut:
			pt.FadeProgress -= step
			if pt.FadeProgress <= 0 {
				pt.FadeProgress = 0
				pt.State = StateInactive
				p.active--
				if p.active < 0 {
					p.active = 0
				}
			}
		}
	}
}

// Clear deactivates every particle.
func (p *Pool) Clear() {
	for i := range p.particles {
		p.particles[i].State = StateInactive
	}
	p.active = 0
}
