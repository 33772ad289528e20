// Package engine orchestrates the particle simulation: it owns the
// noise generator, particle pool, sprite cache, framebuffer and mood
// mapper, and exposes the update/render contract consumed by the
// network glue and the terminal frontend.
//
// The engine itself is single-threaded. Public setters never touch
// simulation state directly; they enqueue commands that Update drains
// at the start of each tick, so the caller's callback context can never
// observe or produce a torn intermediate state.
package engine

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/Loviti/AdaDesktopCompanion/display"
	"github.com/Loviti/AdaDesktopCompanion/fixmath"
	"github.com/Loviti/AdaDesktopCompanion/formation"
	"github.com/Loviti/AdaDesktopCompanion/mood"
	"github.com/Loviti/AdaDesktopCompanion/noise"
	"github.com/Loviti/AdaDesktopCompanion/particle"
	"github.com/Loviti/AdaDesktopCompanion/render"
	"github.com/Loviti/AdaDesktopCompanion/sprite"
)

// State is the animation state machine. Disconnected is reported while
// the link-down override is active, regardless of the underlying
// formation transition.
type State uint8

const (
	StateStarting State = iota
	StateIdle
	StateTransitioning
	StateDisconnected
)

// Engine is the particle animation core. Construct with New; a zero
// Engine is not usable.
type Engine struct {
	width  int
	height int
	logf   func(format string, args ...any)

	disp    display.Display
	noise   *noise.Generator
	pool    *particle.Pool
	sprites *sprite.Set
	fb      *render.FrameBuffer
	scratch []display.RGB
	moodMap *mood.Mapper
	rng     *fixmath.Rand

	mu      sync.Mutex
	pending []command

	state              State
	currentFormation   formation.Type
	targetFormation    formation.Type
	savedFormation     formation.Type
	transitionProgress float64
	transitionRate     float64
	disconnected       bool

	targetCount int

	tun        Tunables
	tunTarget  Tunables
	animation  Animation
	shape      Shape
	linkCount  int
	background display.RGB

	// Per-slot color overrides set by image-derived fields.
	slotColor    []display.RGB
	slotHasColor []bool
	imageMode    bool

	noiseTime  float64
	pulsePhase float64

	frames   int
	fpsAccum float64
	fps      float64
}

// New allocates every backing resource up front. Pool and sprite
// failures are fatal; a framebuffer failure degrades to direct draw.
func New(cfg Config, d display.Display) (*Engine, error) {
	if d == nil {
		return nil, errors.New("engine requires a display")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Errorf("invalid engine size %dx%d", cfg.Width, cfg.Height)
	}

	pool, err := particle.NewPool(MaxParticles, cfg.Width, cfg.Height, cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "allocating particle pool")
	}
	sprites, err := sprite.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "generating sprites")
	}

	count := cfg.ParticleCount
	if count == 0 {
		count = DefaultParticleCount
	}
	count = clampInt(count, MinParticles, MaxParticles)

	e := &Engine{
		width:        cfg.Width,
		height:       cfg.Height,
		logf:         cfg.Logf,
		disp:         d,
		noise:        noise.New(cfg.Seed),
		pool:         pool,
		sprites:      sprites,
		moodMap:      mood.NewMapper(),
		rng:          fixmath.NewRand(cfg.Seed ^ 0x9e3779b97f4a7c15),
		state:        StateStarting,
		targetCount:  count,
		tun:          defaultTunables(),
		tunTarget:    defaultTunables(),
		background:   defaultBackground,
		slotColor:    make([]display.RGB, MaxParticles),
		slotHasColor: make([]bool, MaxParticles),
	}

	if cfg.Unbuffered {
		e.scratch = make([]display.RGB, cfg.Width*cfg.Height)
	} else {
		fb, err := render.NewFrameBuffer(cfg.Width, cfg.Height)
		if err != nil {
			e.log("framebuffer unavailable, falling back to direct draw: %v", err)
			e.scratch = make([]display.RGB, cfg.Width*cfg.Height)
		} else {
			e.fb = fb
		}
	}
	return e, nil
}

func (e *Engine) log(format string, args ...any) {
	if e.logf != nil {
		e.logf(format, args...)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Update advances the simulation by dt seconds. The caller clamps dt
// after stalls; the engine trusts it.
func (e *Engine) Update(dt float64) {
	if dt <= 0 {
		return
	}
	e.drainCommands()

	e.noiseTime += dt * noiseTimeSpeed
	e.pulsePhase += dt * e.tun.PulseSpeed
	e.moodMap.Update(dt)
	e.tun.lerpToward(e.tunTarget, dt)

	e.advanceTransition(dt)
	e.rampCount()
	e.pool.UpdateFades(dt)
	e.step(dt)

	e.frames++
	e.fpsAccum += dt
	if e.fpsAccum >= 1 {
		e.fps = float64(e.frames) / e.fpsAccum
		e.frames = 0
		e.fpsAccum = 0
	}
}

func (e *Engine) advanceTransition(dt float64) {
	if e.state != StateTransitioning {
		return
	}
	// Reassign ranks every tick: retiring particles shift everyone
	// behind them, and Point is pure so unchanged ranks stay put.
	e.retarget()
	e.transitionProgress += dt * e.transitionRate
	if e.transitionProgress >= 1 {
		e.transitionProgress = 1
		e.currentFormation = e.targetFormation
		e.state = StateIdle
	}
}

// beginTransition abandons any in-flight transition and restarts toward
// f. Idle releases every target immediately; the progress timer only
// gates the state machine.
func (e *Engine) beginTransition(f formation.Type, transitionMs uint16) {
	if transitionMs == 0 {
		transitionMs = defaultTransitionMs
	}
	e.targetFormation = f
	e.transitionProgress = 0
	e.transitionRate = 1000.0 / float64(transitionMs)
	e.state = StateTransitioning
	e.imageMode = false

	if f == formation.Idle {
		for i := 0; i < e.pool.Capacity(); i++ {
			e.pool.At(i).HasTarget = false
		}
		return
	}
	e.retarget()
}

// retarget reassigns a formation point to every live particle by rank.
// Point is pure, so repeated calls as the live count changes only move
// the particles whose rank shifted.
func (e *Engine) retarget() {
	f := e.targetFormation
	if f == formation.Idle {
		return
	}
	total := e.pool.ActiveCount()
	k := 0
	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State == particle.StateInactive {
			continue
		}
		p.TargetX, p.TargetY = formation.Point(f, k, total, e.width, e.height)
		p.HasTarget = true
		k++
	}
}

// rampCount moves the live population toward the target count, at most
// rampPerTick per direction per tick. During startup particles bloom
// from the center instead of spawning across the screen.
func (e *Engine) rampCount() {
	live := 0
	for i := 0; i < e.pool.Capacity(); i++ {
		s := e.pool.At(i).State
		if s == particle.StateActive || s == particle.StateFadingIn {
			live++
		}
	}

	switch {
	case live < e.targetCount:
		n := e.targetCount - live
		if n > rampPerTick {
			n = rampPerTick
		}
		spawned := false
		for ; n > 0; n-- {
			var idx int
			var ok bool
			if e.state == StateStarting {
				idx, ok = e.spawnBloom()
			} else {
				idx, ok = e.pool.Activate()
			}
			if !ok {
				break
			}
			e.slotHasColor[idx] = false
			spawned = true
		}
		if spawned && !e.imageMode {
			e.retarget()
		}
	case live > e.targetCount:
		n := live - e.targetCount
		if n > rampPerTick {
			n = rampPerTick
		}
		for i := 0; i < e.pool.Capacity() && n > 0; i++ {
			s := e.pool.At(i).State
			if s == particle.StateActive || s == particle.StateFadingIn {
				e.pool.StartFadeOut(i)
				n--
			}
		}
	}

	if e.state == StateStarting && live >= e.targetCount {
		e.state = StateIdle
	}
}

// spawnBloom places a particle near the center with a small outward
// velocity.
func (e *Engine) spawnBloom() (int, bool) {
	jx := e.rng.Range(-20, 21)
	jy := e.rng.Range(-20, 21)
	x := fixmath.FromInt(e.width/2 + jx)
	y := fixmath.FromInt(e.height/2 + jy)
	idx, ok := e.pool.ActivateAt(x, y)
	if !ok {
		return idx, false
	}
	p := e.pool.At(idx)
	p.VX = fixmath.FromFloat(float64(jx) * 0.05)
	p.VY = fixmath.FromFloat(float64(jy) * 0.05)
	return idx, true
}

// ActiveCount returns the number of live or fading particles.
func (e *Engine) ActiveCount() int { return e.pool.ActiveCount() }

// CurrentFormation returns the formation most recently completed.
func (e *Engine) CurrentFormation() formation.Type { return e.currentFormation }

// TargetFormation returns the formation currently transitioned toward.
func (e *Engine) TargetFormation() formation.Type { return e.targetFormation }

// TransitionProgress returns the in-flight transition progress in [0,1].
func (e *Engine) TransitionProgress() float64 { return e.transitionProgress }

// State reports the animation state. The disconnected override shadows
// the formation machine.
func (e *Engine) State() State {
	if e.Disconnected() {
		return StateDisconnected
	}
	return e.state
}

// FPS returns the frame rate measured over the last one-second window.
func (e *Engine) FPS() float64 { return e.fps }

// Disconnected reports whether the link-down override is active. Safe
// to call from outside the update loop; the field is written under the
// queue mutex.
func (e *Engine) Disconnected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disconnected
}

// ResolvedColor returns the mood-derived display color for this frame.
func (e *Engine) ResolvedColor() display.RGB { return e.moodMap.Color() }

// Render composites the frame and pushes it to the display.
func (e *Engine) Render() error {
	if e.fb == nil {
		return e.renderDirect()
	}

	e.fb.FadeToward(e.background, trailFade256)

	base := e.moodMap.Color()
	sizeBias := 0
	if e.tun.ParticleSize >= 2 {
		sizeBias = 1
	} else if e.tun.ParticleSize <= 0.6 {
		sizeBias = -1
	}

	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State == particle.StateInactive {
			continue
		}

		c := base
		if e.imageMode && e.slotHasColor[i] {
			c = e.slotColor[i]
		}

		b := e.drawBrightness(p)
		if b == 0 {
			continue
		}

		x := fixmath.ToIntRound(p.X)
		y := fixmath.ToIntRound(p.Y)
		spr := e.sprites.Get(clampInt(int(p.Size)+sizeBias, 0, sprite.NumSizes-1))

		switch e.shape {
		case ShapeSquare:
			side := spr.Diameter / 2
			e.fb.FillRectAdditive(x-side/2, y-side/2, side, side, c, b)
		case ShapeStar:
			e.fb.DrawSoftParticle(x, y, spr, c, b)
			r := spr.Diameter / 2
			spike := scaleColor(c, int(b)/3)
			e.fb.DrawLineAdditive(x-r, y, x+r, y, spike)
			e.fb.DrawLineAdditive(x, y-r, x, y+r, spike)
		default:
			e.fb.DrawSoftParticle(x, y, spr, c, b)
		}
	}

	e.drawLinks(base)
	return e.fb.Push(e.disp)
}

// drawBrightness folds fade progress, opacity and the ambient pulse
// into the stamp brightness.
func (e *Engine) drawBrightness(p *particle.Particle) uint8 {
	pulse := 0.8 + 0.2*math.Sin((e.pulsePhase+fixmath.ToFloat(p.Phase))*2*math.Pi)
	b := float64(p.Brightness) * float64(p.FadeProgress) / 255.0 * e.tun.Opacity * pulse
	if b <= 0 {
		return 0
	}
	if b > 255 {
		b = 255
	}
	return uint8(b)
}

func scaleColor(c display.RGB, mul int) display.RGB {
	if mul < 0 {
		mul = 0
	}
	if mul > 255 {
		mul = 255
	}
	return display.RGB{
		R: uint8(int(c.R) * mul / 255),
		G: uint8(int(c.G) * mul / 255),
		B: uint8(int(c.B) * mul / 255),
	}
}

// drawLinks connects nearby particles with faint additive lines.
func (e *Engine) drawLinks(base display.RGB) {
	if e.linkCount <= 0 || e.tun.LinkOpacity <= 0 {
		return
	}
	lc := scaleColor(base, int(e.tun.LinkOpacity*255))
	const maxD2 = linkMaxDistPx * linkMaxDistPx

	n := e.pool.Capacity()
	for i := 0; i < n; i++ {
		pi := e.pool.At(i)
		if pi.State == particle.StateInactive {
			continue
		}
		links := 0
		xi := fixmath.ToInt(pi.X)
		yi := fixmath.ToInt(pi.Y)
		for j := i + 1; j < n && links < e.linkCount; j++ {
			pj := e.pool.At(j)
			if pj.State == particle.StateInactive {
				continue
			}
			xj := fixmath.ToInt(pj.X)
			yj := fixmath.ToInt(pj.Y)
			dx := xj - xi
			dy := yj - yi
			if dx*dx+dy*dy > maxD2 {
				continue
			}
			e.fb.DrawLineAdditive(xi, yi, xj, yj, lc)
			links++
		}
	}
}

// renderDirect is the degraded path used when no framebuffer exists:
// no trails, plain pixels, full-frame blit.
func (e *Engine) renderDirect() error {
	for i := range e.scratch {
		e.scratch[i] = e.background
	}

	base := e.moodMap.Color()
	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State == particle.StateInactive {
			continue
		}
		c := base
		if e.imageMode && e.slotHasColor[i] {
			c = e.slotColor[i]
		}
		b := e.drawBrightness(p)
		x := fixmath.ToIntRound(p.X)
		y := fixmath.ToIntRound(p.Y)
		if x < 0 || x >= e.width || y < 0 || y >= e.height {
			continue
		}
		e.scratch[y*e.width+x] = scaleColor(c, int(b))
	}
	return e.disp.Blit(e.scratch, e.width, e.height)
}
