package engine

import (
	"math"

	"github.com/Loviti/AdaDesktopCompanion/fixmath"
	"github.com/Loviti/AdaDesktopCompanion/particle"
)

// wrapMarginPx extends the screen on all sides before wraparound kicks
// in, so formations can reach the edges without particles popping.
const wrapMarginPx = 30

// step integrates every live particle. Velocity sources accumulate
// first and damping runs once over the combined velocity; damping each
// term separately would change the motion's frequency response.
func (e *Engine) step(dt float64) {
	cx := fixmath.FromInt(e.width / 2)
	cy := fixmath.FromInt(e.height / 2)

	t := uint32(int64(e.noiseTime * float64(fixmath.One)))
	scaleFx := fixmath.FromFloat(noiseScale)

	wanderGain := fixmath.FromFloat(wanderStrength * e.tun.ParticleSpeed * dt)
	springGain := fixmath.FromFloat(springK * dt * e.transitionProgress * formationTightness)

	pullBase := centerPull * dt * (100.0 / e.tun.Dispersion)
	pullFree := fixmath.FromFloat(pullBase)
	pullTargeted := fixmath.FromFloat(pullBase * centerPullTargeted)

	damp := fixmath.FromFloat(math.Pow(damping, dt*30))
	maxV := fixmath.FromFloat(maxVelocityPx * e.tun.ParticleSpeed)

	rotate := e.tun.RotationSpeed != 0
	var rotSin, rotCos fixmath.T
	if rotate {
		d := e.tun.RotationSpeed * dt
		rotSin = fixmath.FromFloat(math.Sin(d))
		rotCos = fixmath.FromFloat(math.Cos(d))
	}

	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State == particle.StateInactive {
			continue
		}

		if rotate && p.HasTarget {
			dx := p.TargetX - cx
			dy := p.TargetY - cy
			p.TargetX = cx + fixmath.Mul(dx, rotCos) - fixmath.Mul(dy, rotSin)
			p.TargetY = cy + fixmath.Mul(dx, rotSin) + fixmath.Mul(dy, rotCos)
		}

		nx := uint32(int64(fixmath.Mul(p.X, scaleFx)) + int64(p.NoiseOffsetX))
		ny := uint32(int64(fixmath.Mul(p.Y, scaleFx)) + int64(p.NoiseOffsetY))
		cvx, cvy := e.noise.Curl2D(nx, ny, t)
		p.VX += fixmath.Mul(cvx, wanderGain)
		p.VY += fixmath.Mul(cvy, wanderGain)

		if p.HasTarget {
			p.VX += fixmath.Mul(p.TargetX-p.X, springGain)
			p.VY += fixmath.Mul(p.TargetY-p.Y, springGain)
		}

		pull := pullFree
		if p.HasTarget {
			pull = pullTargeted
		}
		p.VX += fixmath.Mul(cx-p.X, pull)
		p.VY += fixmath.Mul(cy-p.Y, pull)

		e.applyAnimation(p, dt, cx, cy)

		p.VX = fixmath.Mul(p.VX, damp)
		p.VY = fixmath.Mul(p.VY, damp)

		p.VX = fixmath.Clamp(p.VX, -maxV, maxV)
		p.VY = fixmath.Clamp(p.VY, -maxV, maxV)

		p.X += p.VX
		p.Y += p.VY
		p.X = wrap(p.X, e.width)
		p.Y = wrap(p.Y, e.height)
	}
}

// wrap applies toroidal wraparound with the off-screen margin. An exit
// past one side re-enters one unit inside the opposite margin.
func wrap(v fixmath.T, extent int) fixmath.T {
	lo := -fixmath.FromInt(wrapMarginPx)
	hi := fixmath.FromInt(extent + wrapMarginPx)
	if v < lo {
		return hi - fixmath.One
	}
	if v > hi {
		return lo + fixmath.One
	}
	return v
}

// applyAnimation layers the configured ambient motion style on top of
// the noise wander.
func (e *Engine) applyAnimation(p *particle.Particle, dt float64, cx, cy fixmath.T) {
	switch e.animation {
	case AnimationDrift:
		p.VY -= fixmath.FromFloat(1.5 * dt)

	case AnimationSwirlInward:
		dx := p.X - cx
		dy := p.Y - cy
		tangent := fixmath.FromFloat(0.3 * dt)
		inward := fixmath.FromFloat(0.1 * dt)
		p.VX += fixmath.Mul(-dy, tangent) - fixmath.Mul(dx, inward)
		p.VY += fixmath.Mul(dx, tangent) - fixmath.Mul(dy, inward)

	case AnimationPulseOutward:
		g := fixmath.FromFloat(0.6 * dt * math.Sin(e.pulsePhase*2*math.Pi))
		p.VX += fixmath.Mul(p.X-cx, g)
		p.VY += fixmath.Mul(p.Y-cy, g)
	}
}

// applyTouch pushes particles inside the touch radius outward, with
// magnitude inversely proportional to distance.
func (e *Engine) applyTouch(x, y int) {
	const r2 = touchRadiusPx * touchRadiusPx

	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State == particle.StateInactive {
			continue
		}
		dx := fixmath.ToInt(p.X) - x
		dy := fixmath.ToInt(p.Y) - y
		d2 := dx*dx + dy*dy
		if d2 > r2 {
			continue
		}

		d := math.Sqrt(float64(d2))
		if d < 1 {
			// Directly under the touch point: kick in a random direction.
			a := float64(e.rng.Intn(int(fixmath.One))) / float64(fixmath.One) * 2 * math.Pi
			p.VX += fixmath.FromFloat(math.Cos(a) * touchImpulse / 30.0)
			p.VY += fixmath.FromFloat(math.Sin(a) * touchImpulse / 30.0)
			continue
		}

		mag := touchImpulse / d / 30.0
		p.VX += fixmath.FromFloat(float64(dx) / d * mag)
		p.VY += fixmath.FromFloat(float64(dy) / d * mag)
	}
}
