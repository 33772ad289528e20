package engine

import (
	"github.com/Loviti/AdaDesktopCompanion/display"
	"github.com/Loviti/AdaDesktopCompanion/fixmath"
	"github.com/Loviti/AdaDesktopCompanion/particle"
)

// blackThreshold separates image pixels worth a particle from
// near-black background. Compared against the channel sum.
const blackThreshold = 15

// dimCenterCount caps the fallback population for an all-black image.
const dimCenterCount = 100

var dimCenterColor = display.RGB{R: 40, G: 40, B: 45}

type imagePoint struct {
	x, y int
	c    display.RGB
}

// applyImage turns RGB pixel data into particle targets. Existing
// particles morph toward the new positions and colors; only the
// shortfall spawns fresh. Short data is zero-padded.
func (e *Engine) applyImage(data []byte, imgW, imgH int) {
	need := imgW * imgH * 3
	if len(data) < need {
		padded := make([]byte, need)
		copy(padded, data)
		data = padded
	}

	valid := make([]imagePoint, 0, imgW*imgH)
	for y := 0; y < imgH; y++ {
		for x := 0; x < imgW; x++ {
			i := (y*imgW + x) * 3
			r, g, b := data[i], data[i+1], data[i+2]
			if int(r)+int(g)+int(b) <= blackThreshold {
				continue
			}
			valid = append(valid, imagePoint{x: x, y: y, c: display.RGB{R: r, G: g, B: b}})
		}
	}

	if len(valid) == 0 {
		e.applyBlackImage()
		return
	}

	target := e.targetCount
	if target > len(valid) {
		target = len(valid)
	}
	stride := len(valid) / target
	if stride < 1 {
		stride = 1
	}

	// Center the image on screen at a slight inset.
	sx := float64(e.width) / float64(imgW)
	sy := float64(e.height) / float64(imgH)
	scale := sx
	if sy < sx {
		scale = sy
	}
	scale *= 0.85
	offX := (float64(e.width) - float64(imgW)*scale) / 2
	offY := (float64(e.height) - float64(imgH)*scale) / 2

	assigned := 0
	cursor := 0
	for i := 0; i < len(valid) && assigned < target; i += stride {
		pt := valid[i]
		px := fixmath.FromFloat(offX + (float64(pt.x)+0.5)*scale)
		py := fixmath.FromFloat(offY + (float64(pt.y)+0.5)*scale)

		slot := e.nextLiveSlot(&cursor)
		if slot >= 0 {
			p := e.pool.At(slot)
			p.TargetX = px
			p.TargetY = py
			p.HasTarget = true
			if e.slotHasColor[slot] {
				e.slotColor[slot] = lerpRGB(e.slotColor[slot], pt.c, 128)
			} else {
				e.slotColor[slot] = pt.c
				e.slotHasColor[slot] = true
			}
		} else {
			idx, ok := e.pool.ActivateAt(px, py)
			if !ok {
				break
			}
			p := e.pool.At(idx)
			p.TargetX = px
			p.TargetY = py
			p.HasTarget = true
			e.slotColor[idx] = pt.c
			e.slotHasColor[idx] = true
		}
		assigned++
	}

	// Anything live beyond the assigned set fades away.
	for {
		slot := e.nextLiveSlot(&cursor)
		if slot < 0 {
			break
		}
		e.pool.StartFadeOut(slot)
		e.slotHasColor[slot] = false
	}

	e.imageMode = true
	// Pin the target to the assigned count, below the usual minimum if
	// need be, so the ramp cannot dilute the image with untargeted
	// spawns.
	e.targetCount = clampInt(assigned, 1, MaxParticles)
	// Full spring strength so particles settle into the image.
	e.transitionProgress = 1
	if e.state == StateTransitioning || e.state == StateStarting {
		e.state = StateIdle
	}
}

// applyBlackImage handles an image with no usable pixels: a small dim
// population near the center rather than an empty screen.
func (e *Engine) applyBlackImage() {
	count := e.targetCount
	if count > dimCenterCount {
		count = dimCenterCount
	}

	cursor := 0
	for n := 0; n < count; n++ {
		jx := e.rng.Range(-15, 16)
		jy := e.rng.Range(-15, 16)
		px := fixmath.FromInt(e.width/2 + jx)
		py := fixmath.FromInt(e.height/2 + jy)

		slot := e.nextLiveSlot(&cursor)
		if slot < 0 {
			var ok bool
			slot, ok = e.pool.ActivateAt(px, py)
			if !ok {
				break
			}
		}
		p := e.pool.At(slot)
		p.TargetX = px
		p.TargetY = py
		p.HasTarget = true
		e.slotColor[slot] = dimCenterColor
		e.slotHasColor[slot] = true
	}

	for {
		slot := e.nextLiveSlot(&cursor)
		if slot < 0 {
			break
		}
		e.pool.StartFadeOut(slot)
		e.slotHasColor[slot] = false
	}

	e.imageMode = true
	e.targetCount = clampInt(count, 1, MaxParticles)
	e.transitionProgress = 1
	if e.state == StateTransitioning || e.state == StateStarting {
		e.state = StateIdle
	}
}

// nextLiveSlot scans forward from *cursor for a particle that can be
// morphed. Returns -1 when none remain.
func (e *Engine) nextLiveSlot(cursor *int) int {
	for ; *cursor < e.pool.Capacity(); *cursor++ {
		s := e.pool.At(*cursor).State
		if s == particle.StateActive || s == particle.StateFadingIn {
			slot := *cursor
			*cursor++
			return slot
		}
	}
	return -1
}

func lerpRGB(a, b display.RGB, t256 int) display.RGB {
	mix := func(x, y uint8) uint8 {
		return uint8(int(x) + (int(y)-int(x))*t256/256)
	}
	return display.RGB{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}
