package engine

import (
	"github.com/Loviti/AdaDesktopCompanion/formation"
)

// Commands carry validated setter calls from the network callback
// context into the update loop. Update drains the queue at tick start,
// so the loop never observes a half-applied mutation.

type cmdKind uint8

const (
	cmdSetFormation cmdKind = iota
	cmdClearFormation
	cmdSetMood
	cmdSetDisconnected
	cmdSetCount
	cmdTouch
	cmdClear
	cmdConfig
	cmdImage
)

type command struct {
	kind cmdKind

	formation    formation.Type
	transitionMs uint16

	valence float64
	arousal float64

	flag  bool
	count int
	x, y  int

	cfg map[string]any

	imgData []byte
	imgW    int
	imgH    int
}

func (e *Engine) enqueue(c command) {
	e.mu.Lock()
	e.pending = append(e.pending, c)
	e.mu.Unlock()
}

func (e *Engine) drainCommands() {
	e.mu.Lock()
	batch := e.pending
	e.pending = nil
	e.mu.Unlock()

	for i := range batch {
		e.apply(&batch[i])
	}
}

func (e *Engine) apply(c *command) {
	switch c.kind {
	case cmdSetFormation:
		if e.disconnected {
			// Remembered and applied when the link returns.
			e.savedFormation = c.formation
			return
		}
		e.beginTransition(c.formation, c.transitionMs)

	case cmdClearFormation:
		if e.disconnected {
			e.savedFormation = formation.Idle
			return
		}
		e.beginTransition(formation.Idle, c.transitionMs)

	case cmdSetMood:
		e.moodMap.Set(c.valence, c.arousal)

	case cmdSetDisconnected:
		if c.flag == e.disconnected {
			return
		}
		e.mu.Lock()
		e.disconnected = c.flag
		e.mu.Unlock()
		e.moodMap.SetDisconnected(c.flag)
		if c.flag {
			// Reconnecting reverts toward idle, not the interrupted
			// formation; a request arriving while down overrides that.
			e.savedFormation = formation.Idle
			e.beginTransition(formation.Disconnected, 500)
		} else {
			e.beginTransition(e.savedFormation, 500)
		}

	case cmdSetCount:
		e.targetCount = c.count

	case cmdTouch:
		e.applyTouch(c.x, c.y)

	case cmdClear:
		e.pool.Clear()
		e.imageMode = false
		e.currentFormation = formation.Idle
		e.targetFormation = formation.Idle
		e.transitionProgress = 0
		if e.state != StateStarting {
			e.state = StateIdle
		}

	case cmdConfig:
		e.applyConfig(c.cfg)

	case cmdImage:
		e.applyImage(c.imgData, c.imgW, c.imgH)
	}
}

// SetFormation requests a transition to f over transitionMs. Zero uses
// the default duration; an unknown formation is ignored.
func (e *Engine) SetFormation(f formation.Type, transitionMs uint16) {
	if !f.Valid() {
		e.log("ignoring unknown formation %d", f)
		return
	}
	e.enqueue(command{kind: cmdSetFormation, formation: f, transitionMs: transitionMs})
}

// ClearFormation releases all targets and drifts back to idle wander.
func (e *Engine) ClearFormation(transitionMs uint16) {
	e.enqueue(command{kind: cmdClearFormation, transitionMs: transitionMs})
}

// SetMood updates the target mood. Out-of-range values clamp.
func (e *Engine) SetMood(valence, arousal float64) {
	e.enqueue(command{kind: cmdSetMood, valence: valence, arousal: arousal})
}

// SetDisconnected toggles the link-down override.
func (e *Engine) SetDisconnected(disconnected bool) {
	e.enqueue(command{kind: cmdSetDisconnected, flag: disconnected})
}

// SetParticleCount changes the target population, clamped to the
// supported range. The pool ramps toward it over subsequent ticks.
func (e *Engine) SetParticleCount(count int) {
	e.enqueue(command{kind: cmdSetCount, count: clampInt(count, MinParticles, MaxParticles)})
}

// OnTouch applies a radial outward impulse around the touch point.
func (e *Engine) OnTouch(x, y int16) {
	e.enqueue(command{kind: cmdTouch, x: int(x), y: int(y)})
}

// Clear retires every particle immediately. The population regrows
// toward the target count afterward.
func (e *Engine) Clear() {
	e.enqueue(command{kind: cmdClear})
}

// ParseConfig applies a mapping of named tunables. Unknown fields are
// ignored, out-of-range numerics clamp. The map must not be mutated by
// the caller afterward.
func (e *Engine) ParseConfig(cfg map[string]any) {
	if len(cfg) == 0 {
		return
	}
	e.enqueue(command{kind: cmdConfig, cfg: cfg})
}

// CreateFromImage populates the particle field from RGB pixel data.
// Short data is zero-padded; the slice must not be mutated by the
// caller afterward.
func (e *Engine) CreateFromImage(data []byte, width, height int) {
	if width <= 0 || height <= 0 {
		e.log("ignoring image with invalid size %dx%d", width, height)
		return
	}
	e.enqueue(command{kind: cmdImage, imgData: data, imgW: width, imgH: height})
}
