package engine

import (
	"testing"

	"github.com/Loviti/AdaDesktopCompanion/display"
	"github.com/Loviti/AdaDesktopCompanion/fixmath"
	"github.com/Loviti/AdaDesktopCompanion/formation"
	"github.com/Loviti/AdaDesktopCompanion/particle"
)

const tick = 1.0 / 30.0

func newTestEngine(t *testing.T, count int) (*Engine, *display.Memory) {
	t.Helper()
	d := display.NewMemory(240, 240)
	e, err := New(Config{Width: 240, Height: 240, Seed: 7, ParticleCount: count}, d)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, d
}

func run(e *Engine, ticks int) {
	for i := 0; i < ticks; i++ {
		e.Update(tick)
	}
}

func nearRGB(a, b display.RGB, tol int) bool {
	d := func(x, y uint8) int {
		v := int(x) - int(y)
		if v < 0 {
			v = -v
		}
		return v
	}
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Width: 240, Height: 240}, nil); err == nil {
		t.Error("nil display should fail")
	}
	if _, err := New(Config{Width: 0, Height: 240}, display.NewMemory(240, 240)); err == nil {
		t.Error("zero width should fail")
	}
}

func TestCountRampsToTarget(t *testing.T) {
	e, _ := newTestEngine(t, 300)

	prev := e.ActiveCount()
	for i := 0; i < 300; i++ {
		e.Update(tick)
		n := e.ActiveCount()
		if n-prev > rampPerTick {
			t.Fatalf("tick %d grew population by %d, ramp limit is %d", i, n-prev, rampPerTick)
		}
		prev = n
	}
	if e.ActiveCount() != 300 {
		t.Errorf("population should converge to 300, got %d", e.ActiveCount())
	}
	if e.State() != StateIdle {
		t.Errorf("state should settle at idle after startup, got %d", e.State())
	}
}

func TestSetParticleCountRampsDown(t *testing.T) {
	e, _ := newTestEngine(t, 300)
	run(e, 120)

	e.SetParticleCount(100)
	run(e, 600)
	if e.ActiveCount() != 100 {
		t.Errorf("population should converge to 100, got %d", e.ActiveCount())
	}

	// Out-of-range counts clamp.
	e.SetParticleCount(999999)
	run(e, 600)
	if e.ActiveCount() != MaxParticles {
		t.Errorf("oversized count should clamp to %d, got %d", MaxParticles, e.ActiveCount())
	}
	e.SetParticleCount(1)
	e.Update(tick)
	if e.targetCount != MinParticles {
		t.Errorf("undersized count should clamp to %d, got %d", MinParticles, e.targetCount)
	}
}

func TestHeartTransitionCompletes(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	run(e, 60)

	e.SetFormation(formation.Heart, 2000)

	// Mixed dt granularity summing to exactly 2000ms.
	steps := []float64{0.5, 0.25, 0.25, 0.1, 0.1, 0.1, 0.1, 0.1, 0.5, 0.1}
	for _, dt := range steps {
		e.Update(dt)
	}

	if e.TransitionProgress() != 1 {
		t.Errorf("transition progress should reach 1, got %v", e.TransitionProgress())
	}
	if e.CurrentFormation() != formation.Heart {
		t.Errorf("formation should be heart after transition, got %v", e.CurrentFormation())
	}
	if e.State() != StateIdle {
		t.Errorf("state should return to idle, got %d", e.State())
	}

	// Live particles carry formation targets.
	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State != particle.StateInactive && !p.HasTarget {
			t.Fatalf("particle %d has no target while heart formation is active", i)
		}
	}
}

func TestNewFormationAbandonsTransition(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	run(e, 60)

	e.SetFormation(formation.Heart, 2000)
	e.Update(0.5)
	if e.TransitionProgress() >= 1 {
		t.Fatal("transition should still be in flight")
	}

	e.SetFormation(formation.Wave, 1000)
	e.Update(tick)
	if e.TargetFormation() != formation.Wave {
		t.Errorf("new request should overwrite target, got %v", e.TargetFormation())
	}
	if e.TransitionProgress() > 0.1 {
		t.Errorf("progress should reset on new request, got %v", e.TransitionProgress())
	}
}

func TestDisconnectOverrideAndRevert(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	run(e, 60)
	e.SetMood(1, 1)
	e.SetFormation(formation.Heart, 500)
	run(e, 120)
	if e.CurrentFormation() != formation.Heart {
		t.Fatalf("setup: formation should be heart, got %v", e.CurrentFormation())
	}

	moodColor := e.ResolvedColor()

	e.SetDisconnected(true)
	run(e, 30)

	if e.State() != StateDisconnected {
		t.Errorf("state should report disconnected, got %d", e.State())
	}
	if e.CurrentFormation() != formation.Disconnected {
		t.Errorf("formation should be disconnected, got %v", e.CurrentFormation())
	}
	c := e.ResolvedColor()
	if c == moodColor {
		t.Error("disconnected color should differ from mood color")
	}
	want := display.RGB{R: 15, G: 20, B: 30}
	if !nearRGB(c, want, 1) {
		t.Errorf("disconnected color should be near %+v, got %+v", want, c)
	}

	e.SetDisconnected(false)
	run(e, 120)

	if e.State() == StateDisconnected {
		t.Error("state should leave disconnected after link returns")
	}
	// Reconnecting drops back to idle wander, not the old formation.
	if e.CurrentFormation() != formation.Idle {
		t.Errorf("formation should revert to idle, got %v", e.CurrentFormation())
	}
	if e.ResolvedColor() == want {
		t.Error("color should resume mood-driven computation")
	}
}

func TestFormationWhileDisconnectedDeferred(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	run(e, 60)

	e.SetDisconnected(true)
	run(e, 30)
	e.SetFormation(formation.Sun, 500)
	run(e, 30)
	if e.CurrentFormation() != formation.Disconnected {
		t.Errorf("formation requests should defer while disconnected, got %v", e.CurrentFormation())
	}

	e.SetDisconnected(false)
	run(e, 60)
	if e.CurrentFormation() != formation.Sun {
		t.Errorf("deferred formation should apply on reconnect, got %v", e.CurrentFormation())
	}
}

func TestTouchPushesOutward(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	run(e, 120)

	// Remove the wander component so only the impulse remains.
	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		p.VX = 0
		p.VY = 0
	}
	e.OnTouch(120, 120)
	e.drainCommands()

	// Radial component of velocity away from the touch point should be
	// positive in aggregate for particles inside the radius.
	var radial int64
	hit := 0
	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State == particle.StateInactive {
			continue
		}
		dx := int64(fixmath.ToInt(p.X) - 120)
		dy := int64(fixmath.ToInt(p.Y) - 120)
		if dx*dx+dy*dy > touchRadiusPx*touchRadiusPx {
			continue
		}
		hit++
		radial += dx*int64(p.VX) + dy*int64(p.VY)
	}
	if hit == 0 {
		t.Fatal("no particles inside touch radius")
	}
	if radial <= 0 {
		t.Errorf("touch should push particles outward, net radial velocity %d over %d particles", radial, hit)
	}
}

func TestConfigClamping(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	e.ParseConfig(map[string]any{
		"particle_count": 999999,
		"dispersion":     -50,
		"particle_size":  100.0,
		"opacity":        2.5,
		"pulse_speed":    0,
		"link_count":     1000,
		"animation":      "swirl_inward",
		"shape":          "square",
		"bg_color":       "#102030",
		"mystery_knob":   42,
		"particle_speed": "fast",
	})
	e.Update(tick)

	if e.targetCount != MaxParticles {
		t.Errorf("particle_count should clamp to %d, got %d", MaxParticles, e.targetCount)
	}
	if e.tunTarget.Dispersion != 1 {
		t.Errorf("dispersion should clamp to 1, got %v", e.tunTarget.Dispersion)
	}
	if e.tunTarget.ParticleSize != 8 {
		t.Errorf("particle_size should clamp to 8, got %v", e.tunTarget.ParticleSize)
	}
	if e.tunTarget.Opacity != 1 {
		t.Errorf("opacity should clamp to 1, got %v", e.tunTarget.Opacity)
	}
	if e.tunTarget.PulseSpeed != 0.1 {
		t.Errorf("pulse_speed should clamp to 0.1, got %v", e.tunTarget.PulseSpeed)
	}
	if e.linkCount != 100 {
		t.Errorf("link_count should clamp to 100, got %d", e.linkCount)
	}
	if e.animation != AnimationSwirlInward {
		t.Errorf("animation should parse, got %d", e.animation)
	}
	if e.shape != ShapeSquare {
		t.Errorf("shape should parse, got %d", e.shape)
	}
	want := display.RGB{R: 0x10, G: 0x20, B: 0x30}
	if e.background != want {
		t.Errorf("bg_color should parse to %+v, got %+v", want, e.background)
	}
	// Wrong-typed particle_speed is dropped, default survives.
	if e.tunTarget.ParticleSpeed != 1 {
		t.Errorf("wrong-typed particle_speed should be ignored, got %v", e.tunTarget.ParticleSpeed)
	}
}

func TestTunablesDriftTowardConfig(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	e.ParseConfig(map[string]any{"opacity": 0.0})
	e.Update(tick)
	if e.tun.Opacity >= 1 {
		t.Error("opacity should start drifting after one tick")
	}
	if e.tun.Opacity < 0.5 {
		t.Errorf("opacity should not snap in one tick, got %v", e.tun.Opacity)
	}
	run(e, 120)
	if e.tun.Opacity > 0.01 {
		t.Errorf("opacity should converge to 0, got %v", e.tun.Opacity)
	}
}

func TestCreateFromImage(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	run(e, 120)

	// 4x4 image, two bright pixels, data truncated to force padding.
	data := make([]byte, 4*4*3)
	set := func(x, y int, r, g, b byte) {
		i := (y*4 + x) * 3
		data[i], data[i+1], data[i+2] = r, g, b
	}
	set(1, 1, 255, 0, 0)
	set(2, 2, 0, 255, 0)
	e.CreateFromImage(data[:len(data)-5], 4, 4)
	e.Update(tick)

	if !e.imageMode {
		t.Fatal("image mode should be active")
	}
	colored := 0
	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State == particle.StateInactive || !e.slotHasColor[i] {
			continue
		}
		colored++
		if !p.HasTarget {
			t.Fatalf("image particle %d should carry a target", i)
		}
	}
	if colored == 0 {
		t.Error("image should produce colored particles")
	}
	if colored > 2 {
		t.Errorf("two bright pixels should produce at most two colored particles, got %d", colored)
	}

	// The count ramp must not refill the field around a small image:
	// once the old particles have faded there are only image particles,
	// all targeted.
	run(e, 60)
	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State == particle.StateInactive {
			continue
		}
		if !p.HasTarget || !e.slotHasColor[i] {
			t.Fatalf("particle %d spawned without an image target after image load", i)
		}
	}
	if e.ActiveCount() != 2 {
		t.Errorf("population should settle at the two image particles, got %d", e.ActiveCount())
	}
}

func TestCreateFromAllBlackImage(t *testing.T) {
	e, _ := newTestEngine(t, 300)
	run(e, 120)

	e.CreateFromImage(make([]byte, 8*8*3), 8, 8)
	e.Update(tick)

	colored := 0
	for i := 0; i < e.pool.Capacity(); i++ {
		if e.pool.At(i).State != particle.StateInactive && e.slotHasColor[i] {
			colored++
			if e.slotColor[i] != dimCenterColor {
				t.Fatalf("black-image particle should be dim, got %+v", e.slotColor[i])
			}
		}
	}
	if colored == 0 || colored > dimCenterCount {
		t.Errorf("black image should leave 1..%d dim particles, got %d", dimCenterCount, colored)
	}
}

func TestSetFormationRejectsInvalid(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	e.SetFormation(formation.Type(200), 100)
	e.Update(tick)
	if e.TargetFormation() != formation.Idle {
		t.Errorf("invalid formation should be dropped, target is %v", e.TargetFormation())
	}
}

func TestClearRetiresEverything(t *testing.T) {
	e, _ := newTestEngine(t, 200)
	run(e, 120)
	if e.ActiveCount() == 0 {
		t.Fatal("population should exist before clear")
	}

	e.Clear()
	e.Update(tick)
	// The same tick regrows a handful via the ramp.
	if e.ActiveCount() > rampPerTick {
		t.Errorf("clear should empty the pool before regrowth, got %d", e.ActiveCount())
	}
}

func TestRenderPushesFrames(t *testing.T) {
	e, d := newTestEngine(t, 100)
	run(e, 120)

	if err := e.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if d.Blits() != 1 {
		t.Fatalf("render should push exactly one frame, got %d", d.Blits())
	}

	lit := 0
	for _, px := range d.Frame() {
		if px != (display.RGB{}) {
			lit++
		}
	}
	if lit == 0 {
		t.Error("rendered frame should contain lit pixels")
	}
}

func TestRenderDirectDrawFallback(t *testing.T) {
	d := display.NewMemory(240, 240)
	e, err := New(Config{Width: 240, Height: 240, Seed: 7, ParticleCount: 100, Unbuffered: true}, d)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	run(e, 120)
	if err := e.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	lit := 0
	for _, px := range d.Frame() {
		if px != (display.RGB{}) {
			lit++
		}
	}
	if lit == 0 {
		t.Error("direct draw should still produce lit pixels")
	}
}

func TestSettersSafeBeforeUpdate(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	// Queue a burst from a foreign goroutine, as the network layer does.
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.SetMood(0.5, 0.5)
		e.SetFormation(formation.Cloud, 300)
		e.SetParticleCount(150)
		e.OnTouch(10, 10)
	}()
	<-done

	e.Update(tick)
	if e.TargetFormation() != formation.Cloud {
		t.Errorf("queued formation should apply on next tick, got %v", e.TargetFormation())
	}
	if e.targetCount != 150 {
		t.Errorf("queued count should apply on next tick, got %d", e.targetCount)
	}
}

func TestRetargetAfterMidTransitionRetire(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	run(e, 60)

	e.SetFormation(formation.Wave, 2000)
	e.Update(tick)

	// Retire a block of particles mid-transition; ranks behind them
	// must close up on the next tick.
	retired := 0
	for i := 0; i < e.pool.Capacity() && retired < 10; i++ {
		if e.pool.At(i).State == particle.StateActive {
			e.pool.Deactivate(i)
			retired++
		}
	}
	if retired != 10 {
		t.Fatalf("setup: retired %d particles", retired)
	}
	e.Update(tick)

	total := e.pool.ActiveCount()
	want := make(map[[2]fixmath.T]int, total)
	for k := 0; k < total; k++ {
		x, y := formation.Point(formation.Wave, k, total, 240, 240)
		want[[2]fixmath.T{x, y}]++
	}
	for i := 0; i < e.pool.Capacity(); i++ {
		p := e.pool.At(i)
		if p.State == particle.StateInactive {
			continue
		}
		if !p.HasTarget {
			t.Fatalf("particle %d lost its target mid-transition", i)
		}
		key := [2]fixmath.T{p.TargetX, p.TargetY}
		if want[key] == 0 {
			t.Fatalf("particle %d targets (%d,%d), not a rank point for total %d",
				i, fixmath.ToInt(p.TargetX), fixmath.ToInt(p.TargetY), total)
		}
		want[key]--
	}
}
