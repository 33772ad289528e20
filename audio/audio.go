// Package audio plays short synthesized cues for companion events:
// link up, link down, touch. Everything is generated; there are no
// sample assets.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// oscillator generates a sine wave for a fixed duration.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
}

func newOscillator(freq float64, duration time.Duration) *oscillator {
	return &oscillator{
		freq:     freq,
		duration: sampleRate.N(duration),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, false
		}
		val := math.Sin(2 * math.Pi * o.phase)
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(sampleRate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping so cues never click.
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
	gain           float64
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, gain float64) *envelope {
	total := sampleRate.N(duration)
	att := sampleRate.N(attack)
	rel := sampleRate.N(release)
	if att+rel > total {
		att = total / 2
		rel = total - att
	}
	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		totalSamples:   total,
		gain:           gain,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := e.gain
		switch {
		case e.position < e.attackSamples:
			g *= float64(e.position) / float64(e.attackSamples)
		case e.position >= e.totalSamples-e.releaseSamples:
			rem := e.totalSamples - e.position
			if rem < 0 {
				rem = 0
			}
			g *= float64(rem) / float64(e.releaseSamples)
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// Cues owns the speaker. A failed speaker init leaves the Cues silent
// rather than failing the program; an ambient display without sound
// beats no display.
type Cues struct {
	enabled bool
	logf    func(format string, args ...any)
}

// NewCues initializes the speaker. logf may be nil.
func NewCues(logf func(format string, args ...any)) *Cues {
	c := &Cues{logf: logf}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		if logf != nil {
			logf("audio unavailable, running silent: %v", err)
		}
		return c
	}
	c.enabled = true
	return c
}

// Enabled reports whether the speaker came up.
func (c *Cues) Enabled() bool { return c.enabled }

// Close releases the speaker.
func (c *Cues) Close() {
	if c.enabled {
		speaker.Close()
		c.enabled = false
	}
}

func (c *Cues) play(streamers ...beep.Streamer) {
	if !c.enabled {
		return
	}
	speaker.Play(beep.Seq(streamers...))
}

func chime(freq float64, duration time.Duration, gain float64) beep.Streamer {
	return newEnvelope(newOscillator(freq, duration), duration, 10*time.Millisecond, 60*time.Millisecond, gain)
}

// Connected plays a rising two-note chime.
func (c *Cues) Connected() {
	c.play(
		chime(523.25, 120*time.Millisecond, 0.3),
		chime(783.99, 180*time.Millisecond, 0.3),
	)
}

// Disconnected plays a falling two-note chime.
func (c *Cues) Disconnected() {
	c.play(
		chime(659.25, 120*time.Millisecond, 0.25),
		chime(392.00, 220*time.Millisecond, 0.25),
	)
}

// Touch plays a short soft blip.
func (c *Cues) Touch() {
	c.play(chime(880.00, 70*time.Millisecond, 0.2))
}
