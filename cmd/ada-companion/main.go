// ada-companion runs the particle engine against a terminal or headless
// display with keyboard and mouse control standing in for the network
// glue.
//
// Keys: 1-9 select formations, v/V and a/A nudge mood, d toggles the
// disconnected override, c clears the field, q or Esc quits. Mouse
// clicks become touch impulses.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Loviti/AdaDesktopCompanion/audio"
	"github.com/Loviti/AdaDesktopCompanion/config"
	"github.com/Loviti/AdaDesktopCompanion/display"
	"github.com/Loviti/AdaDesktopCompanion/engine"
	"github.com/Loviti/AdaDesktopCompanion/formation"
	"github.com/Loviti/AdaDesktopCompanion/telemetry"
)

// maxDt bounds the per-tick delta so a stalled host cannot explode the
// physics.
const maxDt = 0.1

var formationKeys = map[rune]formation.Type{
	'1': formation.Idle,
	'2': formation.Cloud,
	'3': formation.Sun,
	'4': formation.Rain,
	'5': formation.Snow,
	'6': formation.Heart,
	'7': formation.Thinking,
	'8': formation.Wave,
	'9': formation.Disconnected,
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml (empty for built-in defaults)")
	headless := flag.Bool("headless", false, "run without a terminal display")
	seconds := flag.Int("seconds", 0, "exit after this many seconds (0 runs until quit)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *headless {
		cfg.Display.Mode = "headless"
	}

	if err := run(cfg, *seconds); err != nil {
		fmt.Fprintf(os.Stderr, "ada-companion: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, seconds int) error {
	logger := log.New(os.Stderr, "", log.Ltime)

	var (
		disp display.Display
		term *display.Terminal
	)
	if cfg.Display.Mode == "terminal" {
		t, err := display.NewTerminal(cfg.Display.Width, cfg.Display.Height)
		if err != nil {
			return err
		}
		if err := t.Init(); err != nil {
			return err
		}
		term = t
		disp = t

		// Terminal cleanup must survive any panic or the shell is left
		// in raw mode.
		defer func() {
			if r := recover(); r != nil {
				display.EmergencyReset(os.Stdout)
				fmt.Fprintf(os.Stderr, "\nada-companion crashed: %v\n%s\n", r, debug.Stack())
				os.Exit(1)
			}
			t.Fini()
		}()
	} else {
		disp = display.NewMemory(cfg.Display.Width, cfg.Display.Height)
	}
	disp.SetBrightness(uint8(cfg.Display.Brightness))

	eng, err := engine.New(engine.Config{
		Width:         cfg.Display.Width,
		Height:        cfg.Display.Height,
		Seed:          seedOrNow(cfg.Engine.Seed),
		ParticleCount: cfg.Engine.ParticleCount,
		Unbuffered:    cfg.Engine.Unbuffered,
		Logf:          logger.Printf,
	}, disp)
	if err != nil {
		return err
	}

	var cues *audio.Cues
	if cfg.Audio.Enabled {
		cues = audio.NewCues(logger.Printf)
		defer cues.Close()
	}

	var samples *telemetry.Collector
	if cfg.Telemetry.Enabled {
		samples = telemetry.NewCollector()
	}

	quit := make(chan struct{})
	if term != nil {
		go pollInput(term, eng, cues, quit)
	}

	tickDuration := time.Second / time.Duration(cfg.Display.TargetFPS)
	ticker := time.NewTicker(tickDuration)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if seconds > 0 {
		deadline = time.After(time.Duration(seconds) * time.Second)
	}

	last := time.Now()
	for {
		select {
		case <-quit:
			return finish(samples, cfg.Telemetry.Dir, logger)
		case <-deadline:
			return finish(samples, cfg.Telemetry.Dir, logger)
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt > maxDt {
				dt = maxDt
			}

			t0 := time.Now()
			eng.Update(dt)
			t1 := time.Now()
			if err := eng.Render(); err != nil {
				return err
			}

			samples.Record(telemetry.FrameSample{
				UpdateUS:    t1.Sub(t0).Microseconds(),
				RenderUS:    time.Since(t1).Microseconds(),
				ActiveCount: eng.ActiveCount(),
				FPS:         eng.FPS(),
				Formation:   eng.CurrentFormation().String(),
			})
		}
	}
}

func seedOrNow(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return uint64(time.Now().UnixNano())
}

func finish(samples *telemetry.Collector, dir string, logger *log.Logger) error {
	if samples.Len() == 0 {
		return nil
	}
	if err := samples.WriteCSV(dir); err != nil {
		return err
	}
	s := samples.Summarize()
	logger.Printf("telemetry: %d frames, update %.0fus (p95 %.0fus), render %.0fus (p95 %.0fus), %.1f fps",
		s.Frames, s.UpdateMeanUS, s.UpdateP95US, s.RenderMeanUS, s.RenderP95US, s.MeanFPS)
	return nil
}

// pollInput translates terminal events into engine commands. Runs on
// its own goroutine; the engine queue makes that safe.
func pollInput(term *display.Terminal, eng *engine.Engine, cues *audio.Cues, quit chan struct{}) {
	var (
		valence float64
		arousal = 0.3
	)
	for {
		ev := term.PollEvent()
		if ev == nil {
			close(quit)
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
				close(quit)
				return
			case ev.Rune() == 'd':
				was := eng.Disconnected()
				eng.SetDisconnected(!was)
				if cues != nil {
					if was {
						cues.Connected()
					} else {
						cues.Disconnected()
					}
				}
			case ev.Rune() == 'c':
				eng.Clear()
			case ev.Rune() == 'v':
				valence = clamp(valence-0.2, -1, 1)
				eng.SetMood(valence, arousal)
			case ev.Rune() == 'V':
				valence = clamp(valence+0.2, -1, 1)
				eng.SetMood(valence, arousal)
			case ev.Rune() == 'a':
				arousal = clamp(arousal-0.2, 0, 1)
				eng.SetMood(valence, arousal)
			case ev.Rune() == 'A':
				arousal = clamp(arousal+0.2, 0, 1)
				eng.SetMood(valence, arousal)
			default:
				if f, ok := formationKeys[ev.Rune()]; ok {
					eng.SetFormation(f, 0)
				}
			}
		case *tcell.EventMouse:
			if ev.Buttons()&tcell.Button1 == 0 {
				continue
			}
			cx, cy := ev.Position()
			if x, y, ok := term.TranslateMouse(cx, cy); ok {
				eng.OnTouch(int16(x), int16(y))
				if cues != nil {
					cues.Touch()
				}
			}
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
