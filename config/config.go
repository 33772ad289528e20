// Package config provides application configuration loading for the
// companion frontend. Engine tunables pushed over the wire go through
// the engine's ParseConfig instead; this covers the host-side knobs.
package config

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the frontend configuration.
type Config struct {
	Display   DisplayConfig   `yaml:"display"`
	Engine    EngineConfig    `yaml:"engine"`
	Audio     AudioConfig     `yaml:"audio"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DisplayConfig selects and shapes the output surface.
type DisplayConfig struct {
	// Mode is "terminal" or "headless".
	Mode       string `yaml:"mode"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Brightness int    `yaml:"brightness"`
	TargetFPS  int    `yaml:"target_fps"`
}

// EngineConfig seeds the simulation.
type EngineConfig struct {
	Seed          uint64 `yaml:"seed"`
	ParticleCount int    `yaml:"particle_count"`
	Unbuffered    bool   `yaml:"unbuffered"`
}

// AudioConfig toggles the cue player.
type AudioConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TelemetryConfig controls frame-sample capture.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing embedded defaults")
	}
	cfg.clamp()
	return &cfg, nil
}

// Load reads a YAML config file over the embedded defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	cfg.clamp()
	return cfg, nil
}

// clamp forces out-of-range values back to usable ones instead of
// rejecting the file.
func (c *Config) clamp() {
	if c.Display.Mode != "terminal" && c.Display.Mode != "headless" {
		c.Display.Mode = "terminal"
	}
	if c.Display.Width < 32 {
		c.Display.Width = 32
	}
	if c.Display.Width > 1024 {
		c.Display.Width = 1024
	}
	if c.Display.Height < 32 {
		c.Display.Height = 32
	}
	if c.Display.Height > 1024 {
		c.Display.Height = 1024
	}
	// The terminal renderer packs two pixels per cell.
	if c.Display.Height%2 != 0 {
		c.Display.Height++
	}
	if c.Display.Brightness < 0 {
		c.Display.Brightness = 0
	}
	if c.Display.Brightness > 255 {
		c.Display.Brightness = 255
	}
	if c.Display.TargetFPS < 1 {
		c.Display.TargetFPS = 1
	}
	if c.Display.TargetFPS > 120 {
		c.Display.TargetFPS = 120
	}
	if c.Engine.ParticleCount < 50 {
		c.Engine.ParticleCount = 50
	}
	if c.Engine.ParticleCount > 400 {
		c.Engine.ParticleCount = 400
	}
}
