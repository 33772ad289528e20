package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cfg.Display.Mode != "terminal" {
		t.Errorf("default mode should be terminal, got %q", cfg.Display.Mode)
	}
	if cfg.Display.Width != 240 || cfg.Display.Height != 240 {
		t.Errorf("default size should be 240x240, got %dx%d", cfg.Display.Width, cfg.Display.Height)
	}
	if cfg.Engine.ParticleCount != 300 {
		t.Errorf("default particle count should be 300, got %d", cfg.Engine.ParticleCount)
	}
	if cfg.Display.TargetFPS != 30 {
		t.Errorf("default fps should be 30, got %d", cfg.Display.TargetFPS)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "display:\n  mode: headless\n  target_fps: 60\nengine:\n  particle_count: 120\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Display.Mode != "headless" {
		t.Errorf("mode override lost, got %q", cfg.Display.Mode)
	}
	if cfg.Display.TargetFPS != 60 {
		t.Errorf("fps override lost, got %d", cfg.Display.TargetFPS)
	}
	if cfg.Engine.ParticleCount != 120 {
		t.Errorf("count override lost, got %d", cfg.Engine.ParticleCount)
	}
	// Untouched fields keep defaults.
	if cfg.Display.Width != 240 {
		t.Errorf("width should keep default, got %d", cfg.Display.Width)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Display.Width != 240 {
		t.Errorf("empty path should return defaults, got width %d", cfg.Display.Width)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestClamping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "display:\n  mode: hologram\n  width: 9999\n  height: 33\n  target_fps: 0\nengine:\n  particle_count: 5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Display.Mode != "terminal" {
		t.Errorf("unknown mode should clamp to terminal, got %q", cfg.Display.Mode)
	}
	if cfg.Display.Width != 1024 {
		t.Errorf("width should clamp to 1024, got %d", cfg.Display.Width)
	}
	if cfg.Display.Height != 34 {
		t.Errorf("odd height should round up to even, got %d", cfg.Display.Height)
	}
	if cfg.Display.TargetFPS != 1 {
		t.Errorf("fps should clamp to 1, got %d", cfg.Display.TargetFPS)
	}
	if cfg.Engine.ParticleCount != 50 {
		t.Errorf("count should clamp to 50, got %d", cfg.Engine.ParticleCount)
	}
}
