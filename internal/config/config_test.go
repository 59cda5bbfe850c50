package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"syncline/internal/align"
	"syncline/internal/config"
	"syncline/internal/features"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("missing file reported as existing")
	}
	if resolved == "" {
		t.Fatal("resolved path empty")
	}
	if cfg.Engine.Method != "hybrid" {
		t.Fatalf("default method = %q", cfg.Engine.Method)
	}
	if cfg.Batch.MaxConcurrent != 4 {
		t.Fatalf("default max_concurrent = %d", cfg.Batch.MaxConcurrent)
	}
	if !cfg.Stats.Enabled {
		t.Fatal("stats should default to enabled")
	}
	if !filepath.IsAbs(cfg.Paths.StatsDir) {
		t.Fatalf("stats dir not expanded: %q", cfg.Paths.StatsDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[engine]
method = "  ENERGY  "
preset = "Multicam"
timeout_seconds = 60

[logging]
format = "JSON"
level = "DEBUG"
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("file should exist")
	}
	if cfg.Engine.Method != "energy" {
		t.Fatalf("method not normalized: %q", cfg.Engine.Method)
	}
	if cfg.Engine.Preset != "multicam" {
		t.Fatalf("preset not normalized: %q", cfg.Engine.Preset)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		errPart string
	}{
		{"bad method", "[engine]\nmethod = \"wavelet\"\n", "engine.method"},
		{"bad preset", "[engine]\npreset = \"cinema\"\n", "engine.preset"},
		{"threshold range", "[engine]\nconfidence_threshold = 1.5\n", "confidence_threshold"},
		{"negative offset", "[engine]\nmax_offset_samples = -1\n", "max_offset_samples"},
		{"window range", "[engine]\nwindow_size = 64\n", "window_size"},
		{"hop above window", "[engine]\nwindow_size = 1024\nhop_size = 2048\n", "hop_size"},
		{"gate range", "[engine]\nnoise_gate_db = -300.0\n", "noise_gate_db"},
		{"batch range", "[batch]\nmax_concurrent = 100\n", "max_concurrent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errPart) {
				t.Fatalf("error %q does not mention %q", err, tc.errPart)
			}
		})
	}
}

func TestAlignConfigPresetAndOverrides(t *testing.T) {
	path := writeConfig(t, `
[engine]
preset = "multicam"
confidence_threshold = 0.8
hop_size = 256
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ac := cfg.AlignConfig()
	preset, _ := align.PresetByName("multicam")
	if ac.WindowSize != preset.Config.WindowSize {
		t.Fatalf("window = %d, want preset %d", ac.WindowSize, preset.Config.WindowSize)
	}
	if !ac.DriftCorrection {
		t.Fatal("multicam preset enables drift correction")
	}
	if ac.ConfidenceThreshold != 0.8 {
		t.Fatalf("explicit threshold not applied: %v", ac.ConfidenceThreshold)
	}
	if ac.HopSize != 256 {
		t.Fatalf("explicit hop not applied: %d", ac.HopSize)
	}
}

func TestMethodResolution(t *testing.T) {
	cfg := config.Default()
	if cfg.Method() != features.MethodHybrid {
		t.Fatalf("default method = %s", cfg.Method())
	}
	cfg.Engine.Method = "spectral_flux"
	if cfg.Method() != features.MethodSpectralFlux {
		t.Fatalf("method = %s", cfg.Method())
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StatsDir = filepath.Join(base, "stats")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StatsDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s not created: %v", dir, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("sample not found after create")
	}
	if cfg.Engine.Method != "hybrid" {
		t.Fatalf("sample method = %q", cfg.Engine.Method)
	}
}
