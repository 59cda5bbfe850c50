package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"syncline/internal/align"
	"syncline/internal/features"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StatsDir string `toml:"stats_dir"`
	LogDir   string `toml:"log_dir"`
}

// Engine contains the default alignment parameters. A preset, when
// named, supplies the base values; explicit fields override it.
type Engine struct {
	Preset              string  `toml:"preset"`
	Method              string  `toml:"method"`
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	MaxOffsetSamples    int64   `toml:"max_offset_samples"`
	WindowSize          int     `toml:"window_size"`
	HopSize             int     `toml:"hop_size"`
	NoiseGateDB         float64 `toml:"noise_gate_db"`
	DriftCorrection     bool    `toml:"drift_correction"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
}

// Batch contains settings for multi-target requests.
type Batch struct {
	MaxConcurrent int `toml:"max_concurrent"`
}

// Stats contains settings for the processing-statistics journal.
type Stats struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values.
//
// Sections by subsystem:
//   - Paths: stats and log directories
//   - Engine: default alignment method and parameters
//   - Batch: concurrency for multi-target requests
//   - Stats: processing-statistics journal
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Engine  Engine  `toml:"engine"`
	Batch   Batch   `toml:"batch"`
	Stats   Stats   `toml:"stats"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/syncline/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("syncline.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the engine writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StatsDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// AlignConfig resolves the engine section to an alignment configuration:
// preset first, explicit fields on top.
func (c *Config) AlignConfig() align.Config {
	out := align.DefaultConfig()
	if name := strings.TrimSpace(c.Engine.Preset); name != "" {
		if preset, err := align.PresetByName(name); err == nil {
			out = preset.Config
		}
	}
	if c.Engine.ConfidenceThreshold != 0 {
		out.ConfidenceThreshold = c.Engine.ConfidenceThreshold
	}
	if c.Engine.MaxOffsetSamples != 0 {
		out.MaxOffsetSamples = c.Engine.MaxOffsetSamples
	}
	if c.Engine.WindowSize != 0 {
		out.WindowSize = c.Engine.WindowSize
	}
	if c.Engine.HopSize != 0 {
		out.HopSize = c.Engine.HopSize
	}
	if c.Engine.NoiseGateDB != 0 {
		out.NoiseGateDB = c.Engine.NoiseGateDB
	}
	if c.Engine.DriftCorrection {
		out.DriftCorrection = true
	}
	return out
}

// Method resolves the configured default feature method.
func (c *Config) Method() features.Method {
	method, err := features.ParseMethod(c.Engine.Method)
	if err != nil {
		return features.MethodHybrid
	}
	return method
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
