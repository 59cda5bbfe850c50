package config

import (
	"errors"
	"fmt"

	"syncline/internal/align"
	"syncline/internal/features"
)

// Validate ensures the configuration is usable. Hard errors only; range
// clamping of per-request overrides happens in the preflight validator.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	if _, err := features.ParseMethod(c.Engine.Method); err != nil {
		return fmt.Errorf("engine.method: %w", err)
	}
	if c.Engine.Preset != "" {
		if _, err := align.PresetByName(c.Engine.Preset); err != nil {
			return fmt.Errorf("engine.preset: %w", err)
		}
	}
	if c.Engine.ConfidenceThreshold < 0 || c.Engine.ConfidenceThreshold > 1 {
		return errors.New("engine.confidence_threshold must be between 0 and 1")
	}
	if c.Engine.MaxOffsetSamples < 0 {
		return errors.New("engine.max_offset_samples must be >= 0")
	}
	if c.Engine.WindowSize != 0 && (c.Engine.WindowSize < align.MinWindowSize || c.Engine.WindowSize > align.MaxWindowSize) {
		return fmt.Errorf("engine.window_size must be between %d and %d", align.MinWindowSize, align.MaxWindowSize)
	}
	if c.Engine.HopSize != 0 && c.Engine.HopSize < align.MinHopSize {
		return fmt.Errorf("engine.hop_size must be at least %d", align.MinHopSize)
	}
	if c.Engine.WindowSize != 0 && c.Engine.HopSize > c.Engine.WindowSize {
		return errors.New("engine.hop_size must not exceed engine.window_size")
	}
	if c.Engine.NoiseGateDB < align.MinNoiseGate || c.Engine.NoiseGateDB > align.MaxNoiseGate {
		return fmt.Errorf("engine.noise_gate_db must be between %.0f and %.0f", align.MinNoiseGate, align.MaxNoiseGate)
	}
	if c.Engine.TimeoutSeconds <= 0 {
		return errors.New("engine.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.MaxConcurrent < 1 {
		return errors.New("batch.max_concurrent must be >= 1")
	}
	if c.Batch.MaxConcurrent > 64 {
		return errors.New("batch.max_concurrent must be <= 64")
	}
	return nil
}
