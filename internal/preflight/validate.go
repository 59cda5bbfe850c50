package preflight

import (
	"fmt"

	"syncline/internal/align"
	"syncline/internal/audio"
	"syncline/internal/features"
	"syncline/internal/services"
)

// ConfigReport carries the outcome of configuration validation. Corrected
// always holds a usable configuration; Errors lists the violations that
// were found before correction, Warnings the softer advisories.
type ConfigReport struct {
	Valid     bool
	Errors    []string
	Warnings  []string
	Corrected align.Config
}

// ValidateConfiguration checks every field of the alignment configuration
// against its documented range. Out-of-range fields are clamped to the
// nearest valid bound and reported; validating an already-corrected
// configuration reports no errors.
func ValidateConfiguration(cfg align.Config) ConfigReport {
	report := ConfigReport{Corrected: cfg}
	c := &report.Corrected

	if c.ConfidenceThreshold < 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("confidence threshold %.3f below 0, clamped", c.ConfidenceThreshold))
		c.ConfidenceThreshold = 0
	} else if c.ConfidenceThreshold > 1 {
		report.Errors = append(report.Errors, fmt.Sprintf("confidence threshold %.3f above 1, clamped", c.ConfidenceThreshold))
		c.ConfidenceThreshold = 1
	}

	if c.MaxOffsetSamples < 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("max offset %d negative, set to unbounded", c.MaxOffsetSamples))
		c.MaxOffsetSamples = 0
	}

	if c.WindowSize < align.MinWindowSize {
		report.Errors = append(report.Errors, fmt.Sprintf("window size %d below %d, clamped", c.WindowSize, align.MinWindowSize))
		c.WindowSize = align.MinWindowSize
	} else if c.WindowSize > align.MaxWindowSize {
		report.Errors = append(report.Errors, fmt.Sprintf("window size %d above %d, clamped", c.WindowSize, align.MaxWindowSize))
		c.WindowSize = align.MaxWindowSize
	}

	if c.HopSize < align.MinHopSize {
		report.Errors = append(report.Errors, fmt.Sprintf("hop size %d below %d, clamped", c.HopSize, align.MinHopSize))
		c.HopSize = align.MinHopSize
	}
	if c.HopSize > c.WindowSize {
		report.Errors = append(report.Errors, fmt.Sprintf("hop size %d exceeds window size %d, clamped", c.HopSize, c.WindowSize))
		c.HopSize = c.WindowSize
	}

	if c.NoiseGateDB < align.MinNoiseGate {
		report.Errors = append(report.Errors, fmt.Sprintf("noise gate %.1f dB below %.0f, clamped", c.NoiseGateDB, align.MinNoiseGate))
		c.NoiseGateDB = align.MinNoiseGate
	} else if c.NoiseGateDB > align.MaxNoiseGate {
		report.Errors = append(report.Errors, fmt.Sprintf("noise gate %.1f dB above %.0f, clamped", c.NoiseGateDB, align.MaxNoiseGate))
		c.NoiseGateDB = align.MaxNoiseGate
	}

	if c.ConfidenceThreshold > 0.9 {
		report.Warnings = append(report.Warnings, "confidence threshold above 0.9 will reject most real-world material")
	}
	if c.HopSize < c.WindowSize/8 {
		report.Warnings = append(report.Warnings, "hop size below an eighth of the window trades speed for little extra precision")
	}

	report.Valid = len(report.Errors) == 0
	return report
}

// ValidateSyncRequest enforces the hard preconditions for an alignment
// request: non-empty buffers within the supported sample-count and rate
// ranges, matching rates, and enough material for the requested method.
// Soft quality problems never fail here; they surface in the quality
// report instead.
func ValidateSyncRequest(reference, target audio.Buffer, method features.Method, cfg align.Config) error {
	if err := validateBuffer("reference", reference); err != nil {
		return err
	}
	if err := validateBuffer("target", target); err != nil {
		return err
	}
	if reference.SampleRate != target.SampleRate {
		return services.Wrap(services.ErrInvalidInput, "preflight", "validate request",
			fmt.Sprintf("sample rates differ (reference %.0f Hz, target %.0f Hz)", reference.SampleRate, target.SampleRate), nil)
	}

	need := method.MinSamples(reference.SampleRate)
	if reference.Len() < need || target.Len() < need {
		return services.Wrap(services.ErrInsufficientData, "preflight", "validate request",
			fmt.Sprintf("method %s needs at least %d samples at %.0f Hz", method, need, reference.SampleRate), nil)
	}
	if cfg.WindowSize > reference.Len() || cfg.WindowSize > target.Len() {
		return services.Wrap(services.ErrInsufficientData, "preflight", "validate request",
			fmt.Sprintf("window size %d exceeds the audio length", cfg.WindowSize), nil)
	}
	return nil
}

func validateBuffer(name string, buf audio.Buffer) error {
	if buf.Empty() {
		return services.Wrap(services.ErrInvalidInput, "preflight", "validate request",
			name+" buffer is empty", nil)
	}
	if !buf.RateValid() {
		return services.Wrap(services.ErrInvalidInput, "preflight", "validate request",
			fmt.Sprintf("%s sample rate %.0f Hz outside [%.0f, %.0f]", name, buf.SampleRate, audio.MinSampleRate, audio.MaxSampleRate), nil)
	}
	if buf.Len() < audio.MinSamples {
		return services.Wrap(services.ErrInsufficientData, "preflight", "validate request",
			fmt.Sprintf("%s holds %d samples, minimum is %d", name, buf.Len(), audio.MinSamples), nil)
	}
	if buf.Len() > audio.MaxSamples {
		return services.Wrap(services.ErrInvalidInput, "preflight", "validate request",
			fmt.Sprintf("%s holds %d samples, maximum is %d", name, buf.Len(), audio.MaxSamples), nil)
	}
	return nil
}
