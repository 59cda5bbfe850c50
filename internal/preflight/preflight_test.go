package preflight_test

import (
	"errors"
	"path/filepath"
	"testing"

	"syncline/internal/align"
	"syncline/internal/features"
	"syncline/internal/preflight"
	"syncline/internal/services"
	"syncline/internal/testsupport"
)

const testRate = 44100.0

func TestAnalyzeAudioQualityCleanTone(t *testing.T) {
	buf := testsupport.Tone(440, testRate, 3, 0.5)
	report := preflight.AnalyzeAudioQuality(buf, -40)

	if report.SampleCount != buf.Len() {
		t.Fatalf("sample count = %d, want %d", report.SampleCount, buf.Len())
	}
	if report.DurationSeconds < 2.9 || report.DurationSeconds > 3.1 {
		t.Fatalf("duration = %v, want ~3s", report.DurationSeconds)
	}
	if !report.SufficientContent {
		t.Fatal("clean tone should have sufficient content")
	}
	if report.ExcessiveClipping {
		t.Fatal("half-scale tone should not clip")
	}
	if report.PeakLevel < 0.45 || report.PeakLevel > 0.55 {
		t.Fatalf("peak = %v, want ~0.5", report.PeakLevel)
	}
	// Sinusoid RMS is amplitude / sqrt(2).
	if report.RMSLevel < 0.3 || report.RMSLevel > 0.4 {
		t.Fatalf("rms = %v, want ~0.354", report.RMSLevel)
	}
	// Pure 440 Hz content centers near the fundamental.
	if report.SpectralCentroid < 300 || report.SpectralCentroid > 900 {
		t.Fatalf("centroid = %v Hz, want near 440", report.SpectralCentroid)
	}
	// A steady tone has no transients, so its dynamic range is near zero.
	if report.GoodDynamicRange {
		t.Fatalf("steady tone reported good dynamic range (%v dB)", report.DynamicRangeDB)
	}
}

func TestAnalyzeAudioQualityTransientMaterial(t *testing.T) {
	report := preflight.AnalyzeAudioQuality(testsupport.ClickTrack(3, testRate, 4), -40)
	if !report.SufficientContent {
		t.Fatal("click track should have sufficient content")
	}
	if !report.GoodDynamicRange {
		t.Fatalf("click track dynamic range = %v dB, want >= 20", report.DynamicRangeDB)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", report.Warnings)
	}
}

func TestAnalyzeAudioQualitySilence(t *testing.T) {
	report := preflight.AnalyzeAudioQuality(testsupport.Silence(testRate, 3), -40)
	if report.SufficientContent {
		t.Fatal("silence should not count as sufficient content")
	}
	if report.SilenceRatio != 1 {
		t.Fatalf("silence ratio = %v, want 1", report.SilenceRatio)
	}
	if len(report.Warnings) == 0 || len(report.Recommendations) == 0 {
		t.Fatal("silence should produce warnings and recommendations")
	}
}

func TestAnalyzeAudioQualityClipping(t *testing.T) {
	report := preflight.AnalyzeAudioQuality(testsupport.Clipped(440, testRate, 3), -40)
	if !report.ExcessiveClipping {
		t.Fatalf("hard-limited tone should flag clipping, ratio = %v", report.ClippingRatio)
	}
	if report.ClippingRatio <= 0.01 {
		t.Fatalf("clipping ratio = %v, want > 0.01", report.ClippingRatio)
	}
}

func TestAnalyzeAudioQualityEmptyBufferNeverFails(t *testing.T) {
	report := preflight.AnalyzeAudioQuality(testsupport.Silence(testRate, 0), -40)
	if report.SampleCount != 0 {
		t.Fatalf("sample count = %d, want 0", report.SampleCount)
	}
	if len(report.Warnings) == 0 {
		t.Fatal("empty buffer should warn")
	}
}

func TestValidateConfigurationClampsAndIsIdempotent(t *testing.T) {
	cases := []struct {
		name string
		cfg  align.Config
	}{
		{"hop above window", align.Config{ConfidenceThreshold: 0.5, WindowSize: 1024, HopSize: 4096, NoiseGateDB: -40}},
		{"threshold above one", align.Config{ConfidenceThreshold: 3, WindowSize: 1024, HopSize: 256, NoiseGateDB: -40}},
		{"threshold negative", align.Config{ConfidenceThreshold: -0.2, WindowSize: 1024, HopSize: 256, NoiseGateDB: -40}},
		{"window too small", align.Config{ConfidenceThreshold: 0.5, WindowSize: 16, HopSize: 8, NoiseGateDB: -40}},
		{"window too large", align.Config{ConfidenceThreshold: 0.5, WindowSize: 1 << 20, HopSize: 256, NoiseGateDB: -40}},
		{"gate out of range", align.Config{ConfidenceThreshold: 0.5, WindowSize: 1024, HopSize: 256, NoiseGateDB: -500}},
		{"gate positive", align.Config{ConfidenceThreshold: 0.5, WindowSize: 1024, HopSize: 256, NoiseGateDB: 6}},
		{"negative max offset", align.Config{ConfidenceThreshold: 0.5, MaxOffsetSamples: -10, WindowSize: 1024, HopSize: 256, NoiseGateDB: -40}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := preflight.ValidateConfiguration(tc.cfg)
			if report.Valid {
				t.Fatal("expected validation errors")
			}
			if len(report.Errors) == 0 {
				t.Fatal("invalid config must report errors")
			}
			corrected := report.Corrected
			if corrected.HopSize > corrected.WindowSize {
				t.Fatalf("corrected config still violates hop <= window: %+v", corrected)
			}
			again := preflight.ValidateConfiguration(corrected)
			if !again.Valid || len(again.Errors) != 0 {
				t.Fatalf("correction is not idempotent: %v", again.Errors)
			}
			if again.Corrected != corrected {
				t.Fatalf("second pass changed the config: %+v vs %+v", again.Corrected, corrected)
			}
		})
	}
}

func TestValidateConfigurationAcceptsDefaults(t *testing.T) {
	report := preflight.ValidateConfiguration(align.DefaultConfig())
	if !report.Valid || len(report.Errors) != 0 {
		t.Fatalf("default config should validate cleanly: %v", report.Errors)
	}
	if report.Corrected != align.DefaultConfig() {
		t.Fatal("default config should pass through unchanged")
	}
}

func TestValidateSyncRequest(t *testing.T) {
	good := testsupport.ClickTrack(1, testRate, 5)
	cfg := align.DefaultConfig()

	cases := []struct {
		name    string
		mutate  func() error
		wantErr error
	}{
		{
			name: "valid pair",
			mutate: func() error {
				return preflight.ValidateSyncRequest(good, good, features.MethodEnergy, cfg)
			},
			wantErr: nil,
		},
		{
			name: "empty reference",
			mutate: func() error {
				return preflight.ValidateSyncRequest(testsupport.Silence(testRate, 0), good, features.MethodEnergy, cfg)
			},
			wantErr: services.ErrInvalidInput,
		},
		{
			name: "rate below minimum",
			mutate: func() error {
				bad := good
				bad.SampleRate = 4000
				return preflight.ValidateSyncRequest(bad, good, features.MethodEnergy, cfg)
			},
			wantErr: services.ErrInvalidInput,
		},
		{
			name: "mismatched rates",
			mutate: func() error {
				other := testsupport.ClickTrack(1, 48000, 5)
				return preflight.ValidateSyncRequest(good, other, features.MethodEnergy, cfg)
			},
			wantErr: services.ErrInvalidInput,
		},
		{
			name: "too short for method",
			mutate: func() error {
				short := testsupport.ClickTrack(1, testRate, 0.3)
				return preflight.ValidateSyncRequest(short, short, features.MethodMFCC, cfg)
			},
			wantErr: services.ErrInsufficientData,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mutate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("Stats directory", dir)
	if !result.Passed {
		t.Fatalf("temp dir should pass: %s", result.Detail)
	}

	missing := preflight.CheckDirectoryAccess("Stats directory", filepath.Join(dir, "absent"))
	if missing.Passed {
		t.Fatal("missing directory should fail")
	}
}
