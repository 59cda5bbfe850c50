package align

import (
	"fmt"
	"sort"
	"strings"
)

// Preset names a documented use-case configuration.
type Preset struct {
	Name        string
	Description string
	Config      Config
}

// presets are tuned per use case: window/hop trade temporal resolution
// against spectral stability, thresholds reflect how forgiving each
// scenario can afford to be.
var presets = map[string]Preset{
	"music": {
		Name:        "music",
		Description: "Dense harmonic content; larger windows for stable chroma",
		Config: Config{
			ConfidenceThreshold: 0.6,
			MaxOffsetSamples:    0,
			WindowSize:          4096,
			HopSize:             1024,
			NoiseGateDB:         -45,
			DriftCorrection:     false,
		},
	},
	"speech": {
		Name:        "speech",
		Description: "Dialogue recordings; tight windows to catch plosive onsets",
		Config: Config{
			ConfidenceThreshold: 0.55,
			MaxOffsetSamples:    0,
			WindowSize:          1024,
			HopSize:             256,
			NoiseGateDB:         -35,
			DriftCorrection:     false,
		},
	},
	"ambient": {
		Name:        "ambient",
		Description: "Sparse environmental audio; relaxed gate and threshold",
		Config: Config{
			ConfidenceThreshold: 0.4,
			MaxOffsetSamples:    0,
			WindowSize:          8192,
			HopSize:             2048,
			NoiseGateDB:         -60,
			DriftCorrection:     false,
		},
	},
	"multicam": {
		Name:        "multicam",
		Description: "Camera microphones against a field recorder; drift correction on",
		Config: Config{
			ConfidenceThreshold: 0.5,
			MaxOffsetSamples:    0,
			WindowSize:          2048,
			HopSize:             512,
			NoiseGateDB:         -40,
			DriftCorrection:     true,
		},
	},
	"broadcast": {
		Name:        "broadcast",
		Description: "Clean studio feeds; strict threshold, narrow search",
		Config: Config{
			ConfidenceThreshold: 0.7,
			MaxOffsetSamples:    480000,
			WindowSize:          2048,
			HopSize:             512,
			NoiseGateDB:         -50,
			DriftCorrection:     false,
		},
	},
}

// PresetByName resolves a preset.
func PresetByName(name string) (Preset, error) {
	preset, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q", name)
	}
	return preset, nil
}

// Presets returns every preset sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, preset := range presets {
		out = append(out, preset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
