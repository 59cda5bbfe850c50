package align

// Config carries the per-request alignment parameters. Every request owns
// its own value; nothing here is global.
type Config struct {
	// ConfidenceThreshold is the minimum confidence the caller will accept,
	// in [0,1]. The engine reports confidence regardless; the orchestrator
	// uses the threshold to decide whether to degrade and retry.
	ConfidenceThreshold float64

	// MaxOffsetSamples bounds the correlation search. 0 means unbounded
	// (every lag the overlap allows).
	MaxOffsetSamples int64

	// WindowSize and HopSize control feature framing. HopSize must not
	// exceed WindowSize.
	WindowSize int
	HopSize    int

	// NoiseGateDB is the silence threshold in dBFS, in [-120, 0].
	NoiseGateDB float64

	// DriftCorrection enables per-segment drift detection and, when drift
	// is found, keyframe-interpolated offset correction.
	DriftCorrection bool
}

// Config bounds used by validation and auto-correction.
const (
	MinWindowSize = 256
	MaxWindowSize = 65536
	MinHopSize    = 64
	MinNoiseGate  = -120.0
	MaxNoiseGate  = 0.0
)

// DefaultConfig returns the general-purpose configuration.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.5,
		MaxOffsetSamples:    0,
		WindowSize:          1024,
		HopSize:             256,
		NoiseGateDB:         -40,
		DriftCorrection:     false,
	}
}
