package features

import (
	"fmt"
	"strings"
)

// Method identifies a feature-extraction / alignment strategy.
type Method int

const (
	MethodSpectralFlux Method = iota
	MethodChroma
	MethodEnergy
	MethodMFCC
	MethodHybrid
)

// ConcreteMethods lists every method that produces a feature sequence, in
// the order the hybrid strategy evaluates them.
var ConcreteMethods = []Method{MethodSpectralFlux, MethodChroma, MethodEnergy, MethodMFCC}

// Minimum audio length per method, in seconds. Energy correlation tolerates
// the least material; chroma needs enough harmonic context to be stable and
// hybrid inherits the strictest requirement.
const (
	minSecondsEnergy       = 0.5
	minSecondsSpectralFlux = 1.0
	minSecondsMFCC         = 2.0
	minSecondsChroma       = 4.0
)

func (m Method) String() string {
	switch m {
	case MethodSpectralFlux:
		return "spectral_flux"
	case MethodChroma:
		return "chroma"
	case MethodEnergy:
		return "energy"
	case MethodMFCC:
		return "mfcc"
	case MethodHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod resolves a method from its string form. It accepts the
// canonical snake_case names plus a few common spellings.
func ParseMethod(value string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "spectral_flux", "spectralflux", "flux", "onset":
		return MethodSpectralFlux, nil
	case "chroma":
		return MethodChroma, nil
	case "energy", "rms":
		return MethodEnergy, nil
	case "mfcc", "cepstral":
		return MethodMFCC, nil
	case "hybrid", "auto":
		return MethodHybrid, nil
	default:
		return MethodHybrid, fmt.Errorf("unknown alignment method %q", value)
	}
}

// MinSeconds returns the minimum audio length the method needs.
func (m Method) MinSeconds() float64 {
	switch m {
	case MethodEnergy:
		return minSecondsEnergy
	case MethodSpectralFlux:
		return minSecondsSpectralFlux
	case MethodMFCC:
		return minSecondsMFCC
	case MethodChroma, MethodHybrid:
		return minSecondsChroma
	default:
		return minSecondsChroma
	}
}

// MinSamples returns the minimum sample count the method needs at the given
// rate.
func (m Method) MinSamples(sampleRate float64) int {
	if sampleRate <= 0 {
		return 0
	}
	return int(m.MinSeconds() * sampleRate)
}

// Dim returns the per-frame vector size the method produces. Hybrid has no
// shape of its own and reports 0.
func (m Method) Dim() int {
	switch m {
	case MethodSpectralFlux, MethodEnergy:
		return 1
	case MethodChroma:
		return chromaBins
	case MethodMFCC:
		return mfccCoefficients
	default:
		return 0
	}
}
