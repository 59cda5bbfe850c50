package align

import (
	"log/slog"
	"math"

	"syncline/internal/dsp"
	"syncline/internal/features"
	"syncline/internal/logging"
	"syncline/internal/services"
)

// Confidence blends three normalized factors with fixed weights, then an
// ambiguity gate collapses the score when a rival peak approaches the
// primary: whatever the raw correlation says, the lag choice is a guess.
const (
	weightStrength   = 0.5
	weightSharpness  = 0.3
	weightSeparation = 0.2

	// A floor at or below a fifth of the peak counts as fully sharp; a
	// secondary at or below half the peak counts as fully separated.
	sharpnessGain  = 1.25
	separationGain = 2.0

	// ambiguityKnee is the secondary/primary ratio where the gate starts
	// closing; at ratio 1 it reaches zero.
	ambiguityKnee = 0.75
)

// Engine runs cross-correlation alignment between feature sequences.
type Engine struct {
	logger *slog.Logger
}

// NewEngine constructs an alignment engine. A nil logger is replaced with a
// no-op logger.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logging.NewComponentLogger(logger, "aligner")}
}

// Align correlates target features against reference features and scores
// the best offset. check, when non-nil, is called at defined points inside
// the lag search and drift segments so cancellation and timeouts are
// observed.
func (e *Engine) Align(ref, tgt *features.Sequence, cfg Config, check func() error) (*Result, error) {
	if err := validatePair(ref, tgt); err != nil {
		return nil, err
	}

	centeredRef, refVariance := center(ref.Frames)
	centeredTgt, tgtVariance := center(tgt.Frames)
	if refVariance < degenerateVariance || tgtVariance < degenerateVariance {
		// Constant signals carry nothing to align; report zero confidence
		// rather than a fabricated peak.
		result := newResult(0, ref.SampleRate, ref.Method.String())
		result.NoiseFloorDB = dsp.AmplitudeToDB(0)
		return result, nil
	}

	curve, err := correlate(centeredRef, centeredTgt, maxLagFrames(cfg, ref.HopSize), check)
	if err != nil {
		return nil, err
	}

	result := e.scoreCurve(curve, ref, cfg)

	if cfg.DriftCorrection {
		globalLag := float64(result.OffsetSamples) / float64(ref.HopSize)
		drift, err := e.detectDrift(centeredRef, centeredTgt, ref, globalLag, check)
		if err != nil {
			return nil, err
		}
		result.Drift = drift
		if drift != nil && drift.Detected && drift.CorrectionApplied {
			midpoint := ref.FrameTime(ref.Len() / 2)
			corrected := drift.OffsetAt(midpoint)
			result.OffsetSamples = corrected
			result.OffsetSeconds = float64(corrected) / ref.SampleRate
			result.OffsetMilliseconds = result.OffsetSeconds * 1000
		}
	}

	e.logger.Debug("alignment complete",
		logging.String(logging.FieldMethod, result.Method),
		logging.Int64("offset_samples", result.OffsetSamples),
		logging.Float64("confidence", result.Confidence),
		logging.Float64("peak_correlation", result.PeakCorrelation),
	)
	return result, nil
}

// AlignHybrid runs every supplied method and returns the highest-confidence
// result, tagged with the method that produced it. At least one method must
// succeed; the last failure is surfaced when none do.
func (e *Engine) AlignHybrid(refs, tgts map[features.Method]*features.Sequence, cfg Config, check func() error) (*Result, error) {
	var best *Result
	var lastErr error
	for _, method := range features.ConcreteMethods {
		ref, okRef := refs[method]
		tgt, okTgt := tgts[method]
		if !okRef || !okTgt {
			continue
		}
		result, err := e.Align(ref, tgt, cfg, check)
		if err != nil {
			if services.CodeFor(err) == services.CodeCancelled {
				return nil, err
			}
			lastErr = err
			continue
		}
		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
	}
	if best == nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, services.Wrap(services.ErrProcessingFailed, "aligning", "hybrid", "no method produced a result", nil)
	}
	return best, nil
}

func (e *Engine) scoreCurve(curve *correlationCurve, ref *features.Sequence, cfg Config) *Result {
	peakIdx, peakValue, secondary := peakPick(curve)
	fractionalLag := refineLag(curve, peakIdx)
	offsetSamples := int64(math.Round(fractionalLag * float64(ref.HopSize)))

	result := newResult(offsetSamples, ref.SampleRate, ref.Method.String())
	result.PeakCorrelation = peakValue

	noise := curveNoise(curve)
	result.NoiseFloorDB = dsp.AmplitudeToDB(noise)

	if peakValue <= 0 {
		// Nothing correlates anywhere; there is no peak to trust.
		return result
	}

	if secondary > 0 {
		result.SecondaryPeakRatio = peakValue / secondary
	}
	if noise > 0 {
		result.SNREstimate = 20 * math.Log10(peakValue/noise)
	}

	floorRatio := dsp.Clamp01(noise / peakValue)
	secondaryRatio := dsp.Clamp01(secondary / peakValue)

	strength := dsp.Clamp01(peakValue)
	sharpness := dsp.Clamp01((1 - floorRatio) * sharpnessGain)
	separation := dsp.Clamp01((1 - secondaryRatio) * separationGain)

	blend := weightStrength*strength + weightSharpness*sharpness + weightSeparation*separation
	gate := 1.0
	if secondaryRatio > ambiguityKnee {
		gate = (1 - secondaryRatio) / (1 - ambiguityKnee)
	}
	result.Confidence = dsp.Clamp01(blend * gate)
	return result
}

func validatePair(ref, tgt *features.Sequence) error {
	if ref == nil || tgt == nil || ref.Len() == 0 || tgt.Len() == 0 {
		return services.Wrap(services.ErrInvalidInput, "aligning", "features", "empty feature sequence", nil)
	}
	if ref.Dim() != tgt.Dim() {
		return services.Wrap(services.ErrInvalidInput, "aligning", "features", "feature dimensions differ", nil)
	}
	if ref.SampleRate != tgt.SampleRate {
		return services.Wrap(services.ErrInvalidInput, "aligning", "features", "sample rates differ", nil)
	}
	if ref.HopSize != tgt.HopSize {
		return services.Wrap(services.ErrInvalidInput, "aligning", "features", "hop sizes differ", nil)
	}
	if ref.Len() < minOverlapFrames || tgt.Len() < minOverlapFrames {
		return services.Wrap(services.ErrInsufficientData, "aligning", "features", "too few frames to correlate", nil)
	}
	return nil
}
