package align

import (
	"math"

	"syncline/internal/dsp"
	"syncline/internal/features"
	"syncline/internal/logging"
)

const (
	// driftSegments is how many contiguous reference slices get their own
	// local offset estimate.
	driftSegments = 4

	// driftMinSegmentFrames is the smallest slice still worth correlating.
	driftMinSegmentFrames = 48

	// driftSearchFrames bounds each segment's search to a window around
	// where the global offset predicts the segment lands. Plausible clock
	// skew moves a segment only a few frames; an open search locks onto
	// unrelated content instead.
	driftSearchFrames = 16

	// driftTolerancePPM is the slope beyond which the clocks are considered
	// divergent. Consumer recorder crystals sit in the tens of ppm.
	driftTolerancePPM = 5.0

	// driftMinPeak discards segment estimates whose correlation peak is too
	// weak to trust.
	driftMinPeak = 0.2
)

// detectDrift estimates a local offset per reference segment, searching
// only near the globally-estimated lag, and fits a line through the
// estimates. A slope beyond tolerance with a coherent fit means the two
// clocks tick at different effective rates.
func (e *Engine) detectDrift(centeredRef, centeredTgt [][]float64, ref *features.Sequence, globalLag float64, check func() error) (*DriftInfo, error) {
	segLen := len(centeredRef) / driftSegments
	if segLen < driftMinSegmentFrames {
		return &DriftInfo{}, nil
	}

	base := int(math.Round(globalLag))
	keyframes := make([]Keyframe, 0, driftSegments)
	for s := 0; s < driftSegments; s++ {
		if check != nil {
			if err := check(); err != nil {
				return nil, err
			}
		}
		start := s * segLen
		segment := centeredRef[start : start+segLen]

		tgtStart := start + base - driftSearchFrames
		tgtEnd := start + base + segLen + driftSearchFrames
		if tgtStart < 0 {
			tgtStart = 0
		}
		if tgtEnd > len(centeredTgt) {
			tgtEnd = len(centeredTgt)
		}
		if tgtEnd-tgtStart < segLen {
			continue
		}

		curve, err := correlate(segment, centeredTgt[tgtStart:tgtEnd], 0, check)
		if err != nil {
			return nil, err
		}
		peakIdx, peakValue, _ := peakPick(curve)
		if peakValue < driftMinPeak {
			continue
		}
		// Window lags translate back to full-target lags by the window's
		// starting frame.
		realLag := refineLag(curve, peakIdx) + float64(tgtStart-start)
		keyframes = append(keyframes, Keyframe{
			TimeSeconds:   ref.FrameTime(start + segLen/2),
			OffsetSamples: int64(math.Round(realLag * float64(ref.HopSize))),
		})
	}

	if len(keyframes) < 2 {
		return &DriftInfo{}, nil
	}

	xs := make([]float64, len(keyframes))
	ys := make([]float64, len(keyframes))
	for i, kf := range keyframes {
		xs[i] = kf.TimeSeconds
		ys[i] = float64(kf.OffsetSamples)
	}
	slope, intercept := dsp.LinearRegression(xs, ys)

	ppm := 0.0
	if ref.SampleRate > 0 {
		ppm = slope / ref.SampleRate * 1e6
	}

	// A real skew produces estimates that sit on the fitted line; scattered
	// keyframes mean the segments locked onto noise, not a trend.
	maxResidual := 0.0
	for i := range xs {
		residual := math.Abs(ys[i] - (slope*xs[i] + intercept))
		if residual > maxResidual {
			maxResidual = residual
		}
	}
	coherent := maxResidual <= float64(ref.HopSize)

	detected := coherent && math.Abs(ppm) > driftTolerancePPM

	info := &DriftInfo{
		Detected:          detected,
		PPM:               ppm,
		CorrectionApplied: detected,
	}
	if detected {
		info.Keyframes = keyframes
		e.logger.Debug("clock drift detected",
			logging.Float64("ppm", ppm),
			logging.Int("keyframes", len(keyframes)),
		)
	}
	return info, nil
}
