package align

import (
	"math"
	"sort"
)

// lagCheckpointInterval is how many lags the search evaluates between
// cancellation checks.
const lagCheckpointInterval = 256

// minOverlapFrames is the absolute floor on overlap; minOverlap raises it
// with sequence length because normalized correlation over a handful of
// frames reads as a spuriously strong edge peak.
const minOverlapFrames = 8

// minOverlapDivisor sets the length-proportional overlap floor: a lag must
// leave at least a quarter of the shorter sequence overlapping.
const minOverlapDivisor = 4

func minOverlap(refN, tgtN int) int {
	shorter := refN
	if tgtN < shorter {
		shorter = tgtN
	}
	overlap := shorter / minOverlapDivisor
	if overlap < minOverlapFrames {
		overlap = minOverlapFrames
	}
	return overlap
}

// degenerateVariance is the centered-energy floor below which a sequence
// carries no alignable structure (constant or all-zero signal).
const degenerateVariance = 1e-12

// correlationCurve holds the normalized cross-correlation evaluated over a
// contiguous lag range. Lag L compares reference frame i with target frame
// i+L, so a positive best lag means the target lags the reference.
type correlationCurve struct {
	firstLag int
	values   []float64
}

func (c *correlationCurve) lagAt(index int) int {
	return c.firstLag + index
}

// center subtracts the per-dimension mean across frames. Feature envelopes
// are positive-valued; without centering the shared DC term dominates every
// lag and flattens the peak.
func center(frames [][]float64) ([][]float64, float64) {
	if len(frames) == 0 {
		return nil, 0
	}
	dim := len(frames[0])
	means := make([]float64, dim)
	for _, frame := range frames {
		for d, v := range frame {
			means[d] += v
		}
	}
	for d := range means {
		means[d] /= float64(len(frames))
	}
	out := make([][]float64, len(frames))
	var variance float64
	for i, frame := range frames {
		row := make([]float64, dim)
		for d, v := range frame {
			row[d] = v - means[d]
			variance += row[d] * row[d]
		}
		out[i] = row
	}
	variance /= float64(len(frames))
	return out, variance
}

// correlate evaluates normalized cross-correlation for every lag in
// [-maxLag, maxLag] that leaves at least minOverlap frames overlapping.
func correlate(ref, tgt [][]float64, maxLag int, check func() error) (*correlationCurve, error) {
	refN, tgtN := len(ref), len(tgt)
	overlapFloor := minOverlap(refN, tgtN)

	lo := -(refN - overlapFloor)
	hi := tgtN - overlapFloor
	if maxLag > 0 {
		if -maxLag > lo {
			lo = -maxLag
		}
		if maxLag < hi {
			hi = maxLag
		}
	}
	if lo > hi {
		lo, hi = 0, 0
	}

	curve := &correlationCurve{firstLag: lo, values: make([]float64, hi-lo+1)}
	for idx := range curve.values {
		if check != nil && idx%lagCheckpointInterval == 0 {
			if err := check(); err != nil {
				return nil, err
			}
		}
		lag := curve.lagAt(idx)

		start := 0
		if lag < 0 {
			start = -lag
		}
		end := refN
		if tgtN-lag < end {
			end = tgtN - lag
		}
		if end-start < overlapFloor {
			continue
		}

		var dot, refEnergy, tgtEnergy float64
		for i := start; i < end; i++ {
			a := ref[i]
			b := tgt[i+lag]
			for d := range a {
				dot += a[d] * b[d]
				refEnergy += a[d] * a[d]
				tgtEnergy += b[d] * b[d]
			}
		}
		norm := math.Sqrt(refEnergy * tgtEnergy)
		if norm > 0 {
			curve.values[idx] = dot / norm
		}
	}
	return curve, nil
}

// peakPick locates the primary peak, breaking exact ties toward the
// smaller-magnitude lag, and the secondary peak outside a guard region
// around the primary.
func peakPick(curve *correlationCurve) (peakIdx int, peakValue float64, secondary float64) {
	peakIdx = -1
	for idx, v := range curve.values {
		switch {
		case peakIdx < 0 || v > peakValue:
			peakIdx, peakValue = idx, v
		case v == peakValue && absInt(curve.lagAt(idx)) < absInt(curve.lagAt(peakIdx)):
			peakIdx = idx
		}
	}
	if peakIdx < 0 {
		return 0, 0, 0
	}

	guard := len(curve.values) / 20
	if guard < 3 {
		guard = 3
	}
	for idx, v := range curve.values {
		if absInt(idx-peakIdx) <= guard {
			continue
		}
		if v > secondary {
			secondary = v
		}
	}
	return peakIdx, peakValue, secondary
}

// refineLag interpolates a fractional lag by fitting a parabola through the
// peak and its neighbors. The correction is clamped to half a frame.
func refineLag(curve *correlationCurve, peakIdx int) float64 {
	lag := float64(curve.lagAt(peakIdx))
	if peakIdx <= 0 || peakIdx >= len(curve.values)-1 {
		return lag
	}
	left := curve.values[peakIdx-1]
	mid := curve.values[peakIdx]
	right := curve.values[peakIdx+1]
	denom := left - 2*mid + right
	if denom == 0 {
		return lag
	}
	delta := 0.5 * (left - right) / denom
	if delta > 0.5 {
		delta = 0.5
	} else if delta < -0.5 {
		delta = -0.5
	}
	return lag + delta
}

// curveNoise summarizes the correlation floor: the median absolute value
// across all evaluated lags.
func curveNoise(curve *correlationCurve) float64 {
	if len(curve.values) == 0 {
		return 0
	}
	abs := make([]float64, len(curve.values))
	for i, v := range curve.values {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	return abs[len(abs)/2]
}

// maxLagFrames converts the configured sample bound to frames; 0 stays
// unbounded.
func maxLagFrames(cfg Config, hopSize int) int {
	if cfg.MaxOffsetSamples <= 0 || hopSize <= 0 {
		return 0
	}
	frames := int(cfg.MaxOffsetSamples) / hopSize
	if frames < 1 {
		frames = 1
	}
	return frames
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
