package align

import (
	"syncline/internal/services"
)

// Result is the immutable outcome of one alignment. A positive offset means
// the target lags the reference.
type Result struct {
	OffsetSamples      int64
	OffsetSeconds      float64
	OffsetMilliseconds float64
	Confidence         float64
	PeakCorrelation    float64
	SecondaryPeakRatio float64
	SNREstimate        float64
	NoiseFloorDB       float64
	Method             string
	Code               services.Code
	Drift              *DriftInfo
}

// DriftInfo describes clock divergence between the two recordings.
type DriftInfo struct {
	Detected          bool
	PPM               float64
	Keyframes         []Keyframe
	CorrectionApplied bool
}

// Keyframe anchors the offset at a point in time, used to interpolate a
// time-varying correction curve.
type Keyframe struct {
	TimeSeconds   float64
	OffsetSamples int64
}

// OffsetAt interpolates the drift-corrected offset at the given time.
// Outside the keyframe span the nearest keyframe value is held.
func (d *DriftInfo) OffsetAt(seconds float64) int64 {
	if d == nil || len(d.Keyframes) == 0 {
		return 0
	}
	first := d.Keyframes[0]
	if seconds <= first.TimeSeconds {
		return first.OffsetSamples
	}
	last := d.Keyframes[len(d.Keyframes)-1]
	if seconds >= last.TimeSeconds {
		return last.OffsetSamples
	}
	for i := 1; i < len(d.Keyframes); i++ {
		left, right := d.Keyframes[i-1], d.Keyframes[i]
		if seconds > right.TimeSeconds {
			continue
		}
		span := right.TimeSeconds - left.TimeSeconds
		if span <= 0 {
			return right.OffsetSamples
		}
		frac := (seconds - left.TimeSeconds) / span
		delta := float64(right.OffsetSamples - left.OffsetSamples)
		return left.OffsetSamples + int64(frac*delta+0.5)
	}
	return last.OffsetSamples
}

func newResult(offsetSamples int64, sampleRate float64, method string) *Result {
	seconds := 0.0
	if sampleRate > 0 {
		seconds = float64(offsetSamples) / sampleRate
	}
	return &Result{
		OffsetSamples:      offsetSamples,
		OffsetSeconds:      seconds,
		OffsetMilliseconds: seconds * 1000,
		Method:             method,
		Code:               services.CodeSuccess,
	}
}
