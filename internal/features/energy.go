package features

import (
	"syncline/internal/audio"
	"syncline/internal/dsp"
)

// energySmoothingSpan is the moving-average width applied to the raw RMS
// envelope.
const energySmoothingSpan = 3

// extractEnergy produces a smoothed RMS envelope, one scalar per frame.
func extractEnergy(buf audio.Buffer, windowSize, hopSize int, check func() error) ([][]float64, error) {
	count := FrameCount(buf.Len(), windowSize, hopSize)
	envelope := make([]float64, count)

	err := eachFrame(buf, windowSize, hopSize, check, func(index int, window []float64) {
		envelope[index] = dsp.RootMeanSquare(window)
	})
	if err != nil {
		return nil, err
	}

	smoothed := movingAverage(envelope, energySmoothingSpan)
	frames := make([][]float64, count)
	for i, v := range smoothed {
		frames[i] = []float64{v}
	}
	return frames, nil
}

func movingAverage(values []float64, span int) []float64 {
	if span <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	half := span / 2
	out := make([]float64, len(values))
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(values) {
			hi = len(values)
		}
		var sum float64
		for j := lo; j < hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
