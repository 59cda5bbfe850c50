package features

import (
	"syncline/internal/audio"
	"syncline/internal/dsp"
)

// Pre-emphasis boosts high-frequency content before the spectral-magnitude
// delta so percussive onsets stand out against sustained material.
const fluxPreEmphasis = 0.97

// fluxSmoothingWindow is the median-filter length applied to the raw onset
// curve. Three frames kills single-frame spikes without blurring onsets.
const fluxSmoothingWindow = 3

// extractSpectralFlux produces one rectified spectral-magnitude delta per
// frame: the sum of positive bin-to-bin increases since the previous frame.
func extractSpectralFlux(buf audio.Buffer, windowSize, hopSize int, check func() error) ([][]float64, error) {
	count := FrameCount(buf.Len(), windowSize, hopSize)
	onsets := make([]float64, count)
	emphasized := make([]float64, windowSize)
	var previous []float64

	err := eachFrame(buf, windowSize, hopSize, check, func(index int, window []float64) {
		emphasized[0] = window[0]
		for i := 1; i < len(window); i++ {
			emphasized[i] = window[i] - fluxPreEmphasis*window[i-1]
		}
		magnitude := dsp.MagnitudeSpectrum(emphasized)

		if previous != nil {
			var flux float64
			for bin := range magnitude {
				if delta := magnitude[bin] - previous[bin]; delta > 0 {
					flux += delta
				}
			}
			onsets[index] = flux
		}
		previous = magnitude
	})
	if err != nil {
		return nil, err
	}

	smoothed := dsp.MedianFilter(onsets, fluxSmoothingWindow)
	frames := make([][]float64, count)
	for i, v := range smoothed {
		frames[i] = []float64{v}
	}
	return frames, nil
}
