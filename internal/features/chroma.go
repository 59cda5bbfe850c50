package features

import (
	"math"

	"syncline/internal/audio"
	"syncline/internal/dsp"
)

const chromaBins = 12

// chromaHarmonics weights the first few harmonics of each pitch class so a
// note's overtones reinforce its fundamental instead of leaking into other
// classes.
var chromaHarmonics = []float64{1.0, 0.5, 0.33, 0.25}

// chromaRefFrequency anchors pitch-class 0 (C) via A4 = 440 Hz.
var chromaRefFrequency = 440.0 * math.Pow(2, -9.0/12.0)

// extractChroma folds spectral energy into 12 pitch classes per frame,
// octave-independent, with harmonic weighting.
func extractChroma(buf audio.Buffer, windowSize, hopSize int, check func() error) ([][]float64, error) {
	count := FrameCount(buf.Len(), windowSize, hopSize)
	frames := make([][]float64, count)
	fftSize := dsp.NextPowerOfTwo(windowSize)

	err := eachFrame(buf, windowSize, hopSize, check, func(index int, window []float64) {
		magnitude := dsp.MagnitudeSpectrum(window)
		chroma := make([]float64, chromaBins)
		for bin := 1; bin < len(magnitude); bin++ {
			freq := dsp.BinFrequency(bin, fftSize, buf.SampleRate)
			if freq < 27.5 || freq > 8000 {
				continue
			}
			energy := magnitude[bin] * magnitude[bin]
			for h, weight := range chromaHarmonics {
				fundamental := freq / float64(h+1)
				if fundamental < 27.5 {
					break
				}
				chroma[pitchClass(fundamental)] += weight * energy
			}
		}
		normalizeChroma(chroma)
		frames[index] = chroma
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}

func pitchClass(freq float64) int {
	semitones := 12 * math.Log2(freq/chromaRefFrequency)
	class := int(math.Round(semitones)) % chromaBins
	if class < 0 {
		class += chromaBins
	}
	return class
}

func normalizeChroma(chroma []float64) {
	var total float64
	for _, v := range chroma {
		total += v
	}
	if total <= 0 {
		return
	}
	for i := range chroma {
		chroma[i] /= total
	}
}
