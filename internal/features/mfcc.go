package features

import (
	"syncline/internal/audio"
	"syncline/internal/dsp"
)

const (
	// mfccCoefficients is the fixed per-frame coefficient count. The zeroth
	// coefficient carries only overall level and is dropped.
	mfccCoefficients = 13
	mfccMelFilters   = 26
)

// extractMFCC derives cepstral coefficients from a mel-filtered spectrum:
// magnitude spectrum -> mel log energies -> DCT-II, keeping coefficients
// 1..mfccCoefficients.
func extractMFCC(buf audio.Buffer, windowSize, hopSize int, check func() error) ([][]float64, error) {
	count := FrameCount(buf.Len(), windowSize, hopSize)
	frames := make([][]float64, count)
	fftSize := dsp.NextPowerOfTwo(windowSize)
	filterbank := dsp.NewMelFilterbank(mfccMelFilters, fftSize, buf.SampleRate)

	err := eachFrame(buf, windowSize, hopSize, check, func(index int, window []float64) {
		magnitude := dsp.MagnitudeSpectrum(window)
		melEnergies := filterbank.Apply(magnitude)
		cepstrum := dsp.DCTII(melEnergies, mfccCoefficients+1)
		coeffs := make([]float64, mfccCoefficients)
		copy(coeffs, cepstrum[1:])
		frames[index] = coeffs
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}
