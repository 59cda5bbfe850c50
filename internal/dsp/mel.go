package dsp

import "math"

// MelFilterbank holds triangular filters spaced evenly on the mel scale,
// used to warp a magnitude spectrum before computing cepstral coefficients.
type MelFilterbank struct {
	filters [][]float64
}

// NewMelFilterbank builds numFilters triangular filters covering 0 Hz up to
// the Nyquist frequency for the given FFT size.
func NewMelFilterbank(numFilters, fftSize int, sampleRate float64) *MelFilterbank {
	bins := fftSize / 2
	low := hzToMel(0)
	high := hzToMel(sampleRate / 2)

	// numFilters+2 boundary points: each filter spans three consecutive mels.
	points := make([]int, numFilters+2)
	for i := range points {
		mel := low + (high-low)*float64(i)/float64(numFilters+1)
		hz := melToHz(mel)
		bin := int(math.Floor(hz * float64(fftSize) / sampleRate))
		if bin >= bins {
			bin = bins - 1
		}
		points[i] = bin
	}

	filters := make([][]float64, numFilters)
	for m := 0; m < numFilters; m++ {
		filter := make([]float64, bins)
		left, center, right := points[m], points[m+1], points[m+2]
		for k := left; k < center; k++ {
			if center > left {
				filter[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right && k < bins; k++ {
			if right > center {
				filter[k] = float64(right-k) / float64(right-center)
			} else if k == center {
				filter[k] = 1
			}
		}
		filters[m] = filter
	}
	return &MelFilterbank{filters: filters}
}

// Apply returns the log energy in each mel band of the magnitude spectrum.
func (fb *MelFilterbank) Apply(magnitude []float64) []float64 {
	energies := make([]float64, len(fb.filters))
	for m, filter := range fb.filters {
		var sum float64
		limit := len(filter)
		if len(magnitude) < limit {
			limit = len(magnitude)
		}
		for k := 0; k < limit; k++ {
			sum += filter[k] * magnitude[k] * magnitude[k]
		}
		energies[m] = math.Log(sum + 1e-10)
	}
	return energies
}

// Size returns the number of filters in the bank.
func (fb *MelFilterbank) Size() int {
	return len(fb.filters)
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// DCTII computes the type-II discrete cosine transform of the input,
// returning the first count coefficients. This is the final step of MFCC
// extraction.
func DCTII(input []float64, count int) []float64 {
	n := len(input)
	if n == 0 || count <= 0 {
		return nil
	}
	if count > n {
		count = n
	}
	out := make([]float64, count)
	scale := math.Pi / float64(n)
	for k := 0; k < count; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += input[i] * math.Cos(scale*(float64(i)+0.5)*float64(k))
		}
		out[k] = sum
	}
	return out
}
