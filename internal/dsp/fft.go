package dsp

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform of the input using an
// iterative radix-2 Cooley-Tukey decomposition. The input length must be a
// power of two; use NextPowerOfTwo and zero-padding to satisfy that.
func FFT(input []float64) []complex128 {
	n := len(input)
	out := make([]complex128, n)
	for i, v := range input {
		out[i] = complex(v, 0)
	}
	fftInPlace(out)
	return out
}

func fftInPlace(data []complex128) {
	n := len(data)
	if n <= 1 {
		return
	}

	shift := 64 - uint(bits.TrailingZeros(uint(n)))
	for i := 0; i < n; i++ {
		j := int(bits.Reverse64(uint64(i)) >> shift)
		if j > i {
			data[i], data[j] = data[j], data[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		step := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				even := data[start+k]
				odd := data[start+k+half] * w
				data[start+k] = even + odd
				data[start+k+half] = even - odd
				w *= step
			}
		}
	}
}

// MagnitudeSpectrum windows the frame, runs the FFT, and returns the
// magnitudes of the first n/2 bins.
func MagnitudeSpectrum(frame []float64) []float64 {
	size := NextPowerOfTwo(len(frame))
	buffer := make([]float64, size)
	copy(buffer, frame)
	ApplyHannWindow(buffer[:len(frame)])

	spectrum := FFT(buffer)
	bins := size / 2
	magnitude := make([]float64, bins)
	for i := 0; i < bins; i++ {
		magnitude[i] = cmplx.Abs(spectrum[i])
	}
	return magnitude
}

// BinFrequency returns the center frequency in Hz of an FFT bin.
func BinFrequency(bin, fftSize int, sampleRate float64) float64 {
	return float64(bin) * sampleRate / float64(fftSize)
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}

// ApplyHannWindow multiplies the buffer by a Hann window in place to reduce
// spectral leakage.
func ApplyHannWindow(buffer []float64) {
	length := len(buffer)
	if length <= 1 {
		return
	}
	for i := range buffer {
		buffer[i] *= 0.5 * (1 - math.Cos((2*math.Pi*float64(i))/float64(length-1)))
	}
}
