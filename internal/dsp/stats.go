package dsp

import (
	"math"
	"sort"
)

// RootMeanSquare returns the RMS amplitude of the samples.
func RootMeanSquare(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// ZeroCrossingRate returns the fraction of adjacent sample pairs whose signs
// differ.
func ZeroCrossingRate(samples []float64) float64 {
	if len(samples) <= 1 {
		return 0
	}
	var count float64
	for i := 1; i < len(samples); i++ {
		if samples[i-1] == 0 || samples[i] == 0 {
			continue
		}
		if (samples[i-1] > 0) != (samples[i] > 0) {
			count++
		}
	}
	return count / float64(len(samples)-1)
}

// MedianFilter smooths the sequence with a sliding median of the given odd
// window length. Values near the edges use a truncated window.
func MedianFilter(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2
	out := make([]float64, len(values))
	scratch := make([]float64, 0, window)
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(values) {
			hi = len(values)
		}
		scratch = append(scratch[:0], values[lo:hi]...)
		sort.Float64s(scratch)
		out[i] = scratch[len(scratch)/2]
	}
	return out
}

// LinearRegression fits y = slope*x + intercept by least squares. It returns
// zeros when fewer than two points are supplied.
func LinearRegression(xs, ys []float64) (slope, intercept float64) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := float64(n)*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / float64(n)
	}
	slope = (float64(n)*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / float64(n)
	return slope, intercept
}

// Clamp01 limits a value to the unit interval.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// AmplitudeToDB converts a linear amplitude to decibels relative to full
// scale, flooring at -120 dB for silence.
func AmplitudeToDB(amplitude float64) float64 {
	if amplitude <= 0 {
		return -120
	}
	db := 20 * math.Log10(amplitude)
	if db < -120 {
		return -120
	}
	return db
}

// DBToAmplitude converts decibels relative to full scale back to a linear
// amplitude.
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}
