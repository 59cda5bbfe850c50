package preflight

import (
	"math"
	"sort"

	"syncline/internal/audio"
	"syncline/internal/dsp"
)

// Quality heuristics. Clipping counts samples at or above 95% of full
// scale; sufficient content requires the silence ratio below the cap and
// a non-constant signal.
const (
	clippingThreshold    = 0.95
	maxClippingRatio     = 0.01
	maxSilenceRatio      = 0.9
	minDynamicRangeDB    = 20.0
	constantSignalEps    = 1e-9
	qualityAnalysisFrame = 2048
	rolloffEnergyShare   = 0.85
)

// QualityReport is a read-only snapshot of measured signal properties.
// Computed fresh per request and never mutated afterward.
type QualityReport struct {
	SampleCount     int
	DurationSeconds float64

	RMSLevel         float64
	PeakLevel        float64
	DynamicRangeDB   float64
	SilenceRatio     float64
	ClippingRatio    float64
	SpectralCentroid float64
	SpectralRolloff  float64
	ZeroCrossingRate float64

	SufficientContent bool
	ExcessiveClipping bool
	GoodDynamicRange  bool

	Warnings        []string
	Recommendations []string
}

// AnalyzeAudioQuality measures the buffer and derives quality heuristics.
// It never fails; degraded input produces a report with warnings rather
// than an error. noiseGateDB sets the silence threshold in dBFS.
func AnalyzeAudioQuality(buf audio.Buffer, noiseGateDB float64) QualityReport {
	report := QualityReport{
		SampleCount:     buf.Len(),
		DurationSeconds: buf.Seconds(),
	}
	if buf.Empty() {
		report.Warnings = append(report.Warnings, "audio buffer is empty")
		report.Recommendations = append(report.Recommendations, "provide a non-empty recording")
		return report
	}

	gate := dsp.DBToAmplitude(noiseGateDB)
	var silent, clipped int
	peak := 0.0
	minAbs := math.Inf(1)
	for _, v := range buf.Samples {
		abs := math.Abs(v)
		if abs > peak {
			peak = abs
		}
		if abs < minAbs {
			minAbs = abs
		}
		if abs < gate {
			silent++
		}
		if abs >= clippingThreshold {
			clipped++
		}
	}

	n := float64(buf.Len())
	report.RMSLevel = dsp.RootMeanSquare(buf.Samples)
	report.PeakLevel = peak
	report.SilenceRatio = float64(silent) / n
	report.ClippingRatio = float64(clipped) / n
	report.ZeroCrossingRate = dsp.ZeroCrossingRate(buf.Samples)
	report.DynamicRangeDB = dynamicRange(peak, buf.Samples)
	report.SpectralCentroid, report.SpectralRolloff = spectralShape(buf)

	report.ExcessiveClipping = report.ClippingRatio > maxClippingRatio
	report.GoodDynamicRange = report.DynamicRangeDB >= minDynamicRangeDB
	report.SufficientContent = report.SilenceRatio < maxSilenceRatio &&
		peak-minAbs > constantSignalEps

	annotate(&report)
	return report
}

func annotate(r *QualityReport) {
	if r.SilenceRatio >= maxSilenceRatio {
		r.Warnings = append(r.Warnings, "signal is mostly silence")
		r.Recommendations = append(r.Recommendations, "trim silence or lower the noise gate")
	}
	if !r.SufficientContent && r.SilenceRatio < maxSilenceRatio {
		r.Warnings = append(r.Warnings, "signal is near-constant")
		r.Recommendations = append(r.Recommendations, "check the recording chain for a dead input")
	}
	if r.ExcessiveClipping {
		r.Warnings = append(r.Warnings, "signal clips heavily")
		r.Recommendations = append(r.Recommendations, "reduce input gain and re-record if possible")
	}
	if !r.GoodDynamicRange {
		r.Warnings = append(r.Warnings, "dynamic range is narrow")
		r.Recommendations = append(r.Recommendations, "increase gain or disable upstream compression")
	}
	if r.PeakLevel > 0 && r.PeakLevel < 0.1 {
		r.Warnings = append(r.Warnings, "signal level is very low")
		r.Recommendations = append(r.Recommendations, "increase gain")
	}
}

// dynamicRange measures how far the loudest material sits above the
// typical level: peak over median absolute amplitude, in dB. A steady
// tone scores near zero, transient-rich material scores high.
func dynamicRange(peak float64, samples []float64) float64 {
	if peak <= 0 || len(samples) == 0 {
		return 0
	}
	abs := make([]float64, len(samples))
	for i, v := range samples {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	median := abs[len(abs)/2]
	if median <= 0 {
		median = 1e-6
	}
	return 20 * math.Log10(peak/median)
}

// spectralShape averages centroid and rolloff over analysis frames. Both
// come back in Hz; zero when the signal carries no energy.
func spectralShape(buf audio.Buffer) (centroid, rolloff float64) {
	frame := qualityAnalysisFrame
	if buf.Len() < frame {
		frame = buf.Len()
	}
	if frame < 16 {
		return 0, 0
	}

	var centroidSum, rolloffSum float64
	var frames int
	for start := 0; start+frame <= buf.Len(); start += frame {
		spectrum := dsp.MagnitudeSpectrum(buf.Samples[start : start+frame])
		c, r := frameShape(spectrum, buf.SampleRate)
		centroidSum += c
		rolloffSum += r
		frames++
	}
	if frames == 0 {
		return 0, 0
	}
	return centroidSum / float64(frames), rolloffSum / float64(frames)
}

func frameShape(spectrum []float64, sampleRate float64) (centroid, rolloff float64) {
	fftSize := 2 * len(spectrum)
	var total, weighted float64
	for bin, mag := range spectrum {
		total += mag
		weighted += mag * dsp.BinFrequency(bin, fftSize, sampleRate)
	}
	if total <= 0 {
		return 0, 0
	}
	centroid = weighted / total

	target := rolloffEnergyShare * total
	var running float64
	for bin, mag := range spectrum {
		running += mag
		if running >= target {
			rolloff = dsp.BinFrequency(bin, fftSize, sampleRate)
			break
		}
	}
	return centroid, rolloff
}
