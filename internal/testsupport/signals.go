// Package testsupport provides deterministic audio fixtures for engine
// tests: tones, seeded noise, click tracks, and shifted copies.
package testsupport

import (
	"math"
	"math/rand"

	"syncline/internal/audio"
)

// Tone generates a fixed-frequency sinusoid.
func Tone(freq, sampleRate float64, seconds, amplitude float64) audio.Buffer {
	n := int(seconds * sampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return audio.Buffer{Samples: samples, SampleRate: sampleRate}
}

// Noise generates seeded uniform noise so tests are reproducible.
func Noise(seed int64, sampleRate float64, seconds, amplitude float64) audio.Buffer {
	rng := rand.New(rand.NewSource(seed))
	n := int(seconds * sampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * (2*rng.Float64() - 1)
	}
	return audio.Buffer{Samples: samples, SampleRate: sampleRate}
}

// ClickTrack generates seeded noise with periodic sharp transients. The
// transients give correlation-based alignment an unambiguous structure to
// lock onto, the way clapperboards do on set.
func ClickTrack(seed int64, sampleRate float64, seconds float64) audio.Buffer {
	buf := Noise(seed, sampleRate, seconds, 0.05)
	interval := int(0.25 * sampleRate)
	clickLen := int(0.005 * sampleRate)
	rng := rand.New(rand.NewSource(seed + 1))
	for start := interval / 2; start+clickLen < len(buf.Samples); start += interval + rng.Intn(interval/2) {
		for i := 0; i < clickLen; i++ {
			decay := 1 - float64(i)/float64(clickLen)
			buf.Samples[start+i] += 0.8 * decay * (2*rng.Float64() - 1)
		}
	}
	return buf
}

// Shift returns a copy of the buffer delayed by the given sample count:
// the output starts with offset samples of near-silence and then replays
// the source. A positive offset means the copy lags the original.
func Shift(buf audio.Buffer, offset int) audio.Buffer {
	if offset < 0 {
		trimmed := -offset
		if trimmed >= len(buf.Samples) {
			return audio.Buffer{Samples: nil, SampleRate: buf.SampleRate}
		}
		out := make([]float64, len(buf.Samples)-trimmed)
		copy(out, buf.Samples[trimmed:])
		return audio.Buffer{Samples: out, SampleRate: buf.SampleRate}
	}
	out := make([]float64, len(buf.Samples)+offset)
	rng := rand.New(rand.NewSource(int64(offset)))
	for i := 0; i < offset; i++ {
		out[i] = 0.001 * (2*rng.Float64() - 1)
	}
	copy(out[offset:], buf.Samples)
	return audio.Buffer{Samples: out, SampleRate: buf.SampleRate}
}

// Silence generates an all-zero buffer.
func Silence(sampleRate float64, seconds float64) audio.Buffer {
	return audio.Buffer{Samples: make([]float64, int(seconds*sampleRate)), SampleRate: sampleRate}
}

// Clipped generates a tone driven past full scale and hard-limited, for
// clipping-ratio checks.
func Clipped(freq, sampleRate float64, seconds float64) audio.Buffer {
	buf := Tone(freq, sampleRate, seconds, 1.4)
	for i, v := range buf.Samples {
		if v > 1 {
			buf.Samples[i] = 1
		} else if v < -1 {
			buf.Samples[i] = -1
		}
	}
	return buf
}
