package audio

import (
	"time"
)

// Validation bounds shared by preflight checks and the orchestrator.
const (
	// MinSampleRate and MaxSampleRate bracket the rates the engine accepts.
	MinSampleRate = 8000.0
	MaxSampleRate = 192000.0

	// MinSamples is the absolute floor below which no method can produce a
	// usable feature sequence.
	MinSamples = 8000

	// MaxSamples caps a single buffer at 1 GiB of float32 source material.
	MaxSamples = 1 << 28
)

// Buffer is an immutable view of mono float samples at a fixed rate. The
// sample slice is owned by the caller; engine code must treat it as
// read-only.
type Buffer struct {
	Samples    []float64
	SampleRate float64
}

// Len returns the sample count.
func (b Buffer) Len() int {
	return len(b.Samples)
}

// Duration returns the play time represented by the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 || len(b.Samples) == 0 {
		return 0
	}
	seconds := float64(len(b.Samples)) / b.SampleRate
	return time.Duration(seconds * float64(time.Second))
}

// Seconds returns the buffer duration in seconds.
func (b Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / b.SampleRate
}

// Empty reports whether the buffer holds no samples.
func (b Buffer) Empty() bool {
	return len(b.Samples) == 0
}

// RateValid reports whether the sample rate falls inside the supported range.
func (b Buffer) RateValid() bool {
	return b.SampleRate >= MinSampleRate && b.SampleRate <= MaxSampleRate
}
