package features

import (
	"syncline/internal/audio"
	"syncline/internal/services"
)

// Sequence is an ordered series of feature frames produced by one
// (audio, method) pair. Read-only after extraction.
type Sequence struct {
	Method     Method
	Frames     [][]float64
	WindowSize int
	HopSize    int
	SampleRate float64
}

// Len returns the frame count.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// Dim returns the per-frame vector size, 0 for an empty sequence.
func (s *Sequence) Dim() int {
	if s == nil || len(s.Frames) == 0 {
		return 0
	}
	return len(s.Frames[0])
}

// FrameTime returns the start time in seconds of the given frame index.
func (s *Sequence) FrameTime(index int) float64 {
	if s == nil || s.SampleRate <= 0 {
		return 0
	}
	return float64(index*s.HopSize) / s.SampleRate
}

// FrameCount computes how many full frames fit: floor((n-window)/hop)+1.
// The trailing partial frame is dropped, never zero-padded.
func FrameCount(samples, windowSize, hopSize int) int {
	if samples < windowSize || windowSize <= 0 || hopSize <= 0 {
		return 0
	}
	return (samples-windowSize)/hopSize + 1
}

// checkpointInterval is how many frames each extractor processes between
// cancellation checks.
const checkpointInterval = 64

// Extract produces a feature sequence for the buffer using the given
// method and framing parameters.
func Extract(buf audio.Buffer, method Method, windowSize, hopSize int) (*Sequence, error) {
	return ExtractChecked(buf, method, windowSize, hopSize, nil)
}

// ExtractChecked behaves like Extract but calls check between frame batches
// so long extractions can observe cancellation or timeout.
func ExtractChecked(buf audio.Buffer, method Method, windowSize, hopSize int, check func() error) (*Sequence, error) {
	if err := validateFraming(windowSize, hopSize); err != nil {
		return nil, err
	}
	if method == MethodHybrid {
		return nil, services.Wrap(services.ErrInvalidInput, "extracting", method.String(),
			"hybrid is an alignment strategy, not a feature shape", nil)
	}
	if min := method.MinSamples(buf.SampleRate); buf.Len() < min {
		return nil, services.Wrap(services.ErrInsufficientData, "extracting", method.String(),
			"audio shorter than the method minimum", nil)
	}
	if FrameCount(buf.Len(), windowSize, hopSize) == 0 {
		return nil, services.Wrap(services.ErrInsufficientData, "extracting", method.String(),
			"audio shorter than one analysis window", nil)
	}

	var frames [][]float64
	var err error
	switch method {
	case MethodSpectralFlux:
		frames, err = extractSpectralFlux(buf, windowSize, hopSize, check)
	case MethodChroma:
		frames, err = extractChroma(buf, windowSize, hopSize, check)
	case MethodEnergy:
		frames, err = extractEnergy(buf, windowSize, hopSize, check)
	case MethodMFCC:
		frames, err = extractMFCC(buf, windowSize, hopSize, check)
	default:
		return nil, services.Wrap(services.ErrInvalidInput, "extracting", method.String(), "unknown method", nil)
	}
	if err != nil {
		return nil, err
	}

	return &Sequence{
		Method:     method,
		Frames:     frames,
		WindowSize: windowSize,
		HopSize:    hopSize,
		SampleRate: buf.SampleRate,
	}, nil
}

func validateFraming(windowSize, hopSize int) error {
	if windowSize <= 0 {
		return services.Wrap(services.ErrInvalidInput, "extracting", "framing", "window size must be positive", nil)
	}
	if hopSize <= 0 {
		return services.Wrap(services.ErrInvalidInput, "extracting", "framing", "hop size must be positive", nil)
	}
	if hopSize > windowSize {
		return services.Wrap(services.ErrInvalidInput, "extracting", "framing", "hop size exceeds window size", nil)
	}
	return nil
}

// eachFrame walks the frame grid, invoking fn with the frame index and the
// window slice, checking for cancellation every checkpointInterval frames.
func eachFrame(buf audio.Buffer, windowSize, hopSize int, check func() error, fn func(index int, window []float64)) error {
	count := FrameCount(buf.Len(), windowSize, hopSize)
	for i := 0; i < count; i++ {
		if check != nil && i%checkpointInterval == 0 {
			if err := check(); err != nil {
				return err
			}
		}
		start := i * hopSize
		fn(i, buf.Samples[start:start+windowSize])
	}
	return nil
}
