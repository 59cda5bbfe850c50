// Package media loads audio files into engine buffers. Only WAV input is
// supported; anything else is reported as an unsupported format rather
// than guessed at.
package media

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"syncline/internal/audio"
	"syncline/internal/services"
)

// LoadWAV decodes a WAV file into a mono buffer. Multi-channel files are
// downmixed by averaging; integer PCM is normalized to [-1, 1] by the
// source bit depth.
func LoadWAV(path string) (audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, services.Wrap(services.ErrInvalidInput, "media", "load wav",
			fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return audio.Buffer{}, services.Wrap(services.ErrUnsupportedFormat, "media", "load wav",
			fmt.Sprintf("%s is not a decodable WAV file", path), nil)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, services.Wrap(services.ErrProcessingFailed, "media", "load wav",
			fmt.Sprintf("decode %s", path), err)
	}
	if pcm.Format == nil || pcm.Format.SampleRate <= 0 {
		return audio.Buffer{}, services.Wrap(services.ErrUnsupportedFormat, "media", "load wav",
			fmt.Sprintf("%s has no sample rate", path), nil)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bitDepth := pcm.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(pcm.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(pcm.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float64(channels)
	}

	return audio.Buffer{
		Samples:    samples,
		SampleRate: float64(pcm.Format.SampleRate),
	}, nil
}
