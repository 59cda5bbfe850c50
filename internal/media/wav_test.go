package media_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"syncline/internal/media"
	"syncline/internal/services"
)

// writeWAV encodes 16-bit PCM test data to a temp file.
func writeWAV(t *testing.T, path string, channels, sampleRate int, frames [][]int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	data := make([]int, 0, len(frames)*channels)
	for _, frame := range frames {
		data = append(data, frame...)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestLoadWAVMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	writeWAV(t, path, 1, 44100, [][]int{{0}, {16384}, {-16384}, {32767}})

	buf, err := media.LoadWAV(path)
	if err != nil {
		t.Fatalf("LoadWAV: %v", err)
	}
	if buf.SampleRate != 44100 {
		t.Fatalf("rate = %v", buf.SampleRate)
	}
	if buf.Len() != 4 {
		t.Fatalf("len = %d, want 4", buf.Len())
	}
	want := []float64{0, 0.5, -0.5, 32767.0 / 32768.0}
	for i, w := range want {
		if math.Abs(buf.Samples[i]-w) > 1e-6 {
			t.Fatalf("sample %d = %v, want %v", i, buf.Samples[i], w)
		}
	}
}

func TestLoadWAVStereoDownmix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeWAV(t, path, 2, 48000, [][]int{{16384, -16384}, {16384, 16384}})

	buf, err := media.LoadWAV(path)
	if err != nil {
		t.Fatalf("LoadWAV: %v", err)
	}
	if buf.Len() != 2 {
		t.Fatalf("len = %d, want 2 after downmix", buf.Len())
	}
	if math.Abs(buf.Samples[0]) > 1e-6 {
		t.Fatalf("opposing channels should cancel, got %v", buf.Samples[0])
	}
	if math.Abs(buf.Samples[1]-0.5) > 1e-6 {
		t.Fatalf("matched channels should average to 0.5, got %v", buf.Samples[1])
	}
}

func TestLoadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("not a riff header"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := media.LoadWAV(path)
	if !errors.Is(err, services.ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want unsupported format", err)
	}
}

func TestLoadWAVMissingFile(t *testing.T) {
	_, err := media.LoadWAV(filepath.Join(t.TempDir(), "absent.wav"))
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
}
