package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"syncline/internal/audio"
	"syncline/internal/testsupport"
)

// writeTestConfig points every path at the test's temp dir so commands
// never touch the real home directory.
func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
stats_dir = %q
log_dir = %q

[engine]
method = "energy"
window_size = 1024
hop_size = 256

[stats]
enabled = true

[logging]
format = "console"
level = "error"
`, filepath.Join(base, "stats"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// writeTestWAV encodes the buffer as 16-bit PCM.
func writeTestWAV(t *testing.T, path string, buf audio.Buffer) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	data := make([]int, len(buf.Samples))
	for i, sample := range buf.Samples {
		data[i] = int(sample * 32767)
	}
	encoder := wav.NewEncoder(f, int(buf.SampleRate), 16, 1, 1)
	intBuf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: int(buf.SampleRate)},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(intBuf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestAlignCommand(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	reference := testsupport.ClickTrack(11, 44100, 4)
	target := testsupport.Shift(reference, 4410)
	refPath := filepath.Join(base, "reference.wav")
	tgtPath := filepath.Join(base, "target.wav")
	writeTestWAV(t, refPath, reference)
	writeTestWAV(t, tgtPath, target)

	out, err := runCLI(t, configPath, "align", refPath, tgtPath)
	if err != nil {
		t.Fatalf("align: %v\n%s", err, out)
	}
	requireContains(t, out, "Offset")
	requireContains(t, out, "alignment succeeded")
}

func TestAlignCommandJSON(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	reference := testsupport.ClickTrack(7, 44100, 4)
	refPath := filepath.Join(base, "reference.wav")
	tgtPath := filepath.Join(base, "target.wav")
	writeTestWAV(t, refPath, reference)
	writeTestWAV(t, tgtPath, testsupport.Shift(reference, 2205))

	out, err := runCLI(t, configPath, "align", "--json", refPath, tgtPath)
	if err != nil {
		t.Fatalf("align --json: %v\n%s", err, out)
	}
	requireContains(t, out, `"state": "succeeded"`)
	requireContains(t, out, `"offset_samples"`)
}

func TestAlignCommandMissingFile(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, configPath, "align", filepath.Join(base, "missing.wav"), filepath.Join(base, "also-missing.wav"))
	if err == nil {
		t.Fatalf("expected error, got:\n%s", out)
	}
}

func TestBatchCommand(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	reference := testsupport.ClickTrack(3, 44100, 4)
	refPath := filepath.Join(base, "reference.wav")
	writeTestWAV(t, refPath, reference)

	targetPaths := make([]string, 2)
	for i, offset := range []int{2205, 4410} {
		targetPaths[i] = filepath.Join(base, fmt.Sprintf("target%d.wav", i))
		writeTestWAV(t, targetPaths[i], testsupport.Shift(reference, offset))
	}

	out, err := runCLI(t, configPath, "batch", refPath, targetPaths[0], targetPaths[1])
	if err != nil {
		t.Fatalf("batch: %v\n%s", err, out)
	}
	requireContains(t, out, "2/2 targets aligned")
}

func TestQualityCommand(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	path := filepath.Join(base, "clicks.wav")
	writeTestWAV(t, path, testsupport.ClickTrack(5, 44100, 3))

	out, err := runCLI(t, configPath, "quality", path)
	if err != nil {
		t.Fatalf("quality: %v\n%s", err, out)
	}
	requireContains(t, out, "Dynamic range")
	requireContains(t, out, "Duration")
}

func TestPresetsCommand(t *testing.T) {
	out, err := runCLI(t, "", "presets")
	if err != nil {
		t.Fatalf("presets: %v", err)
	}
	for _, name := range []string{"music", "speech", "multicam"} {
		requireContains(t, out, name)
	}
}

func TestMethodsCommand(t *testing.T) {
	out, err := runCLI(t, "", "methods")
	if err != nil {
		t.Fatalf("methods: %v", err)
	}
	for _, name := range []string{"energy", "spectral_flux", "chroma", "mfcc"} {
		requireContains(t, out, name)
	}
}

func TestStatsAfterAlign(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	reference := testsupport.ClickTrack(9, 44100, 4)
	refPath := filepath.Join(base, "reference.wav")
	tgtPath := filepath.Join(base, "target.wav")
	writeTestWAV(t, refPath, reference)
	writeTestWAV(t, tgtPath, testsupport.Shift(reference, 4410))

	if out, err := runCLI(t, configPath, "align", refPath, tgtPath); err != nil {
		t.Fatalf("align: %v\n%s", err, out)
	}

	out, err := runCLI(t, configPath, "stats")
	if err != nil {
		t.Fatalf("stats: %v\n%s", err, out)
	}
	requireContains(t, out, "Total operations")
	requireContains(t, out, "1")
}

func TestStatsClearRequiresConfirmation(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	if _, err := runCLI(t, configPath, "stats", "clear"); err == nil {
		t.Fatal("expected clear without --yes to fail")
	}
	if out, err := runCLI(t, configPath, "stats", "clear", "--yes"); err != nil {
		t.Fatalf("stats clear --yes: %v\n%s", err, out)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v\n%s", err, out)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(base, "fresh", "config.toml")
	out, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init over an existing file to fail without --overwrite")
	}
}

func TestConfigShow(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	requireContains(t, out, "engine.method")
	requireContains(t, out, "energy")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "syncline")
	requireContains(t, out, "go:")
}
