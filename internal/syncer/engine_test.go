package syncer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"syncline/internal/align"
	"syncline/internal/audio"
	"syncline/internal/features"
	"syncline/internal/services"
	"syncline/internal/syncer"
	"syncline/internal/testsupport"
)

const testRate = 44100.0

func newEngine() *syncer.Engine {
	return syncer.New(syncer.Options{})
}

func clickRequest(method features.Method) syncer.Request {
	reference := testsupport.ClickTrack(11, testRate, 6)
	return syncer.Request{
		Reference: reference,
		Target:    testsupport.Shift(reference, 4410),
		Method:    method,
		Config:    align.DefaultConfig(),
	}
}

func TestProcessSucceeds(t *testing.T) {
	engine := newEngine()
	outcome, err := engine.Process(context.Background(), clickRequest(features.MethodEnergy))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if outcome.State != syncer.StateSucceeded {
		t.Fatalf("state = %s", outcome.State)
	}
	if outcome.Result == nil {
		t.Fatal("missing result")
	}
	// 4410 samples is 100 ms at 44.1 kHz; allow 1 ms.
	if diff := outcome.Result.OffsetSamples - 4410; diff < -45 || diff > 45 {
		t.Fatalf("offset = %d, want ~4410", outcome.Result.OffsetSamples)
	}
	if outcome.Code != services.CodeSuccess {
		t.Fatalf("code = %s", outcome.Code)
	}
	if outcome.WallTime <= 0 {
		t.Fatal("wall time not measured")
	}
	if outcome.RealtimeRatio <= 0 {
		t.Fatal("realtime ratio not computed")
	}
	if outcome.ReferenceQuality.SampleCount == 0 {
		t.Fatal("quality report missing")
	}
}

func TestProcessHybridTagsMethod(t *testing.T) {
	engine := newEngine()
	outcome, err := engine.Process(context.Background(), clickRequest(features.MethodHybrid))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if outcome.Result.Method == features.MethodHybrid.String() {
		t.Fatal("hybrid outcome must name the concrete method used")
	}
}

func TestProcessRejectsEmptyTarget(t *testing.T) {
	engine := newEngine()
	req := clickRequest(features.MethodEnergy)
	req.Target = audio.Buffer{SampleRate: testRate}
	outcome, err := engine.Process(context.Background(), req)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
	if outcome.State != syncer.StateFailed {
		t.Fatalf("state = %s", outcome.State)
	}
	if outcome.Code != services.CodeInvalidInput {
		t.Fatalf("code = %s", outcome.Code)
	}
}

func TestProcessShortAudioFailsWithInsufficientData(t *testing.T) {
	engine := newEngine()
	short := testsupport.ClickTrack(5, testRate, 0.4)
	req := syncer.Request{
		Reference: short,
		Target:    short,
		Method:    features.MethodMFCC,
		Config:    align.DefaultConfig(),
	}
	outcome, err := engine.Process(context.Background(), req)
	if !errors.Is(err, services.ErrInsufficientData) {
		t.Fatalf("error = %v, want insufficient data", err)
	}
	if outcome.Code != services.CodeInsufficientData {
		t.Fatalf("code = %s", outcome.Code)
	}
}

func TestProcessCancelledContext(t *testing.T) {
	engine := newEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, err := engine.Process(ctx, clickRequest(features.MethodEnergy))
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("error = %v, want cancelled", err)
	}
	if outcome.State != syncer.StateCancelled {
		t.Fatalf("state = %s", outcome.State)
	}
}

// pollCancelContext stays healthy for a fixed number of Err polls, then
// reports cancellation. Lands the cancel inside feature extraction
// rather than at a request boundary.
type pollCancelContext struct {
	context.Context
	mu   sync.Mutex
	left int
}

func (c *pollCancelContext) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.left > 0 {
		c.left--
		return nil
	}
	return context.Canceled
}

func TestProcessHybridCancelledDuringExtraction(t *testing.T) {
	engine := newEngine()
	ctx := &pollCancelContext{Context: context.Background(), left: 1}
	outcome, err := engine.Process(ctx, clickRequest(features.MethodHybrid))
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("error = %v, want cancelled", err)
	}
	if outcome.State != syncer.StateCancelled {
		t.Fatalf("state = %s, want cancelled", outcome.State)
	}
	if outcome.Code != services.CodeCancelled {
		t.Fatalf("code = %s, want cancelled", outcome.Code)
	}
}

func TestProcessExpiredTimeout(t *testing.T) {
	engine := newEngine()
	req := clickRequest(features.MethodEnergy)
	req.Timeout = time.Nanosecond
	outcome, _ := engine.Process(context.Background(), req)
	if outcome.State != syncer.StateCancelled {
		t.Fatalf("state = %s, want cancelled for expired deadline", outcome.State)
	}
}

func TestProcessCorrectsInvalidConfig(t *testing.T) {
	engine := newEngine()
	req := clickRequest(features.MethodEnergy)
	req.Config.HopSize = req.Config.WindowSize * 4
	outcome, err := engine.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("corrected config should still process: %v", err)
	}
	if outcome.State != syncer.StateSucceeded {
		t.Fatalf("state = %s", outcome.State)
	}
}

func TestProcessDegradesOnLowConfidence(t *testing.T) {
	engine := newEngine()
	// Uncorrelated tones cannot reach a 0.9 threshold; the engine should
	// walk the degradation ladder and give up with the best it found.
	req := syncer.Request{
		Reference: testsupport.Tone(440, testRate, 6, 0.5),
		Target:    testsupport.Tone(1000, testRate, 6, 0.5),
		Method:    features.MethodEnergy,
		Config:    align.DefaultConfig(),
	}
	req.Config.ConfidenceThreshold = 0.9

	outcome, _ := engine.Process(context.Background(), req)
	if len(engine.Degradations()) == 0 {
		t.Fatal("low confidence should consult the coordinator")
	}
	if outcome.State == syncer.StateSucceeded && outcome.Result.Confidence < 0.9 {
		// Succeeded outcomes keep the best result even when degraded
		// retries never reached the threshold.
		t.Logf("best-effort confidence %v", outcome.Result.Confidence)
	}
	if outcome.Level == 0 && outcome.State == syncer.StateSucceeded {
		t.Fatal("degraded retries should raise the level")
	}
}

func TestTotalsAccumulate(t *testing.T) {
	engine := newEngine()
	if _, err := engine.Process(context.Background(), clickRequest(features.MethodEnergy)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	req := clickRequest(features.MethodEnergy)
	req.Target = audio.Buffer{SampleRate: testRate}
	_, _ = engine.Process(context.Background(), req)

	totals := engine.Totals()
	if totals.Processed != 2 || totals.Succeeded != 1 || totals.Failed != 1 {
		t.Fatalf("totals = %+v", totals)
	}
	if totals.AvgConfidence <= 0 {
		t.Fatalf("avg confidence = %v", totals.AvgConfidence)
	}
}

func TestRegistryEmptyAfterProcessing(t *testing.T) {
	engine := newEngine()
	if _, err := engine.Process(context.Background(), clickRequest(features.MethodEnergy)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if n := engine.Registry().Len(); n != 0 {
		t.Fatalf("registry still tracks %d operations", n)
	}
}
