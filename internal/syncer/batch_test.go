package syncer_test

import (
	"context"
	"errors"
	"testing"

	"syncline/internal/align"
	"syncline/internal/audio"
	"syncline/internal/features"
	"syncline/internal/services"
	"syncline/internal/syncer"
	"syncline/internal/testsupport"
)

func TestProcessBatchReturnsResultsInOrder(t *testing.T) {
	engine := syncer.New(syncer.Options{MaxConcurrent: 2})
	reference := testsupport.ClickTrack(21, testRate, 6)
	offsets := []int{2205, 4410, 8820, 13230}
	targets := make([]audio.Buffer, len(offsets))
	for i, offset := range offsets {
		targets[i] = testsupport.Shift(reference, offset)
	}

	outcomes, err := engine.ProcessBatch(context.Background(), reference, targets, syncer.Request{
		Method: features.MethodEnergy,
		Config: align.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if len(outcomes) != len(offsets) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(offsets))
	}
	for i, outcome := range outcomes {
		if outcome.State != syncer.StateSucceeded {
			t.Fatalf("slot %d state = %s (%v)", i, outcome.State, outcome.Err)
		}
		got := outcome.Result.OffsetSamples
		want := int64(offsets[i])
		if diff := got - want; diff < -45 || diff > 45 {
			t.Fatalf("slot %d offset = %d, want ~%d", i, got, want)
		}
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	engine := syncer.New(syncer.Options{})
	reference := testsupport.ClickTrack(22, testRate, 6)
	targets := []audio.Buffer{
		testsupport.Shift(reference, 4410),
		{SampleRate: testRate}, // empty buffer fails this slot only
		testsupport.Shift(reference, 8820),
	}

	outcomes, err := engine.ProcessBatch(context.Background(), reference, targets, syncer.Request{
		Method: features.MethodEnergy,
		Config: align.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if outcomes[0].State != syncer.StateSucceeded || outcomes[2].State != syncer.StateSucceeded {
		t.Fatalf("healthy slots failed: %s / %s", outcomes[0].State, outcomes[2].State)
	}
	if outcomes[1].State != syncer.StateFailed {
		t.Fatalf("empty slot state = %s", outcomes[1].State)
	}
	if !errors.Is(outcomes[1].Err, services.ErrInvalidInput) {
		t.Fatalf("empty slot error = %v", outcomes[1].Err)
	}
}

func TestProcessBatchRejectsEmptyInput(t *testing.T) {
	engine := syncer.New(syncer.Options{})
	if _, err := engine.ProcessBatch(context.Background(), testsupport.ClickTrack(1, testRate, 6), nil, syncer.Request{
		Method: features.MethodEnergy,
		Config: align.DefaultConfig(),
	}); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
}

func TestProcessBatchRejectsBadReference(t *testing.T) {
	engine := syncer.New(syncer.Options{})
	targets := []audio.Buffer{testsupport.ClickTrack(2, testRate, 6)}
	_, err := engine.ProcessBatch(context.Background(), audio.Buffer{SampleRate: testRate}, targets, syncer.Request{
		Method: features.MethodEnergy,
		Config: align.DefaultConfig(),
	})
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
}

func TestProcessBatchCancelledContext(t *testing.T) {
	engine := syncer.New(syncer.Options{})
	reference := testsupport.ClickTrack(23, testRate, 6)
	targets := []audio.Buffer{testsupport.Shift(reference, 4410)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcomes, err := engine.ProcessBatch(ctx, reference, targets, syncer.Request{
		Method: features.MethodEnergy,
		Config: align.DefaultConfig(),
	})
	if err == nil {
		t.Fatal("cancelled batch should surface an error")
	}
	for _, outcome := range outcomes {
		if outcome != nil && outcome.State == syncer.StateSucceeded {
			t.Fatal("no slot should succeed after cancellation")
		}
	}
}
