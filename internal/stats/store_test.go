package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"syncline/internal/stats"
)

func openStore(t *testing.T) *stats.Store {
	t.Helper()
	store, err := stats.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecord(method string, success bool) stats.Record {
	return stats.Record{
		OperationID:   "op-1",
		StartedAt:     time.Now(),
		WallTime:      250 * time.Millisecond,
		AudioSeconds:  10,
		RealtimeRatio: 40,
		Success:       success,
		Method:        method,
		Confidence:    0.85,
		OffsetSamples: 4410,
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := sampleRecord("energy", true)
		rec.OffsetSamples = int64(i)
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d records, want 2", len(recent))
	}
	// Newest first.
	if recent[0].OffsetSamples != 2 {
		t.Fatalf("newest record offset = %d, want 2", recent[0].OffsetSamples)
	}
	if recent[0].Method != "energy" || !recent[0].Success {
		t.Fatalf("round trip mangled record: %+v", recent[0])
	}
	if recent[0].WallTime != 250*time.Millisecond {
		t.Fatalf("wall time = %v", recent[0].WallTime)
	}
	if recent[0].StartedAt.IsZero() {
		t.Fatal("started_at not round-tripped")
	}
}

func TestSummaryAggregates(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, sampleRecord("energy", true)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, sampleRecord("spectral_flux", true)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	failed := sampleRecord("energy", false)
	failed.ErrorCode = "insufficient_data"
	failed.Confidence = 0
	if err := store.Record(ctx, failed); err != nil {
		t.Fatalf("Record: %v", err)
	}

	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalOperations != 3 || summary.Successes != 2 || summary.Failures != 1 {
		t.Fatalf("summary counts wrong: %+v", summary)
	}
	if summary.ByMethod["energy"] != 2 || summary.ByMethod["spectral_flux"] != 1 {
		t.Fatalf("method counts wrong: %+v", summary.ByMethod)
	}
	if rate := summary.SuccessRate(); rate < 0.66 || rate > 0.67 {
		t.Fatalf("success rate = %v", rate)
	}
	// Failed operations must not drag down average confidence.
	if summary.AvgConfidence < 0.84 || summary.AvgConfidence > 0.86 {
		t.Fatalf("avg confidence = %v, want ~0.85", summary.AvgConfidence)
	}
}

func TestClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.Record(ctx, sampleRecord("mfcc", true)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalOperations != 0 {
		t.Fatalf("journal not cleared: %+v", summary)
	}
}

func TestOpenSecondInstanceFails(t *testing.T) {
	dir := t.TempDir()
	first, err := stats.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer first.Close()

	if _, err := stats.Open(dir); !errors.Is(err, stats.ErrLocked) {
		t.Fatalf("second open error = %v, want ErrLocked", err)
	}
}

func TestReopenPreservesData(t *testing.T) {
	dir := t.TempDir()
	store, err := stats.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(context.Background(), sampleRecord("chroma", true)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := stats.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	summary, err := reopened.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalOperations != 1 {
		t.Fatalf("data lost across reopen: %+v", summary)
	}
}
