package syncer

import (
	"sync"
	"time"
)

// Totals accumulates in-memory processing statistics across requests.
type Totals struct {
	mu            sync.Mutex
	processed     int64
	succeeded     int64
	failed        int64
	cancelled     int64
	degraded      int64
	wallTime      time.Duration
	sumConfidence float64
	sumRatio      float64
}

// TotalsSnapshot is a point-in-time copy of the accumulated statistics.
type TotalsSnapshot struct {
	Processed        int64
	Succeeded        int64
	Failed           int64
	Cancelled        int64
	Degraded         int64
	TotalWallTime    time.Duration
	AvgConfidence    float64
	AvgRealtimeRatio float64
}

func (t *Totals) record(outcome *Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed++
	t.wallTime += outcome.WallTime
	switch outcome.State {
	case StateSucceeded:
		t.succeeded++
		if outcome.Result != nil {
			t.sumConfidence += outcome.Result.Confidence
		}
		t.sumRatio += outcome.RealtimeRatio
	case StateCancelled:
		t.cancelled++
	default:
		t.failed++
	}
	if outcome.Level > 0 {
		t.degraded++
	}
}

// Snapshot returns a copy of the totals.
func (t *Totals) Snapshot() TotalsSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := TotalsSnapshot{
		Processed:     t.processed,
		Succeeded:     t.succeeded,
		Failed:        t.failed,
		Cancelled:     t.cancelled,
		Degraded:      t.degraded,
		TotalWallTime: t.wallTime,
	}
	if t.succeeded > 0 {
		snap.AvgConfidence = t.sumConfidence / float64(t.succeeded)
		snap.AvgRealtimeRatio = t.sumRatio / float64(t.succeeded)
	}
	return snap
}
