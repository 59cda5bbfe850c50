package stats

import "time"

// Record captures one completed sync operation for the journal.
type Record struct {
	ID               int64
	OperationID      string
	StartedAt        time.Time
	WallTime         time.Duration
	AudioSeconds     float64
	RealtimeRatio    float64
	Success          bool
	Method           string
	Confidence       float64
	OffsetSamples    int64
	DegradationLevel int
	ErrorCode        string
}

// Summary aggregates the journal for reporting.
type Summary struct {
	TotalOperations  int64
	Successes        int64
	Failures         int64
	AvgRealtimeRatio float64
	AvgConfidence    float64
	ByMethod         map[string]int64
}

// SuccessRate returns the fraction of successful operations, 0 when the
// journal is empty.
func (s Summary) SuccessRate() float64 {
	if s.TotalOperations == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.TotalOperations)
}
