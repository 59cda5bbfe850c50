package opctl

import (
	"sync"
	"time"
)

// Stage identifies a phase of a sync operation, in execution order.
type Stage int

const (
	StageLoading Stage = iota
	StagePreprocessing
	StageAnalyzing
	StageCorrelating
	StageFinalizing
)

func (s Stage) String() string {
	switch s {
	case StageLoading:
		return "loading"
	case StagePreprocessing:
		return "preprocessing"
	case StageAnalyzing:
		return "analyzing"
	case StageCorrelating:
		return "correlating"
	case StageFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// stageSpan maps each stage onto its share of overall progress.
var stageSpan = map[Stage][2]float64{
	StageLoading:       {0, 10},
	StagePreprocessing: {10, 25},
	StageAnalyzing:     {25, 55},
	StageCorrelating:   {55, 90},
	StageFinalizing:    {90, 100},
}

// stageETAFactor corrects the raw rate-based estimate for how the
// remaining stages typically behave relative to the current one.
var stageETAFactor = map[Stage]float64{
	StageLoading:       1.5,
	StagePreprocessing: 1.3,
	StageAnalyzing:     1.1,
	StageCorrelating:   1.0,
	StageFinalizing:    0.5,
}

// ETA clamps and sliding-window bounds.
const (
	minETA        = 100 * time.Millisecond
	maxETA        = 300 * time.Second
	minETASamples = 2
	maxETASamples = 10
)

type progressSample struct {
	at      time.Time
	overall float64
}

// Snapshot is a point-in-time view of an operation's progress.
type Snapshot struct {
	Stage      Stage
	Percent    float64
	Overall    float64
	Elapsed    time.Duration
	ETA        time.Duration
	ETAKnown   bool
	Paused     bool
	ItemsDone  int
	ItemsTotal int
}

// Progress tracks staged, monotonically non-decreasing completion.
// Updates while paused are dropped so a resumed operation continues from
// where it stopped. Safe for concurrent use.
type Progress struct {
	mu         sync.Mutex
	stage      Stage
	percent    float64
	overall    float64
	paused     bool
	itemsDone  int
	itemsTotal int
	started    time.Time
	samples    []progressSample
	now        func() time.Time
}

// NewProgress returns a tracker positioned at the start of Loading.
func NewProgress() *Progress {
	p := &Progress{now: time.Now}
	p.started = p.now()
	return p
}

// Update records completion of the given stage as a percentage in
// [0,100]. Regressions within a stage and updates for earlier stages are
// ignored, keeping overall progress monotonic.
func (p *Progress) Update(stage Stage, percent float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	if stage < p.stage {
		return
	}
	if stage == p.stage && percent < p.percent {
		return
	}
	p.stage = stage
	p.percent = percent

	span := stageSpan[stage]
	overall := span[0] + (span[1]-span[0])*percent/100
	if overall < p.overall {
		return
	}
	p.overall = overall
	p.samples = append(p.samples, progressSample{at: p.now(), overall: overall})
	if len(p.samples) > maxETASamples {
		p.samples = p.samples[len(p.samples)-maxETASamples:]
	}
}

// SetItems records discrete work-item counts for operations that process
// an enumerable set, such as a batch of targets. Counts never regress.
func (p *Progress) SetItems(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if total > p.itemsTotal {
		p.itemsTotal = total
	}
	if done > p.itemsDone {
		p.itemsDone = done
	}
}

// Pause suspends progress updates without cancelling the operation.
func (p *Progress) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
}

// Resume re-enables updates. The ETA history is dropped so time spent
// paused does not poison the rate estimate.
func (p *Progress) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	p.samples = nil
}

// Snapshot returns the current state including the ETA estimate.
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := Snapshot{
		Stage:      p.stage,
		Percent:    p.percent,
		Overall:    p.overall,
		Elapsed:    p.now().Sub(p.started),
		Paused:     p.paused,
		ItemsDone:  p.itemsDone,
		ItemsTotal: p.itemsTotal,
	}
	if eta, ok := p.estimateLocked(); ok {
		snap.ETA = eta
		snap.ETAKnown = true
	}
	return snap
}

// estimateLocked derives the ETA from the recent progress rate. Needs at
// least two samples and forward motion; the estimate is scaled by the
// current stage's factor and clamped.
func (p *Progress) estimateLocked() (time.Duration, bool) {
	if len(p.samples) < minETASamples || p.overall >= 100 {
		return 0, false
	}
	first := p.samples[0]
	last := p.samples[len(p.samples)-1]
	elapsed := last.at.Sub(first.at)
	gained := last.overall - first.overall
	if elapsed <= 0 || gained <= 0 {
		return 0, false
	}
	rate := gained / elapsed.Seconds()
	remaining := (100 - p.overall) / rate
	remaining *= stageETAFactor[p.stage]

	eta := time.Duration(remaining * float64(time.Second))
	if eta < minETA {
		eta = minETA
	} else if eta > maxETA {
		eta = maxETA
	}
	return eta, true
}
