package syncer

import (
	"context"
	"log/slog"
	"time"

	"syncline/internal/align"
	"syncline/internal/audio"
	"syncline/internal/degrade"
	"syncline/internal/features"
	"syncline/internal/logging"
	"syncline/internal/opctl"
	"syncline/internal/preflight"
	"syncline/internal/services"
	"syncline/internal/stats"
)

// maxDegradationAttempts caps the retry loop independently of the level
// ladder, for safety against a miscounting policy.
const maxDegradationAttempts = 4

// Request describes one sync job. The buffers are borrowed from the
// caller for the duration of the call only.
type Request struct {
	Reference audio.Buffer
	Target    audio.Buffer
	Method    features.Method
	Config    align.Config

	// Timeout bounds the operation; zero means no deadline.
	Timeout time.Duration
}

// Outcome carries everything a caller needs about a finished request.
// Result is nil when the request failed before producing one. Err holds
// the failure for failed and cancelled outcomes; batch slots carry it
// here instead of aborting their siblings.
type Outcome struct {
	State            State
	Code             services.Code
	Result           *align.Result
	ReferenceQuality preflight.QualityReport
	TargetQuality    preflight.QualityReport
	Level            degrade.Level
	OperationID      string
	WallTime         time.Duration
	RealtimeRatio    float64
	Err              error
}

// Options configures an Engine.
type Options struct {
	Logger *slog.Logger

	// Policy overrides the degradation ladder; nil uses the default.
	Policy degrade.Policy

	// Journal, when set, receives a record per processed request.
	Journal *stats.Store

	// MaxConcurrent bounds batch parallelism; <= 0 means 4.
	MaxConcurrent int
}

// Engine sequences validation, extraction, alignment, and recovery.
type Engine struct {
	logger        *slog.Logger
	aligner       *align.Engine
	coordinator   *degrade.Coordinator
	registry      *opctl.Registry
	journal       *stats.Store
	totals        *Totals
	maxConcurrent int
}

// New constructs an engine.
func New(opts Options) *Engine {
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Engine{
		logger:        logging.NewComponentLogger(opts.Logger, "syncer"),
		aligner:       align.NewEngine(opts.Logger),
		coordinator:   degrade.NewCoordinator(opts.Logger, opts.Policy),
		registry:      opctl.NewRegistry(),
		journal:       opts.Journal,
		totals:        &Totals{},
		maxConcurrent: maxConcurrent,
	}
}

// Registry exposes the operation registry for inspection and shutdown.
func (e *Engine) Registry() *opctl.Registry {
	return e.registry
}

// Totals returns the in-memory statistics accumulated since startup.
func (e *Engine) Totals() TotalsSnapshot {
	return e.totals.Snapshot()
}

// Degradations returns the coordinator's attempt log.
func (e *Engine) Degradations() []degrade.Attempt {
	return e.coordinator.Attempts()
}

// Process runs one sync request to completion. The returned Outcome is
// always non-nil; the error mirrors Outcome.Err for ergonomic call
// sites.
func (e *Engine) Process(ctx context.Context, req Request) (*Outcome, error) {
	op := e.registry.Register("process", req.Timeout)
	defer e.registry.Deregister(op.ID)
	return e.run(ctx, op, req, nil)
}

// run executes the pipeline. sharedRef, when non-nil, supplies reference
// features extracted once by the batch path; it is keyed by the framing
// it was extracted with, so degraded retries that change the framing
// fall back to fresh extraction.
func (e *Engine) run(ctx context.Context, op *opctl.Operation, req Request, sharedRef *refFeatures) (*Outcome, error) {
	started := time.Now()
	outcome := &Outcome{State: StateValidating, OperationID: op.ID}
	ctx = logging.WithOperationID(ctx, op.ID)
	logger := logging.WithContext(ctx, e.logger)

	check := func() error {
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrCancelled, "syncer", "checkpoint", "context cancelled", err)
		}
		return op.Handle.ShouldContinue()
	}

	finish := func() (*Outcome, error) {
		outcome.WallTime = time.Since(started)
		if seconds := req.Reference.Seconds(); seconds > 0 {
			outcome.RealtimeRatio = seconds / outcome.WallTime.Seconds()
		}
		e.finalize(ctx, op, req, outcome)
		return outcome, outcome.Err
	}
	fail := func(err error) (*Outcome, error) {
		code := services.CodeFor(err)
		outcome.Code = code
		outcome.Err = err
		if code == services.CodeCancelled {
			outcome.State = StateCancelled
		} else {
			outcome.State = StateFailed
		}
		return finish()
	}

	// Validating.
	op.Progress.Update(opctl.StageLoading, 50)
	configReport := preflight.ValidateConfiguration(req.Config)
	cfg := configReport.Corrected
	for _, msg := range configReport.Errors {
		logger.Warn("configuration corrected", logging.String("correction", msg))
	}
	if err := preflight.ValidateSyncRequest(req.Reference, req.Target, req.Method, cfg); err != nil {
		return fail(err)
	}
	op.Progress.Update(opctl.StageLoading, 100)

	// Preprocessing: quality analysis feeds degradation decisions.
	outcome.ReferenceQuality = preflight.AnalyzeAudioQuality(req.Reference, cfg.NoiseGateDB)
	op.Progress.Update(opctl.StagePreprocessing, 50)
	outcome.TargetQuality = preflight.AnalyzeAudioQuality(req.Target, cfg.NoiseGateDB)
	op.Progress.Update(opctl.StagePreprocessing, 100)
	if err := check(); err != nil {
		return fail(err)
	}

	method := req.Method
	threshold := cfg.ConfidenceThreshold
	var best *align.Result
	var attempted []degrade.Strategy
	var lastErr error

	for attempt := 0; ; attempt++ {
		outcome.State = StateExtracting
		result, err := e.extractAndAlign(op, req, method, cfg, sharedRef, check, &outcome.State)
		if err != nil {
			if !services.Recoverable(err) {
				// Input, resource, and cancellation errors are not the
				// coordinator's to fix.
				if best != nil {
					break
				}
				return fail(err)
			}
			lastErr = err
		} else {
			if best == nil || result.Confidence > best.Confidence {
				best = result
			}
			if result.Confidence >= threshold {
				break
			}
			lastErr = services.Wrap(services.ErrProcessingFailed, "aligning", method.String(),
				"confidence below threshold", nil)
		}

		if attempt >= maxDegradationAttempts {
			break
		}

		outcome.State = StateDegrading
		recovery := e.coordinator.AttemptRecovery(degrade.Context{
			Err:       lastErr,
			Level:     outcome.Level,
			Attempted: attempted,
			Quality:   &outcome.ReferenceQuality,
			Config:    cfg,
			Method:    method,
		})
		if !recovery.CanRecover {
			break
		}
		outcome.Level = recovery.LevelApplied
		attempted = append(attempted, recovery.StrategyUsed)
		cfg = recovery.ModifiedConfig
		method = recovery.RecommendedMethod
		if err := check(); err != nil {
			return fail(err)
		}
	}

	if best == nil {
		if lastErr == nil {
			lastErr = services.Wrap(services.ErrProcessingFailed, "aligning", method.String(), "no alignment produced", nil)
		}
		return fail(lastErr)
	}

	outcome.State = StateSucceeded
	outcome.Code = best.Code
	outcome.Result = best
	return finish()
}

// refFeatures caches reference features per method for batch reuse.
type refFeatures struct {
	windowSize int
	hopSize    int
	sequences  map[features.Method]*features.Sequence
}

func (e *Engine) extractAndAlign(
	op *opctl.Operation,
	req Request,
	method features.Method,
	cfg align.Config,
	sharedRef *refFeatures,
	check func() error,
	state *State,
) (*align.Result, error) {
	methods := []features.Method{method}
	if method == features.MethodHybrid {
		methods = features.ConcreteMethods
	}

	refs := make(map[features.Method]*features.Sequence, len(methods))
	tgts := make(map[features.Method]*features.Sequence, len(methods))
	for i, m := range methods {
		ref, err := e.referenceSequence(req, m, cfg, sharedRef, check)
		if err != nil {
			if method != features.MethodHybrid || services.CodeFor(err) == services.CodeCancelled {
				return nil, err
			}
			continue
		}
		tgt, err := features.ExtractChecked(req.Target, m, cfg.WindowSize, cfg.HopSize, check)
		if err != nil {
			if method != features.MethodHybrid || services.CodeFor(err) == services.CodeCancelled {
				return nil, err
			}
			continue
		}
		refs[m] = ref
		tgts[m] = tgt
		op.Progress.Update(opctl.StageAnalyzing, float64(i+1)/float64(len(methods))*100)
	}
	if len(refs) == 0 {
		return nil, services.Wrap(services.ErrInsufficientData, "extracting", method.String(),
			"no feature method had enough material", nil)
	}
	op.Progress.Update(opctl.StageAnalyzing, 100)

	*state = StateAligning
	op.Progress.Update(opctl.StageCorrelating, 0)
	var result *align.Result
	var err error
	if method == features.MethodHybrid {
		result, err = e.aligner.AlignHybrid(refs, tgts, cfg, check)
	} else {
		result, err = e.aligner.Align(refs[method], tgts[method], cfg, check)
	}
	if err != nil {
		return nil, err
	}
	op.Progress.Update(opctl.StageCorrelating, 100)
	return result, nil
}

// referenceSequence reuses batch-shared reference features when the
// framing still matches, otherwise extracts fresh.
func (e *Engine) referenceSequence(
	req Request,
	method features.Method,
	cfg align.Config,
	sharedRef *refFeatures,
	check func() error,
) (*features.Sequence, error) {
	if sharedRef != nil && sharedRef.windowSize == cfg.WindowSize && sharedRef.hopSize == cfg.HopSize {
		if seq, ok := sharedRef.sequences[method]; ok {
			return seq, nil
		}
	}
	return features.ExtractChecked(req.Reference, method, cfg.WindowSize, cfg.HopSize, check)
}

// finalize updates progress, totals, and the journal. Journal failures
// are logged, never surfaced; statistics must not break processing.
func (e *Engine) finalize(ctx context.Context, op *opctl.Operation, req Request, outcome *Outcome) {
	logger := logging.WithContext(ctx, e.logger)
	outcome.Level = maxLevel(outcome.Level, degrade.LevelNone)
	op.Progress.Update(opctl.StageFinalizing, 100)

	method := req.Method.String()
	confidence := 0.0
	var offset int64
	if outcome.Result != nil {
		method = outcome.Result.Method
		confidence = outcome.Result.Confidence
		offset = outcome.Result.OffsetSamples
	}
	e.totals.record(outcome)

	if e.journal != nil {
		rec := stats.Record{
			OperationID:      op.ID,
			StartedAt:        op.Started,
			WallTime:         outcome.WallTime,
			AudioSeconds:     req.Reference.Seconds(),
			RealtimeRatio:    outcome.RealtimeRatio,
			Success:          outcome.State == StateSucceeded,
			Method:           method,
			Confidence:       confidence,
			OffsetSamples:    offset,
			DegradationLevel: int(outcome.Level),
			ErrorCode:        errorCode(outcome),
		}
		if err := e.journal.Record(ctx, rec); err != nil {
			logger.Warn("stats journal write failed", logging.Error(err))
		}
	}

	logger.Info("request finished",
		logging.String("state", string(outcome.State)),
		logging.String(logging.FieldMethod, method),
		logging.Float64("confidence", confidence),
		logging.Duration("wall_time", outcome.WallTime),
	)
}

func errorCode(outcome *Outcome) string {
	if outcome.State == StateSucceeded {
		return ""
	}
	return string(outcome.Code)
}

func maxLevel(a, b degrade.Level) degrade.Level {
	if a > b {
		return a
	}
	return b
}
