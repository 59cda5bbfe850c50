package syncer

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"syncline/internal/audio"
	"syncline/internal/features"
	"syncline/internal/logging"
	"syncline/internal/services"
)

// ProcessBatch aligns every target against the reference and returns
// exactly one outcome per target, in input order. A failing target only
// marks its own slot; the others proceed. The returned error reports
// reference-level problems and batch-wide cancellation only.
func (e *Engine) ProcessBatch(ctx context.Context, reference audio.Buffer, targets []audio.Buffer, req Request) ([]*Outcome, error) {
	if len(targets) == 0 {
		return nil, services.Wrap(services.ErrInvalidInput, "syncer", "batch", "no targets supplied", nil)
	}

	// Reference problems fail the whole batch up front.
	if err := validateForBatch(reference, req); err != nil {
		return nil, err
	}

	shared, err := e.extractSharedReference(reference, req)
	if err != nil {
		return nil, err
	}

	// The batch itself is a tracked operation so inspection shows how
	// many slots have finished alongside the per-slot progress.
	batchOp := e.registry.Register("batch", req.Timeout)
	defer e.registry.Deregister(batchOp.ID)
	batchOp.Progress.SetItems(0, len(targets))

	outcomes := make([]*Outcome, len(targets))
	var done atomic.Int64
	sem := semaphore.NewWeighted(int64(e.maxConcurrent))
	group, groupCtx := errgroup.WithContext(ctx)

	for i := range targets {
		group.Go(func() error {
			defer func() {
				batchOp.Progress.SetItems(int(done.Add(1)), len(targets))
			}()
			if err := sem.Acquire(groupCtx, 1); err != nil {
				outcomes[i] = &Outcome{
					State: StateCancelled,
					Code:  services.CodeCancelled,
					Err:   services.Wrap(services.ErrCancelled, "syncer", "batch", "batch cancelled before slot started", err),
				}
				return nil
			}
			defer sem.Release(1)

			slot := Request{
				Reference: reference,
				Target:    targets[i],
				Method:    req.Method,
				Config:    req.Config,
				Timeout:   req.Timeout,
			}
			op := e.registry.Register(fmt.Sprintf("batch[%d]", i), slot.Timeout)
			defer e.registry.Deregister(op.ID)

			// Slot failures live in the outcome, never in the group error.
			outcome, _ := e.run(logging.WithStage(groupCtx, "batch"), op, slot, shared)
			outcomes[i] = outcome
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, ctx.Err()
}

// validateForBatch checks the reference and configuration once before
// any slot runs.
func validateForBatch(reference audio.Buffer, req Request) error {
	if reference.Empty() {
		return services.Wrap(services.ErrInvalidInput, "syncer", "batch", "reference buffer is empty", nil)
	}
	if !reference.RateValid() {
		return services.Wrap(services.ErrInvalidInput, "syncer", "batch",
			fmt.Sprintf("reference sample rate %.0f Hz unsupported", reference.SampleRate), nil)
	}
	return nil
}

// extractSharedReference builds the per-method reference features reused
// by every slot. Methods the reference is too short for are skipped here
// and re-checked per slot.
func (e *Engine) extractSharedReference(reference audio.Buffer, req Request) (*refFeatures, error) {
	cfg := req.Config
	methods := []features.Method{req.Method}
	if req.Method == features.MethodHybrid {
		methods = features.ConcreteMethods
	}

	shared := &refFeatures{
		windowSize: cfg.WindowSize,
		hopSize:    cfg.HopSize,
		sequences:  make(map[features.Method]*features.Sequence, len(methods)),
	}
	var lastErr error
	for _, m := range methods {
		seq, err := features.Extract(reference, m, cfg.WindowSize, cfg.HopSize)
		if err != nil {
			lastErr = err
			continue
		}
		shared.sequences[m] = seq
	}
	if len(shared.sequences) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, services.Wrap(services.ErrInsufficientData, "syncer", "batch", "reference too short for any method", nil)
	}
	return shared, nil
}
