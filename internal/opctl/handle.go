package opctl

import (
	"sync"
	"time"

	"syncline/internal/services"
)

// Handle is a cooperative cancellation token. Long-running loops call
// ShouldContinue at their checkpoints; anything holding the handle can
// cancel from any goroutine. A zero deadline means no timeout.
type Handle struct {
	mu        sync.Mutex
	cond      *sync.Cond
	cancelled bool
	reason    string
	deadline  time.Time
}

// NewHandle returns a live handle with no deadline.
func NewHandle() *Handle {
	h := &Handle{}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// NewHandleWithTimeout returns a handle whose deadline is now plus d.
func NewHandleWithTimeout(d time.Duration) *Handle {
	h := NewHandle()
	h.deadline = time.Now().Add(d)
	return h
}

// Cancel marks the handle cancelled and wakes every blocked waiter.
// Idempotent; the first reason wins.
func (h *Handle) Cancel(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return
	}
	h.cancelled = true
	h.reason = reason
	h.cond.Broadcast()
}

// IsCancelled reports whether Cancel has been called. Deadline expiry is
// reported by ShouldContinue, not here.
func (h *Handle) IsCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// Deadline returns the timeout deadline, if one was set.
func (h *Handle) Deadline() (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deadline, !h.deadline.IsZero()
}

// ShouldContinue is the single checkpoint combining cancellation and
// timeout. It returns nil while the operation may proceed and a
// cancellation-coded error once it must stop.
func (h *Handle) ShouldContinue() error {
	h.mu.Lock()
	cancelled, reason, deadline := h.cancelled, h.reason, h.deadline
	h.mu.Unlock()

	if cancelled {
		if reason == "" {
			reason = "operation cancelled"
		}
		return services.Wrap(services.ErrCancelled, "opctl", "checkpoint", reason, nil)
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		return services.Wrap(services.ErrCancelled, "opctl", "checkpoint", "operation deadline exceeded", nil)
	}
	return nil
}

// Wait blocks until the handle is cancelled. Callers that also care
// about the deadline should poll ShouldContinue instead.
func (h *Handle) Wait() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for !h.cancelled {
		h.cond.Wait()
	}
}

// Reason returns the cancellation reason, empty while live.
func (h *Handle) Reason() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reason
}
