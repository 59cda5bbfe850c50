package opctl

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"syncline/internal/degrade"
)

// Operation couples a handle and a progress tracker under a stable ID.
type Operation struct {
	ID       string
	Name     string
	Started  time.Time
	Handle   *Handle
	Progress *Progress
}

// OperationInfo is the read-only registry view of one operation.
type OperationInfo struct {
	ID        string
	Name      string
	Started   time.Time
	Cancelled bool
	Progress  Snapshot
	Resources degrade.ResourceConstraints
}

// Registry tracks every in-flight operation. Used by the orchestrator to
// expose inspection and by shutdown paths to cancel everything at once.
type Registry struct {
	mu    sync.Mutex
	ops   map[string]*Operation
	probe func() degrade.ResourceConstraints
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ops:   make(map[string]*Operation),
		probe: degrade.ProbeResources,
	}
}

// Register creates and tracks a new operation with a fresh handle and
// progress tracker. timeout <= 0 means no deadline.
func (r *Registry) Register(name string, timeout time.Duration) *Operation {
	handle := NewHandle()
	if timeout > 0 {
		handle = NewHandleWithTimeout(timeout)
	}
	op := &Operation{
		ID:       uuid.NewString(),
		Name:     name,
		Started:  time.Now(),
		Handle:   handle,
		Progress: NewProgress(),
	}
	r.mu.Lock()
	r.ops[op.ID] = op
	r.mu.Unlock()
	return op
}

// Deregister removes a finished operation.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	delete(r.ops, id)
	r.mu.Unlock()
}

// Get returns the operation with the given ID.
func (r *Registry) Get(id string) (*Operation, bool) {
	r.mu.Lock()
	op, ok := r.ops[id]
	r.mu.Unlock()
	return op, ok
}

// Cancel cancels a single operation by ID.
func (r *Registry) Cancel(id, reason string) bool {
	op, ok := r.Get(id)
	if !ok {
		return false
	}
	op.Handle.Cancel(reason)
	return true
}

// CancelAll cancels every tracked operation. Operations stay registered
// until their owners deregister them, so callers can still observe the
// cancelled state.
func (r *Registry) CancelAll(reason string) int {
	r.mu.Lock()
	ops := make([]*Operation, 0, len(r.ops))
	for _, op := range r.ops {
		ops = append(ops, op)
	}
	r.mu.Unlock()
	for _, op := range ops {
		op.Handle.Cancel(reason)
	}
	return len(ops)
}

// Snapshot lists every tracked operation sorted by start time.
func (r *Registry) Snapshot() []OperationInfo {
	r.mu.Lock()
	ops := make([]*Operation, 0, len(r.ops))
	for _, op := range r.ops {
		ops = append(ops, op)
	}
	r.mu.Unlock()

	// One probe per snapshot; the machine state is shared across
	// operations.
	resources := r.probe()
	infos := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		infos = append(infos, OperationInfo{
			ID:        op.ID,
			Name:      op.Name,
			Started:   op.Started,
			Cancelled: op.Handle.IsCancelled(),
			Progress:  op.Progress.Snapshot(),
			Resources: resources,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Started.Before(infos[j].Started) })
	return infos
}

// Len reports the number of tracked operations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}
