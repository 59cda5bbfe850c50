package syncer

// State tracks a request through the pipeline. Terminal states are
// Succeeded, Failed, and Cancelled.
type State string

const (
	StateValidating State = "validating"
	StateExtracting State = "extracting"
	StateAligning   State = "aligning"
	StateDegrading  State = "degrading"
	StateFinalizing State = "finalizing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Terminal reports whether the state ends the request.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}
