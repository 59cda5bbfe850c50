// Package audio defines the buffer value type shared by every stage of the
// synchronization pipeline.
//
// A Buffer is an immutable view over caller-owned mono PCM samples plus a
// sample rate. The engine never retains a buffer past the call that received
// it, and never mutates the sample slice. Validation bounds for rates and
// sample counts live here so the preflight and orchestrator packages agree on
// what constitutes a hard input violation.
package audio
