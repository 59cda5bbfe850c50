// Package syncer orchestrates a sync request end to end: validation,
// feature extraction, alignment, degradation-driven retries, and result
// assembly, for single targets and batches. It owns the per-request
// state machine and the processing statistics every call updates.
package syncer
