// Package degrade recovers from alignment failures by trading quality
// for robustness. The coordinator walks an ordered ladder of degradation
// levels and applies the first strategy at each level that changes the
// request, reporting the expected confidence, accuracy, and speed impact
// so the orchestrator can decide whether a degraded retry is worthwhile.
package degrade
