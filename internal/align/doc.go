// Package align locates the time offset between two feature sequences by
// normalized cross-correlation and scores how trustworthy that offset is.
//
// The search mean-centers each feature dimension, slides the target across
// the reference over every valid lag up to the configured maximum offset,
// and picks the lag with the highest normalized correlation, preferring the
// smaller-magnitude offset on ties. Confidence is a fixed weighted blend of
// correlation strength, peak sharpness, and the primary-to-secondary peak
// ratio, each normalized to [0,1].
//
// Drift detection re-runs the search on contiguous segments of the
// reference and fits a line through the per-segment offsets; a slope beyond
// the ppm tolerance flags diverging clocks and yields correction keyframes.
package align
