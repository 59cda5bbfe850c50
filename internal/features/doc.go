// Package features converts raw mono PCM into the time-indexed feature
// sequences the alignment engine correlates.
//
// Four methods are supported, each producing its own vector shape per frame:
// spectral-flux onset strength (scalar), chroma pitch-class energy (12
// bins), short-term energy envelope (scalar), and mel-frequency cepstral
// coefficients. The hybrid method is not a feature shape of its own; the
// alignment engine runs every concrete method and keeps the best result.
//
// Extraction is pure: identical inputs produce byte-identical sequences.
// Frames overlap by windowSize-hopSize samples and the trailing partial
// frame is dropped rather than zero-padded.
package features
