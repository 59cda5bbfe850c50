// Package dsp provides the signal-processing primitives the feature
// extractor and alignment engine are built on: a radix-2 FFT, window
// functions, mel filterbanks, the DCT-II used for cepstral coefficients, and
// a handful of numeric helpers.
//
// Everything here is deterministic and allocation-predictable; the same
// input always produces byte-identical output on the same platform.
package dsp
