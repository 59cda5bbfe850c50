// Package config loads and validates the TOML configuration. Loading
// applies defaults first, then the file, then normalization (path
// expansion, trimming, lowercasing) and validation, so the rest of the
// program only ever sees a usable configuration.
package config
