// Package opctl provides the cross-cutting operation controls: cooperative
// cancellation with deadlines, staged progress reporting with ETA
// estimation, and a registry of in-flight operations for inspection and
// application-wide shutdown.
package opctl
