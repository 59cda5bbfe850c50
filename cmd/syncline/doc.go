// Package main hosts the Syncline CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into sync
// engine calls: single and batch alignment, quality triage, preset and
// method listings, journal reporting, and configuration scaffolding. It
// centralizes configuration resolution and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
