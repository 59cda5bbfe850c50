// Package preflight analyzes raw audio and request configuration before
// any expensive processing runs. Quality analysis always returns a report;
// configuration validation clamps out-of-range fields to the nearest valid
// bound and records each correction instead of failing outright.
package preflight
