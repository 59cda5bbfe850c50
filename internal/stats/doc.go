// Package stats persists per-operation processing statistics to a local
// SQLite journal so throughput and confidence trends survive process
// restarts. A file lock keeps concurrent CLI invocations from racing on
// the database file.
package stats
