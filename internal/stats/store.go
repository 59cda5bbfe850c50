package stats

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on schema changes; a mismatched journal must
// be cleared rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the journal was written by a different
// schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrLocked indicates another process holds the journal lock.
var ErrLocked = errors.New("stats journal is locked by another process")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages the stats journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the journal in dir. The directory must
// already exist; config.EnsureDirectories handles creation.
func Open(dir string) (*Store, error) {
	lock := flock.New(filepath.Join(dir, "stats.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire stats lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(dir, "stats.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database and releases the journal lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.db != nil {
		firstErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: journal has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Record appends one operation to the journal.
func (s *Store) Record(ctx context.Context, rec Record) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO operations (
				operation_id, started_at, wall_time_ms, audio_seconds,
				realtime_ratio, success, method, confidence,
				offset_samples, degradation_level, error_code
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.OperationID,
			rec.StartedAt.UTC().Format(time.RFC3339Nano),
			float64(rec.WallTime)/float64(time.Millisecond),
			rec.AudioSeconds,
			rec.RealtimeRatio,
			boolToInt(rec.Success),
			rec.Method,
			rec.Confidence,
			rec.OffsetSamples,
			rec.DegradationLevel,
			rec.ErrorCode,
		)
		return err
	})
}

// Recent returns the newest records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operation_id, started_at, wall_time_ms, audio_seconds,
			realtime_ratio, success, method, confidence, offset_samples,
			degradation_level, error_code
		FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent operations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec        Record
			startedAt  string
			wallTimeMS float64
			success    int
		)
		if err := rows.Scan(
			&rec.ID, &rec.OperationID, &startedAt, &wallTimeMS,
			&rec.AudioSeconds, &rec.RealtimeRatio, &success, &rec.Method,
			&rec.Confidence, &rec.OffsetSamples, &rec.DegradationLevel,
			&rec.ErrorCode,
		); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		rec.WallTime = time.Duration(wallTimeMS * float64(time.Millisecond))
		rec.Success = success != 0
		if parsed, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
			rec.StartedAt = parsed
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Summary aggregates the whole journal.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	ctx = ensureContext(ctx)
	summary := Summary{ByMethod: make(map[string]int64)}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(success), 0),
			COALESCE(AVG(realtime_ratio), 0),
			COALESCE(AVG(CASE WHEN success = 1 THEN confidence END), 0)
		FROM operations`).Scan(
		&summary.TotalOperations,
		&summary.Successes,
		&summary.AvgRealtimeRatio,
		&summary.AvgConfidence,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate operations: %w", err)
	}
	summary.Failures = summary.TotalOperations - summary.Successes

	rows, err := s.db.QueryContext(ctx, "SELECT method, COUNT(*) FROM operations GROUP BY method")
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate methods: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var method string
		var count int64
		if err := rows.Scan(&method, &count); err != nil {
			return Summary{}, fmt.Errorf("scan method count: %w", err)
		}
		summary.ByMethod[method] = count
	}
	return summary, rows.Err()
}

// Clear removes every record from the journal.
func (s *Store) Clear(ctx context.Context) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM operations")
		return err
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
