// Package history persists job submission history in SQLite.
//
// The run log owns dedup decisions; this store only keeps an audit trail that
// survives supervisor restarts, surfaced by `rcsup jobs`.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// schemaVersion is bumped when the schema changes; mismatched databases are
// rejected rather than migrated (delete the file to reset).
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_key TEXT NOT NULL,
	command TEXT NOT NULL,
	src_fs TEXT NOT NULL,
	dst_fs TEXT NOT NULL,
	job_id TEXT NOT NULL,
	submitted_at TEXT NOT NULL
);
CREATE INDEX idx_submissions_task_key ON submissions(task_key);
CREATE TABLE schema_version (version INTEGER NOT NULL);
`

// ErrSchemaMismatch indicates the database was created by another version.
var ErrSchemaMismatch = errors.New("history schema version mismatch")

// Row is one recorded job submission.
type Row struct {
	ID          int64
	TaskKey     string
	Command     string
	SrcFs       string
	DstFs       string
	JobID       string
	SubmittedAt time.Time
}

// Store manages submission history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Record appends one submission row.
func (s *Store) Record(ctx context.Context, row Row) error {
	submittedAt := row.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (task_key, command, src_fs, dst_fs, job_id, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		row.TaskKey, row.Command, row.SrcFs, row.DstFs, row.JobID,
		submittedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

// Recent returns the most recent submissions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_key, command, src_fs, dst_fs, job_id, submitted_at
		 FROM submissions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var row Row
		var submittedAt string
		if err := rows.Scan(&row.ID, &row.TaskKey, &row.Command, &row.SrcFs, &row.DstFs, &row.JobID, &submittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339, submittedAt); parseErr == nil {
			row.SubmittedAt = parsed
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return result, nil
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
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
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
