// Package runlog persists the append-only job submission log used for
// per-task deduplication.
//
// Each line binds a task key to the daemon-assigned identifier of its most
// recent job: `<command> <srcFs> -> <dstFs> <jobId>`. Only the latest record
// per key is authoritative. Executor invocations run as independent
// processes, so the check-then-append sequence is serialized with a file
// lock; without it two near-simultaneous triggers for the same key could both
// conclude no job is running.
package runlog

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/gofrs/flock"
)

// Record binds a task key to a submitted job identifier.
type Record struct {
	TaskKey string
	JobID   string
}

// Log is a file-backed, lock-guarded run log.
type Log struct {
	path string
	lock *flock.Flock
}

// New creates a run log handle for the given path. The lock lives in a
// sibling file so truncation never races lock holders.
func New(path string) *Log {
	return &Log{path: path, lock: flock.New(path + ".lock")}
}

// View exposes the unlocked operations available inside WithLock.
type View struct {
	log *Log
}

// WithLock runs fn while holding the exclusive run-log lock. The executor's
// dedup decision (lookup, then append after submission) runs inside one
// critical section.
func (l *Log) WithLock(fn func(View) error) error {
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("acquire run log lock: %w", err)
	}
	defer func() { _ = l.lock.Unlock() }()
	return fn(View{log: l})
}

// Latest reads the run log and collapses it to the latest record per key.
func (l *Log) Latest() (map[string]string, error) {
	var latest map[string]string
	err := l.WithLock(func(v View) error {
		var readErr error
		latest, readErr = v.Latest()
		return readErr
	})
	return latest, err
}

// Append adds one record under the lock.
func (l *Log) Append(rec Record) error {
	return l.WithLock(func(v View) error { return v.Append(rec) })
}

// Truncate discards all records.
func (l *Log) Truncate() error {
	return l.WithLock(func(v View) error {
		if err := os.WriteFile(l.path, nil, 0o644); err != nil {
			return fmt.Errorf("truncate run log: %w", err)
		}
		return nil
	})
}

// Latest scans the log, last-write-wins per task key. Unparsable lines are
// skipped so a torn write never poisons the whole log.
func (v View) Latest() (map[string]string, error) {
	latest := make(map[string]string)

	file, err := os.Open(v.log.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return latest, nil
		}
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		rec, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		latest[rec.TaskKey] = rec.JobID
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan run log: %w", err)
	}
	return latest, nil
}

// Append writes one record to the end of the log.
func (v View) Append(rec Record) error {
	file, err := os.OpenFile(v.log.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "%s %s\n", rec.TaskKey, rec.JobID); err != nil {
		return fmt.Errorf("append run log record: %w", err)
	}
	return nil
}

func parseLine(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	idx := strings.LastIndex(line, " ")
	if idx <= 0 {
		return Record{}, false
	}
	key := strings.TrimSpace(line[:idx])
	jobID := strings.TrimSpace(line[idx+1:])
	if jobID == "" || !strings.Contains(key, " -> ") {
		return Record{}, false
	}
	return Record{TaskKey: key, JobID: jobID}, true
}
