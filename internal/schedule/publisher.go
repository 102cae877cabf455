// Package schedule translates the task list into schedule entries and runs
// the evaluator child that fires executor invocations at the right times.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"rcsup/internal/logging"
	"rcsup/internal/runlog"
	"rcsup/internal/tasks"
)

// Entry maps a cron expression to one executor invocation payload.
type Entry struct {
	Cron    string `json:"cron"`
	Payload string `json:"payload"`
}

// Publisher writes the schedule-entry store consumed by the evaluator.
type Publisher struct {
	runLog       *runlog.Log
	schedulePath string
	logger       *slog.Logger
}

// NewPublisher constructs a publisher.
func NewPublisher(runLog *runlog.Log, schedulePath string, logger *slog.Logger) *Publisher {
	return &Publisher{
		runLog:       runLog,
		schedulePath: schedulePath,
		logger:       logging.NewComponentLogger(logger, "publisher"),
	}
}

// Publish truncates the run log and rewrites the schedule-entry store from
// the task list. Invalid tasks are logged and skipped; the pass continues.
// Republishing an unchanged task list produces byte-identical output.
func (p *Publisher) Publish(taskList []tasks.Spec) error {
	if err := p.runLog.Truncate(); err != nil {
		return err
	}

	entries := make([]Entry, 0, len(taskList))
	for i, spec := range taskList {
		if err := spec.Validate(); err != nil {
			p.logger.Warn("task skipped",
				logging.Int("index", i),
				logging.Error(err),
			)
			continue
		}
		payload, err := spec.Payload()
		if err != nil {
			p.logger.Warn("task skipped", logging.Int("index", i), logging.Error(err))
			continue
		}
		entries = append(entries, Entry{Cron: spec.Cron, Payload: payload})
		p.logger.Info("schedule entry published",
			logging.String(logging.FieldTaskKey, spec.Key()),
			logging.String("cron", spec.Cron),
		)
	}

	encoded, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schedule entries: %w", err)
	}
	if err := os.WriteFile(p.schedulePath, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("write schedule file: %w", err)
	}
	return nil
}

// LoadEntries reads the schedule-entry store; a missing file is empty.
func LoadEntries(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse schedule file: %w", err)
	}
	return entries, nil
}
