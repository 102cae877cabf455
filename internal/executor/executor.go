// Package executor runs one schedule-triggered task invocation: validate the
// task, decide via the run log whether a job for the same logical task is
// still running, and submit a new asynchronous job when it is not.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rcsup/internal/faults"
	"rcsup/internal/history"
	"rcsup/internal/logging"
	"rcsup/internal/rcclient"
	"rcsup/internal/runlog"
	"rcsup/internal/tasks"
)

// RC is the slice of the RC client the executor needs.
type RC interface {
	SubmitJob(ctx context.Context, command string, opts map[string]any) (string, error)
	JobStatus(ctx context.Context, jobID string) (rcclient.JobStatus, error)
}

// Recorder receives an audit row for every successful submission.
type Recorder interface {
	Record(ctx context.Context, row history.Row) error
}

// Executor deduplicates and submits jobs for one task invocation.
type Executor struct {
	rc      RC
	log     *runlog.Log
	history Recorder
	logger  *slog.Logger
}

// New constructs an executor. The history recorder may be nil.
func New(rc RC, log *runlog.Log, recorder Recorder, logger *slog.Logger) *Executor {
	return &Executor{
		rc:      rc,
		log:     log,
		history: recorder,
		logger:  logging.NewComponentLogger(logger, "executor"),
	}
}

// Execute runs the dedup decision and, when warranted, submits a new job.
// A skip because the previous job is still running is a success: the next
// scheduled trigger retries naturally.
func (e *Executor) Execute(ctx context.Context, spec tasks.Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	key := spec.Key()
	logger := e.logger.With(
		logging.String(logging.FieldTaskKey, key),
		logging.String(logging.FieldInvocationID, uuid.NewString()),
	)

	var submitted string
	err := e.log.WithLock(func(v runlog.View) error {
		latest, err := v.Latest()
		if err != nil {
			return err
		}

		if prior, ok := latest[key]; ok {
			status, statusErr := e.rc.JobStatus(ctx, prior)
			switch {
			case errors.Is(statusErr, faults.ErrNotFound):
				// The daemon restarted or expired the job; treat as no prior job.
				logger.Debug("prior job unknown to daemon", logging.String(logging.FieldJobID, prior))
			case statusErr != nil:
				return statusErr
			case !status.Finished:
				logger.Info("job still running, skipping submission",
					logging.String(logging.FieldJobID, prior))
				return nil
			default:
				logger.Debug("prior job finished", logging.String(logging.FieldJobID, prior))
			}
		}

		jobID, err := e.rc.SubmitJob(ctx, spec.Command, spec.Opts)
		if err != nil {
			return err
		}
		if err := v.Append(runlog.Record{TaskKey: key, JobID: jobID}); err != nil {
			return err
		}
		submitted = jobID
		logger.Info("job submitted", logging.String(logging.FieldJobID, jobID))
		return nil
	})
	if err != nil {
		return err
	}

	if submitted != "" && e.history != nil {
		row := history.Row{
			TaskKey:     key,
			Command:     spec.Command,
			SrcFs:       spec.SrcFs(),
			DstFs:       spec.DstFs(),
			JobID:       submitted,
			SubmittedAt: time.Now().UTC(),
		}
		if err := e.history.Record(ctx, row); err != nil {
			logger.Warn("history record failed", logging.Error(err))
		}
	}
	return nil
}
