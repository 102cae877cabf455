package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/go-co-op/gocron/v2"

	"rcsup/internal/logging"
)

// Evaluator is the schedule-evaluator child process body: it loads the
// schedule-entry store and fires one short-lived executor process per
// trigger. Triggered invocations coordinate only through the run log.
type Evaluator struct {
	schedulePath string
	executable   string
	extraArgs    []string
	logger       *slog.Logger
	launch       func(payload string) error
}

// NewEvaluator constructs an evaluator that spawns executable with the
// execute-task subcommand on every trigger. extraArgs are appended to each
// executor invocation (the config flag, typically).
func NewEvaluator(schedulePath, executable string, logger *slog.Logger, extraArgs ...string) *Evaluator {
	e := &Evaluator{
		schedulePath: schedulePath,
		executable:   executable,
		extraArgs:    extraArgs,
		logger:       logging.NewComponentLogger(logger, "evaluator"),
	}
	e.launch = e.spawnExecutor
	return e
}

// Run blocks evaluating the schedule until ctx is cancelled.
func (e *Evaluator) Run(ctx context.Context) error {
	entries, err := LoadEntries(e.schedulePath)
	if err != nil {
		return err
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	registered := e.register(scheduler, entries)
	e.logger.Info("schedule loaded",
		logging.Int("entries", len(entries)),
		logging.Int("registered", registered),
	)

	scheduler.Start()
	<-ctx.Done()
	return scheduler.Shutdown()
}

// register adds one cron job per entry, skipping entries whose cron
// expression the scheduler rejects.
func (e *Evaluator) register(scheduler gocron.Scheduler, entries []Entry) int {
	registered := 0
	for _, entry := range entries {
		payload := entry.Payload
		// Six-field expressions carry a leading seconds field.
		withSeconds := len(strings.Fields(entry.Cron)) == 6
		_, err := scheduler.NewJob(
			gocron.CronJob(entry.Cron, withSeconds),
			gocron.NewTask(func() { e.fire(payload) }),
			gocron.WithName(entry.Cron),
		)
		if err != nil {
			e.logger.Error("schedule entry rejected",
				logging.String("cron", entry.Cron),
				logging.Error(err),
			)
			continue
		}
		registered++
	}
	return registered
}

func (e *Evaluator) fire(payload string) {
	if err := e.launch(payload); err != nil {
		e.logger.Error("executor invocation failed", logging.Error(err))
	}
}

func (e *Evaluator) spawnExecutor(payload string) error {
	args := append([]string{"execute-task", payload}, e.extraArgs...)
	cmd := exec.Command(e.executable, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("execute-task: %w: %s", err, output)
	}
	return nil
}
