package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rcsup/internal/executor"
	"rcsup/internal/history"
	"rcsup/internal/logging"
	"rcsup/internal/runlog"
	"rcsup/internal/tasks"
)

// newExecuteTaskCommand builds the short-lived executor invocation the
// schedule evaluator spawns on each cron trigger. The payload argument is
// the JSON task document published alongside the schedule.
func newExecuteTaskCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:    "execute-task <payload>",
		Short:  "Submit one task to the sync daemon, skipping if its prior run is still active",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := ctx.newLogger(cfg, []string{"stdout"})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			spec, err := tasks.ParsePayload(args[0])
			if err != nil {
				return err
			}

			var recorder executor.Recorder
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				// History is observability only; execution proceeds without it.
				logger.Warn("history store unavailable", logging.Error(err))
			} else {
				defer store.Close()
				recorder = store
			}

			runner := executor.New(ctx.rcClient(cfg), runlog.New(cfg.Paths.RunLog), recorder, logger)
			return runner.Execute(signalCtx, spec)
		},
	}
}
