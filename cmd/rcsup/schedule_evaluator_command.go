package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rcsup/internal/schedule"
)

// newScheduleEvaluatorCommand builds the evaluator child process body. The
// supervisor spawns it after publishing the schedule; it is not meant to be
// invoked by hand.
func newScheduleEvaluatorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:    "schedule-evaluator",
		Short:  "Evaluate the published schedule and fire executor processes",
		Args:   cobra.NoArgs,
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

			executable, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}

			var extraArgs []string
			if path := ctx.configPath(); path != "" {
				extraArgs = append(extraArgs, "--config", path)
			}
			evaluator := schedule.NewEvaluator(cfg.Paths.ScheduleFile, executable, logger, extraArgs...)
			return evaluator.Run(signalCtx)
		},
	}
}
