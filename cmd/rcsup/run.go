package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rcsup/internal/logging"
	"rcsup/internal/mounts"
	"rcsup/internal/runlog"
	"rcsup/internal/schedule"
	"rcsup/internal/supervisor"
)

// runSupervisor is the root command body: spawn the sync daemon, reconcile
// mounts, publish the schedule, and supervise until a child dies or a
// termination signal arrives.
func runSupervisor(cmdCtx context.Context, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("rcsup-%s.log", runID))
	logger, err := ctx.newLogger(cfg, []string{"stdout", logPath})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	rc := ctx.rcClient(cfg)
	reconciler := mounts.NewReconciler(rc, logger)
	publisher := schedule.NewPublisher(runlog.New(cfg.Paths.RunLog), cfg.Paths.ScheduleFile, logger)

	sup := supervisor.New(cfg, rc, reconciler, publisher, ctx.configPath(), logger)
	code, err := sup.Run(signalCtx)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("supervisor exited with status %d", code)
	}
	logger.Info("supervisor exited cleanly", logging.Int(logging.FieldExitCode, code))
	return nil
}
