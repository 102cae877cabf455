package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"rcsup/internal/config"
	"rcsup/internal/logging"
	"rcsup/internal/mounts"
	"rcsup/internal/tasks"
)

// State names one phase of the supervisor lifecycle.
type State string

const (
	StateStarting     State = "starting"
	StateWaitingReady State = "waiting_ready"
	StateInitializing State = "initializing"
	StateRunning      State = "running"
	StateShuttingDown State = "shutting_down"
	StateStopped      State = "stopped"
)

// ReadyProber is the slice of the RC client the supervisor needs.
type ReadyProber interface {
	ProbeReady(ctx context.Context) bool
}

// Reconciler aligns daemon mounts with the declared mount list.
type Reconciler interface {
	Reconcile(ctx context.Context, specs []mounts.Spec) error
	UnmountAll(specs []mounts.Spec)
}

// Publisher writes schedule entries from the task list.
type Publisher interface {
	Publish(taskList []tasks.Spec) error
}

// Supervisor runs the full lifecycle of the sidecar and its two children.
type Supervisor struct {
	cfg        *config.Config
	rc         ReadyProber
	reconciler Reconciler
	publisher  Publisher
	logger     *slog.Logger
	lock       *flock.Flock

	// Child factories, injectable for tests.
	newDaemon    func() (Child, error)
	newEvaluator func() (Child, error)

	state State
}

// New constructs a supervisor. configPath is forwarded to the evaluator
// child so both processes resolve the same configuration.
func New(cfg *config.Config, rc ReadyProber, reconciler Reconciler, publisher Publisher, configPath string, logger *slog.Logger) *Supervisor {
	s := &Supervisor{
		cfg:        cfg,
		rc:         rc,
		reconciler: reconciler,
		publisher:  publisher,
		logger:     logging.NewComponentLogger(logger, "supervisor"),
		lock:       flock.New(filepath.Join(cfg.Paths.LogDir, "rcsup.lock")),
		state:      StateStarting,
	}
	s.newDaemon = func() (Child, error) {
		return newProcChild("daemon", s.daemonCommand()), nil
	}
	s.newEvaluator = func() (Child, error) {
		executable, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		args := []string{"schedule-evaluator"}
		if configPath != "" {
			args = append(args, "--config", configPath)
		}
		return newProcChild("evaluator", exec.Command(executable, args...)), nil
	}
	return s
}

// State returns the current lifecycle phase.
func (s *Supervisor) State() State { return s.state }

// Run drives the lifecycle to completion and returns the process exit code.
// Cancellation of ctx (signal delivery) triggers the same ordered shutdown
// as a child death or initialization failure.
func (s *Supervisor) Run(ctx context.Context) (int, error) {
	s.setState(StateStarting)

	held, err := s.lock.TryLock()
	if err != nil {
		return 1, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !held {
		return 1, fmt.Errorf("another rcsup instance is already running")
	}
	defer func() { _ = s.lock.Unlock() }()

	daemon, err := s.newDaemon()
	if err != nil {
		return 1, err
	}
	if err := daemon.Start(); err != nil {
		return 1, err
	}
	s.logger.Info("daemon started", logging.Int(logging.FieldPID, daemon.PID()))

	if !s.waitReady(ctx, daemon) {
		// Signal or daemon death while waiting; nothing mounted yet.
		return s.shutdown(nil, 1, daemon), nil
	}

	s.setState(StateInitializing)
	specs, loadErr := mounts.LoadSpecs(s.cfg.Paths.MountList)
	if loadErr != nil {
		s.logger.Error("mount list unusable", logging.Error(loadErr))
		return s.shutdown(nil, 1, daemon), loadErr
	}
	taskList, loadErr := tasks.Load(s.cfg.Paths.TaskList)
	if loadErr != nil {
		s.logger.Error("task list unusable", logging.Error(loadErr))
		return s.shutdown(specs, 1, daemon), loadErr
	}

	if err := s.reconciler.Reconcile(ctx, specs); err != nil {
		s.logger.Error("mount reconciliation failed", logging.Error(err))
		return s.shutdown(specs, 1, daemon), err
	}
	if err := s.publisher.Publish(taskList); err != nil {
		s.logger.Error("schedule publish failed", logging.Error(err))
		return s.shutdown(specs, 1, daemon), err
	}

	evaluator, err := s.newEvaluator()
	if err != nil {
		return s.shutdown(specs, 1, daemon), err
	}
	if err := evaluator.Start(); err != nil {
		return s.shutdown(specs, 1, daemon), err
	}
	s.logger.Info("schedule evaluator started", logging.Int(logging.FieldPID, evaluator.PID()))

	s.setState(StateRunning)
	code := s.superviseLoop(ctx, daemon, evaluator)
	return s.shutdown(specs, code, daemon, evaluator), nil
}

// waitReady polls the readiness probe at the configured retry interval,
// indefinitely. An external orchestrator bounds total startup time by
// killing the process.
func (s *Supervisor) waitReady(ctx context.Context, daemon Child) bool {
	s.setState(StateWaitingReady)
	for {
		if s.rc.ProbeReady(ctx) {
			s.logger.Info("daemon ready")
			return true
		}
		if !daemon.Alive() {
			s.logger.Error("daemon died before becoming ready")
			return false
		}
		s.logger.Debug("daemon not ready, retrying",
			logging.Duration("interval", s.cfg.ReadyRetryInterval()))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.cfg.ReadyRetryInterval()):
		}
	}
}

// superviseLoop polls child liveness until a child dies or ctx is cancelled.
func (s *Supervisor) superviseLoop(ctx context.Context, children ...Child) int {
	ticker := time.NewTicker(s.cfg.LivenessInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("termination signal received")
			return 0
		case <-ticker.C:
			for _, child := range children {
				if !child.Alive() {
					s.logger.Error("child process died",
						logging.String(logging.FieldChild, child.Name()))
					return 1
				}
			}
		}
	}
}

// shutdown runs the ordered teardown: unmount everything while the daemon
// can still release its handles, then terminate the children. The sequence
// always runs to completion before the exit code is returned.
func (s *Supervisor) shutdown(specs []mounts.Spec, code int, children ...Child) int {
	s.setState(StateShuttingDown)
	s.reconciler.UnmountAll(specs)

	for _, child := range children {
		if !child.Alive() {
			continue
		}
		if err := child.Terminate(); err != nil {
			s.logger.Warn("terminate failed",
				logging.String(logging.FieldChild, child.Name()),
				logging.Error(err),
			)
		}
	}
	s.awaitExit(children)
	for _, child := range children {
		if child.Alive() {
			s.logger.Warn("killing unresponsive child",
				logging.String(logging.FieldChild, child.Name()))
			_ = child.Kill()
		}
	}

	s.setState(StateStopped)
	s.logger.Info("supervisor stopped", logging.Int(logging.FieldExitCode, code))
	return code
}

func (s *Supervisor) awaitExit(children []Child) {
	deadline := time.Now().Add(s.cfg.ShutdownGrace())
	for time.Now().Before(deadline) {
		anyAlive := false
		for _, child := range children {
			if child.Alive() {
				anyAlive = true
				break
			}
		}
		if !anyAlive {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func (s *Supervisor) setState(state State) {
	s.state = state
	s.logger.Debug("state transition", logging.String(logging.FieldState, string(state)))
}

// daemonCommand builds the sync daemon invocation from config: remote control
// enabled on the loopback interface with the configured credentials.
func (s *Supervisor) daemonCommand() *exec.Cmd {
	args := []string{
		"rcd",
		fmt.Sprintf("--rc-addr=127.0.0.1:%d", s.cfg.RC.Port),
		"--rc-user=" + s.cfg.RC.User,
		"--rc-pass=" + s.cfg.RC.Pass,
	}
	if s.cfg.Paths.CacheDir != "" {
		args = append(args, "--cache-dir="+s.cfg.Paths.CacheDir)
	}
	args = append(args, s.cfg.Daemon.ExtraArgs...)
	return exec.Command(s.cfg.Daemon.Binary, args...)
}
