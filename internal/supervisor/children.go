package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
)

// Child is a supervised long-running process.
type Child interface {
	Name() string
	Start() error
	Alive() bool
	Terminate() error
	Kill() error
	PID() int
}

// procChild supervises one exec.Cmd. A goroutine reaps the process on exit
// so Alive never reports a zombie as running.
type procChild struct {
	name string
	cmd  *exec.Cmd

	mu      sync.Mutex
	started bool
	done    bool
}

func newProcChild(name string, cmd *exec.Cmd) *procChild {
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return &procChild{name: name, cmd: cmd}
}

func (c *procChild) Name() string { return c.name }

func (c *procChild) Start() error {
	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.name, err)
	}
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	go func() {
		_ = c.cmd.Wait()
		c.mu.Lock()
		c.done = true
		c.mu.Unlock()
	}()
	return nil
}

func (c *procChild) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started && !c.done
}

func (c *procChild) Terminate() error {
	if !c.Alive() {
		return nil
	}
	return c.cmd.Process.Signal(syscall.SIGTERM)
}

func (c *procChild) Kill() error {
	if !c.Alive() {
		return nil
	}
	return c.cmd.Process.Kill()
}

func (c *procChild) PID() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}
