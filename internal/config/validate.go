package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRC(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateDaemon()
}

func (c *Config) validateRC() error {
	if c.RC.Port <= 0 || c.RC.Port > 65535 {
		return fmt.Errorf("rc.port must be between 1 and 65535, got %d", c.RC.Port)
	}
	if c.RC.User == "" {
		return errors.New("rc.user must be set")
	}
	if c.RC.Pass == "" {
		return fmt.Errorf("rc.pass is required; set the %s env var or edit the config file", EnvRCPass)
	}
	return nil
}

func (c *Config) validatePaths() error {
	required := []struct {
		name  string
		value string
	}{
		{"paths.mount_list", c.Paths.MountList},
		{"paths.task_list", c.Paths.TaskList},
		{"paths.run_log", c.Paths.RunLog},
		{"paths.schedule_file", c.Paths.ScheduleFile},
		{"paths.log_dir", c.Paths.LogDir},
	}
	for _, entry := range required {
		if strings.TrimSpace(entry.value) == "" {
			return fmt.Errorf("%s must be set", entry.name)
		}
	}
	if c.Paths.RunLog == c.Paths.ScheduleFile {
		return errors.New("paths.run_log and paths.schedule_file must differ")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ReadyRetryInterval <= 0 {
		return errors.New("workflow.ready_retry_interval must be positive")
	}
	if c.Workflow.LivenessInterval <= 0 {
		return errors.New("workflow.liveness_interval must be positive")
	}
	if c.Workflow.ShutdownGrace <= 0 {
		return errors.New("workflow.shutdown_grace must be positive")
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.Binary == "" {
		return errors.New("daemon.binary must be set")
	}
	return nil
}
