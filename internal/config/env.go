package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognized by ApplyEnv. These form the deployment
// surface of the sidecar container image; every one overrides its file-based
// counterpart.
const (
	EnvRCPort        = "RC_PORT"
	EnvRCUser        = "RC_USER"
	EnvRCPass        = "RC_PASS"
	EnvMountList     = "MOUNT_LIST_PATH"
	EnvTaskList      = "TASK_LIST_PATH"
	EnvRunLog        = "RUN_LOG_PATH"
	EnvScheduleFile  = "SCHEDULE_PATH"
	EnvCacheDir      = "CACHE_DIR"
	EnvRetryInterval = "RETRY_INTERVAL"
	EnvPollInterval  = "POLL_INTERVAL"
	EnvVerbose       = "VERBOSE"
)

func init() {
	// A .env alongside the process is a developer convenience; absence is the
	// normal case in deployment.
	_ = godotenv.Load()
}

// ApplyEnv overrides config values from the process environment.
func (c *Config) ApplyEnv() error {
	if value, ok := lookup(EnvRCPort); ok {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%s: invalid port %q", EnvRCPort, value)
		}
		c.RC.Port = port
	}
	if value, ok := lookup(EnvRCUser); ok {
		c.RC.User = value
	}
	if value, ok := lookup(EnvRCPass); ok {
		c.RC.Pass = value
	}
	if value, ok := lookup(EnvMountList); ok {
		c.Paths.MountList = value
	}
	if value, ok := lookup(EnvTaskList); ok {
		c.Paths.TaskList = value
	}
	if value, ok := lookup(EnvRunLog); ok {
		c.Paths.RunLog = value
	}
	if value, ok := lookup(EnvScheduleFile); ok {
		c.Paths.ScheduleFile = value
	}
	if value, ok := lookup(EnvCacheDir); ok {
		c.Paths.CacheDir = value
	}
	if value, ok := lookup(EnvRetryInterval); ok {
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			return fmt.Errorf("%s: invalid interval %q", EnvRetryInterval, value)
		}
		c.Workflow.ReadyRetryInterval = seconds
	}
	if value, ok := lookup(EnvPollInterval); ok {
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			return fmt.Errorf("%s: invalid interval %q", EnvPollInterval, value)
		}
		c.Workflow.LivenessInterval = seconds
	}
	if value, ok := lookup(EnvVerbose); ok {
		if truthy(value) {
			c.Logging.Level = "debug"
		}
	}
	return nil
}

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

func truthy(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
