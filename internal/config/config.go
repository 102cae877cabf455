package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// RC contains connection settings for the sync daemon remote-control API.
type RC struct {
	Port int    `toml:"port"`
	User string `toml:"user"`
	Pass string `toml:"pass"`
}

// Paths contains file and directory configuration.
type Paths struct {
	MountList    string `toml:"mount_list"`
	TaskList     string `toml:"task_list"`
	RunLog       string `toml:"run_log"`
	ScheduleFile string `toml:"schedule_file"`
	CacheDir     string `toml:"cache_dir"`
	LogDir       string `toml:"log_dir"`
	HistoryDB    string `toml:"history_db"`
}

// Daemon contains the sync daemon launch configuration.
type Daemon struct {
	Binary    string   `toml:"binary"`
	ExtraArgs []string `toml:"extra_args"`
}

// Workflow contains supervisor timing configuration, in seconds.
type Workflow struct {
	ReadyRetryInterval int `toml:"ready_retry_interval"`
	LivenessInterval   int `toml:"liveness_interval"`
	ShutdownGrace      int `toml:"shutdown_grace"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for rcsup.
//
// Values load from an optional TOML file and are then overridden by the
// environment (the deployment surface of the sidecar); see ApplyEnv for the
// recognized variables.
type Config struct {
	RC       RC       `toml:"rc"`
	Paths    Paths    `toml:"paths"`
	Daemon   Daemon   `toml:"daemon"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/rcsup/config.toml")
}

// Load locates and parses the configuration file when present, applies
// environment overrides, and validates the result. Path fields come back
// expanded and absolute.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	fields := []*string{
		&c.Paths.MountList,
		&c.Paths.TaskList,
		&c.Paths.RunLog,
		&c.Paths.ScheduleFile,
		&c.Paths.CacheDir,
		&c.Paths.LogDir,
		&c.Paths.HistoryDB,
	}
	for _, field := range fields {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.RC.User = strings.TrimSpace(c.RC.User)
	c.Daemon.Binary = strings.TrimSpace(c.Daemon.Binary)
	return nil
}

// EnsureDirectories creates directories required for supervisor operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.CacheDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.RunLog),
		filepath.Dir(c.Paths.ScheduleFile),
		filepath.Dir(c.Paths.HistoryDB),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RCBaseURL returns the remote-control API base URL.
func (c *Config) RCBaseURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", c.RC.Port)
}

// ReadyRetryInterval returns the readiness probe retry interval.
func (c *Config) ReadyRetryInterval() time.Duration {
	return time.Duration(c.Workflow.ReadyRetryInterval) * time.Second
}

// LivenessInterval returns the child liveness poll interval.
func (c *Config) LivenessInterval() time.Duration {
	return time.Duration(c.Workflow.LivenessInterval) * time.Second
}

// ShutdownGrace returns how long children get between SIGTERM and SIGKILL.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Workflow.ShutdownGrace) * time.Second
}

// ExpandPath resolves ~ and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
