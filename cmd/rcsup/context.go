package main

import (
	"log/slog"
	"strings"
	"sync"

	"rcsup/internal/config"
	"rcsup/internal/logging"
	"rcsup/internal/rcclient"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// newLogger builds a logger from the loaded config; --verbose forces debug.
func (c *commandContext) newLogger(cfg *config.Config, outputPaths []string) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if c.verboseFlag != nil && *c.verboseFlag {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	})
}

func (c *commandContext) rcClient(cfg *config.Config) *rcclient.Client {
	return rcclient.New(cfg.RCBaseURL(), cfg.RC.User, cfg.RC.Pass, nil)
}
