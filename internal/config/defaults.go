package config

const (
	defaultRCPort             = 5572
	defaultRCUser             = "admin"
	defaultMountList          = "~/.config/rcsup/mounts.json"
	defaultTaskList           = "~/.config/rcsup/tasks.json"
	defaultRunLog             = "~/.local/share/rcsup/run.log"
	defaultScheduleFile       = "~/.local/share/rcsup/schedule.json"
	defaultCacheDir           = "~/.cache/rcsup"
	defaultLogDir             = "~/.local/share/rcsup/logs"
	defaultHistoryDB          = "~/.local/share/rcsup/history.db"
	defaultDaemonBinary       = "rclone"
	defaultReadyRetrySeconds  = 5
	defaultLivenessSeconds    = 10
	defaultShutdownGraceSecs  = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		RC: RC{
			Port: defaultRCPort,
			User: defaultRCUser,
		},
		Paths: Paths{
			MountList:    defaultMountList,
			TaskList:     defaultTaskList,
			RunLog:       defaultRunLog,
			ScheduleFile: defaultScheduleFile,
			CacheDir:     defaultCacheDir,
			LogDir:       defaultLogDir,
			HistoryDB:    defaultHistoryDB,
		},
		Daemon: Daemon{
			Binary: defaultDaemonBinary,
		},
		Workflow: Workflow{
			ReadyRetryInterval: defaultReadyRetrySeconds,
			LivenessInterval:   defaultLivenessSeconds,
			ShutdownGrace:      defaultShutdownGraceSecs,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
