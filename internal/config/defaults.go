package config

const (
	defaultStatsDir       = "~/.local/share/syncline/stats"
	defaultLogDir         = "~/.local/share/syncline/logs"
	defaultMethod         = "hybrid"
	defaultTimeoutSeconds = 300
	defaultMaxConcurrent  = 4
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults. Engine
// numeric fields stay zero so AlignConfig can tell "unset" from an
// explicit value.
func Default() Config {
	return Config{
		Paths: Paths{
			StatsDir: defaultStatsDir,
			LogDir:   defaultLogDir,
		},
		Engine: Engine{
			Method:         defaultMethod,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Batch: Batch{
			MaxConcurrent: defaultMaxConcurrent,
		},
		Stats: Stats{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
