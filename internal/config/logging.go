package config

// LoggingConfig configures the process logger. Logging is off unless enabled.
type LoggingConfig struct {
	Enabled bool `yaml:"enabled"`
	Verbose bool `yaml:"verbose"` // debug level, includes request payloads
	JSON    bool `yaml:"json"`    // JSON lines instead of console output
}
