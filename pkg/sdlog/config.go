package sdlog

import "flag"

// Config defines the configurations for the Logger.
type Config struct {
	MaxVolumes int
}

var defaultConfig = Config{
	MaxVolumes: DefaultMaxVolumes,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.MaxVolumes, "max-volumes", defaultConfig.MaxVolumes, "Number of volume indices to probe.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewLogger creates a Logger using the config.
func (c *Config) NewLogger() *Logger {
	return &Logger{MaxVolumes: c.MaxVolumes}
}
