package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// MinInterval is the fastest the dashboard is allowed to poll.
const MinInterval = 500 * time.Millisecond

// Config represents the complete .fleetdash.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// APIConfig describes how to reach the fleet manager.
type APIConfig struct {
	// URL is the manager's base URL, e.g. http://localhost:8000.
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout bounds every HTTP request. Zero means no client timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DashboardConfig controls the live dashboard.
type DashboardConfig struct {
	// Interval between worker list refreshes.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`

	// File receives log output while the dashboard owns the terminal.
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			URL:     "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Dashboard: DashboardConfig{
			Interval: 5 * time.Second,
		},
		Output: OutputConfig{
			Color: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
