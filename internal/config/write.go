package config

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/fleetdash/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations as strings so the written file
// reads "10s" rather than a nanosecond count.
type fileConfig struct {
	Version   int           `yaml:"version"`
	API       fileAPI       `yaml:"api"`
	Dashboard fileDashboard `yaml:"dashboard"`
	Output    OutputConfig  `yaml:"output"`
	Log       LogConfig     `yaml:"log"`
}

type fileAPI struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type fileDashboard struct {
	Interval string `yaml:"interval"`
}

// Marshal renders cfg as YAML in the same shape Load reads.
func Marshal(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	var f fileConfig
	f.Version = cfg.Version
	f.API.URL = cfg.API.URL
	f.API.Timeout = cfg.API.Timeout.String()
	f.Dashboard.Interval = cfg.Dashboard.Interval.String()
	f.Output = cfg.Output
	f.Log = cfg.Log

	return yaml.Marshal(&f)
}

// Write saves cfg to path, prefixed with header (usually a comment block).
func Write(path string, cfg *Config, header string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}
