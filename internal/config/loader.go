package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".fleetdash.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/fleetdash"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. FLEETDASH_API_URL.
	EnvPrefix = "FLEETDASH"
)

// Load reads config from the specified path, with defaults and
// environment overrides applied.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'fleetdash init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .fleetdash.yaml in current directory
// 3. ~/.config/fleetdash/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if global := GlobalConfigPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalConfigPath returns ~/.config/fleetdash/config.yaml, or "" when the
// home directory is unknown.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault loads config from the found path, or returns defaults
// (still honoring FLEETDASH_* overrides) if no file exists.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// newViper returns a viper instance with defaults and env overrides wired.
// Every key needs a default for AutomaticEnv to reach it through Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()

	// time.Duration fields accept "5s" style strings via viper's default decode hooks.
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	cfg.API.URL = strings.TrimSpace(cfg.API.URL)
	cfg.Output.Color = strings.ToLower(strings.TrimSpace(cfg.Output.Color))
	cfg.Log.File = expandHome(cfg.Log.File)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("api.url", def.API.URL)
	v.SetDefault("api.timeout", def.API.Timeout.String())
	v.SetDefault("dashboard.interval", def.Dashboard.Interval.String())
	v.SetDefault("output.color", def.Output.Color)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
