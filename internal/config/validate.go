package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/rileyhilliard/fleetdash/internal/logger"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but fleetdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest fleetdash release.")
	}

	if err := validateAPI(cfg.API); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'api' section in your .fleetdash.yaml, or pass --api-url.")
	}

	if cfg.Dashboard.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("dashboard.interval %s is too short", cfg.Dashboard.Interval),
			fmt.Sprintf("Use at least %s so the manager isn't flooded.", MinInterval))
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your .fleetdash.yaml.")
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("log.level '%s' isn't valid", cfg.Log.Level),
			"Use 'debug', 'info', 'warn', or 'error'.")
	}

	return nil
}

// ValidateURL checks that raw is an absolute http or https URL.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("api.url is empty - set it to the manager's address, like http://localhost:8000")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("api.url '%s' isn't a valid URL: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.url '%s' needs an http:// or https:// scheme", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("api.url '%s' is missing a host", raw)
	}
	return nil
}

func validateAPI(api APIConfig) error {
	if err := ValidateURL(api.URL); err != nil {
		return err
	}
	if api.Timeout < 0 {
		return fmt.Errorf("api.timeout can't be negative - that doesn't make sense")
	}
	return nil
}

// validateOutput checks output configuration.
func validateOutput(out OutputConfig) error {
	validColors := map[string]bool{"auto": true, "always": true, "never": true, "": true}
	if !validColors[out.Color] {
		return fmt.Errorf("output.color '%s' isn't valid - use 'auto', 'always', or 'never'", out.Color)
	}
	return nil
}
