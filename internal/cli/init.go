package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/fleetdash/internal/config"
	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
	"github.com/rileyhilliard/fleetdash/internal/ui"
)

// probeTimeout bounds the connection check init runs before saving.
const probeTimeout = 5 * time.Second

// InitOptions holds options for the init command.
type InitOptions struct {
	APIURL         string // Pre-specified manager URL
	Interval       string // Pre-specified dashboard interval
	Dir            string // Where to write the file; defaults to "."
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
	NoCheck        bool   // Don't contact the manager before saving

	// Probe checks the manager is reachable. Defaults to listing workers.
	Probe func(ctx context.Context, url string) error
	Out   io.Writer
}

// Init creates a new .fleetdash.yaml configuration file.
func Init(ctx context.Context, opts InitOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Probe == nil {
		opts.Probe = probeManager
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.RunWithContext(ctx); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	apiURL := strings.TrimSpace(opts.APIURL)
	interval := strings.TrimSpace(opts.Interval)

	if apiURL == "" {
		apiURL = cfg.API.URL
	}
	if interval == "" {
		interval = cfg.Dashboard.Interval.String()
	}

	if !opts.NonInteractive {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Fleet manager URL").
					Description("Base URL of the manager's HTTP API").
					Placeholder("http://localhost:8000").
					Value(&apiURL).
					Validate(config.ValidateURL),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Dashboard refresh interval").
					Description("How often the dashboard reloads the worker list (at least 500ms)").
					Placeholder("5s").
					Value(&interval).
					Validate(func(s string) error {
						_, err := ParseInterval(strings.TrimSpace(s))
						return err
					}),
			),
		)
		if err := form.RunWithContext(ctx); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}
	}

	if err := config.ValidateURL(apiURL); err != nil {
		return err
	}
	d, err := ParseInterval(interval)
	if err != nil {
		return err
	}
	cfg.API.URL = strings.TrimSpace(apiURL)
	if d > 0 {
		cfg.Dashboard.Interval = d
	}

	if !opts.NoCheck {
		if err := checkManager(ctx, opts, cfg.API.URL); err != nil {
			return err
		}
	}

	header := `# fleetdash configuration
# Run 'fleetdash dashboard' to watch the fleet

`
	if err := config.Write(configPath, cfg, header); err != nil {
		return err
	}

	fmt.Fprintf(opts.Out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(opts.Out, "Next steps:")
	fmt.Fprintln(opts.Out, "  fleetdash dashboard  - Live view with spawn/terminate")
	fmt.Fprintln(opts.Out, "  fleetdash workers    - One-shot fleet table")
	return nil
}

// checkManager probes the manager and, on failure, asks whether to save anyway.
func checkManager(ctx context.Context, opts InitOptions, url string) error {
	fmt.Fprintln(opts.Out)
	spinner := ui.NewSpinner("Testing connection to " + url)
	spinner.SetOutput(opts.Out)
	spinner.SetAnimated(!opts.NonInteractive && isTerminal(opts.Out))
	spinner.Start()

	err := opts.Probe(ctx, url)
	if err == nil {
		spinner.Success()
		fmt.Fprintln(opts.Out)
		return nil
	}
	spinner.Fail()

	failed := errors.WrapWithCode(err, errors.ErrTransport,
		fmt.Sprintf("Couldn't reach the fleet manager at %s", url),
		"Start the manager, or pass --no-check to save the config anyway.")

	if opts.NonInteractive {
		return failed
	}

	fmt.Fprintf(opts.Out, "\n%s Connection to '%s' failed: %v\n\n", ui.SymbolFail, url, err)

	var saveAnyway bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save config anyway? (You can start the manager later)").
				Value(&saveAnyway),
		),
	)
	if formErr := form.RunWithContext(ctx); formErr != nil || !saveAnyway {
		return failed
	}
	return nil
}

// probeManager lists workers once to prove the manager answers.
func probeManager(ctx context.Context, url string) error {
	client, err := fleetapi.New(url, fleetapi.WithTimeout(probeTimeout))
	if err != nil {
		return err
	}
	_, err = client.ListWorkers(ctx)
	return err
}
