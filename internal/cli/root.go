package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/rileyhilliard/fleetdash/internal/config"
	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
	"github.com/rileyhilliard/fleetdash/internal/logger"
	"github.com/rileyhilliard/fleetdash/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Global flags
var (
	cfgFile    string
	apiURLFlag string
	verbose    bool
	noColor    bool
)

// Config resolved for the current invocation by PersistentPreRunE.
var (
	activeConfig     *config.Config
	activeConfigPath string
)

// annotationNoConfig marks commands that must run without a valid config
// (init, version, completion).
const annotationNoConfig = "fleetdash/no-config"

var rootCmd = &cobra.Command{
	Use:   "fleetdash",
	Short: "Monitor and control a fleet of browser workers",
	Long: `fleetdash watches a fleet of headless-browser workers through the
fleet manager's HTTP API.

Run 'fleetdash dashboard' for a live view with spawn and terminate
controls, or use the one-shot commands from scripts.

Examples:
  fleetdash dashboard
  fleetdash workers --json
  fleetdash spawn
  fleetdash terminate worker-3 --yes`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupGlobals(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./.fleetdash.yaml, then ~/.config/fleetdash/config.yaml)")
	pf.StringVar(&apiURLFlag, "api-url", "", "fleet manager URL, overrides api.url")
	pf.BoolVar(&machineMode, "json", false, "machine-readable JSON output")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// ActiveConfig returns the config loaded for this invocation, or defaults
// when the command skipped loading.
func ActiveConfig() *config.Config {
	if activeConfig == nil {
		return config.DefaultConfig()
	}
	return activeConfig
}

// setupGlobals applies color and log settings and loads the config.
func setupGlobals(cmd *cobra.Command) error {
	if noColor || machineMode || os.Getenv("NO_COLOR") != "" {
		ui.DisableColors()
	}
	if verbose {
		_ = logger.SetLevel("debug")
	}

	if !needsConfig(cmd) {
		return nil
	}

	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if apiURLFlag != "" {
		cfg.API.URL = strings.TrimSpace(apiURLFlag)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if !noColor && !machineMode {
		ui.ApplyColorMode(cfg.Output.Color)
	}
	if !verbose {
		// Already checked by Validate
		_ = logger.SetLevel(cfg.Log.Level)
	}

	activeConfig, activeConfigPath = cfg, path
	return nil
}

func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[annotationNoConfig]; ok {
			return false
		}
	}
	return true
}

// newClient builds an API client from the active config.
func newClient() (*fleetapi.Client, error) {
	cfg := ActiveConfig()
	c, err := fleetapi.New(cfg.API.URL,
		fleetapi.WithTimeout(cfg.API.Timeout),
		fleetapi.WithUserAgent("fleetdash/"+version),
	)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid fleet API URL",
			"Set api.url in .fleetdash.yaml or pass --api-url, e.g. http://localhost:8000")
	}
	return c, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		reportError(os.Stdout, os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err as JSON on stdout in machine mode, or as text on
// stderr otherwise.
func reportError(stdout, stderr io.Writer, err error) {
	if machineMode {
		_ = WriteJSONFromError(stdout, err)
		return
	}

	if isUnknownCommandError(err) {
		msg := err.Error()
		if name := extractUnknownCommand(err); name != "" {
			msg = fmt.Sprintf("'%s' isn't a fleetdash command", name)
		}
		fmt.Fprintf(stderr, "%s %s\n\n  Run 'fleetdash --help' to see what's available.\n", ui.SymbolFail, msg)
		return
	}

	msg := err.Error()
	if !strings.HasPrefix(msg, ui.SymbolFail) {
		msg = ui.SymbolFail + " " + msg
	}
	fmt.Fprintln(stderr, strings.TrimRight(msg, "\n"))
}

// isUnknownCommandError reports whether err is cobra's unknown command or flag error.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

var unknownCommandRe = regexp.MustCompile(`unknown command "([^"]+)"`)

// extractUnknownCommand returns the command name from cobra's unknown command error.
func extractUnknownCommand(err error) string {
	m := unknownCommandRe.FindStringSubmatch(err.Error())
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
