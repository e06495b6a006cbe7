package cli

import (
	"io"
	"os"
	"time"

	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	dashboardInterval  intervalValue
	terminateYes       bool
	initIntervalFlag   string
	initForce          bool
	initNonInteractive bool
	initNoCheck        bool
	parseOpts          ParseOptions
)

// dashboardCmd starts the TUI dashboard
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"monitor"},
	Short:   "Live fleet dashboard with spawn and terminate controls",
	Long: `Start an interactive dashboard showing every worker with its status,
CPU, memory, active pages and last report, plus fleet-wide averages.

The worker list reloads on a fixed interval. Spawn and terminate run from
the dashboard; terminate asks for confirmation first.

Keyboard shortcuts:
  s           Spawn a worker
  x           Terminate the selected worker
  r           Refresh now
  up/k        Select previous worker
  down/j      Select next worker
  ?           Show help
  q / Ctrl+C  Quit

Examples:
  fleetdash dashboard
  fleetdash dashboard --interval 2s
  fleetdash monitor --api-url http://fleet.internal:8000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), time.Duration(dashboardInterval))
	},
}

// workersCmd prints the fleet once
var workersCmd = &cobra.Command{
	Use:     "workers",
	Aliases: []string{"ls", "list"},
	Short:   "List workers and fleet averages",
	Long: `Fetch the worker list once and print it with the fleet aggregates.

Examples:
  fleetdash workers
  fleetdash workers --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return workersCommand(cmd.Context(), client, cmd.OutOrStdout(), timeNow())
	},
}

// spawnCmd starts one worker
var spawnCmd = &cobra.Command{
	Use:   "spawn",
	Short: "Start a new worker",
	Long: `Ask the manager to start one worker. The manager answers once the
worker has registered, which can take a while.

Examples:
  fleetdash spawn
  fleetdash spawn --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return spawnCommand(cmd.Context(), client, cmd.OutOrStdout(), isTerminal(cmd.OutOrStdout()))
	},
}

// terminateCmd stops one worker
var terminateCmd = &cobra.Command{
	Use:     "terminate <worker-id>",
	Aliases: []string{"kill", "rm"},
	Short:   "Stop a worker",
	Long: `Ask the manager to stop a worker. You'll be asked to confirm unless
--yes is given; without a terminal --yes is required.

Examples:
  fleetdash terminate worker-3
  fleetdash terminate worker-3 --yes --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmer, err := terminateConfirmer(terminateYes, isTerminal(os.Stdin) && isTerminal(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		return terminateCommand(cmd.Context(), client, cmd.OutOrStdout(),
			fleetapi.WorkerID(args[0]), confirmer, isTerminal(cmd.OutOrStdout()))
	},
}

// parseCmd renders a page on the fleet
var parseCmd = &cobra.Command{
	Use:   "parse <url>",
	Short: "Render a page on the least-loaded worker",
	Long: `Submit a page to the fleet. The manager picks the healthy worker with
the fewest active pages, loads the URL, runs any actions and returns the
rendered content.

Actions are page methods run after navigation, written as
func or func:name=value,... and run in order.

Examples:
  fleetdash parse https://example.com
  fleetdash parse https://example.com --load networkidle --block png,jpg
  fleetdash parse https://example.com --action click:selector=#accept -o page.html
  fleetdash parse https://example.com --header Accept-Language=en --timeout 30s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		opts := parseOpts
		opts.URL = args[0]
		return parseCommand(cmd.Context(), client, cmd.OutOrStdout(), opts, isTerminal(cmd.OutOrStdout()))
	},
}

// initCmd creates a new .fleetdash.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .fleetdash.yaml configuration",
	Long: `Create a .fleetdash.yaml file in the current directory.

Asks for the manager URL and dashboard interval, checks the manager is
reachable, then writes the file.

Examples:
  fleetdash init
  fleetdash init --api-url http://fleet.internal:8000 --non-interactive
  fleetdash init --force --no-check`,
	Annotations: map[string]string{annotationNoConfig: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.Context(), InitOptions{
			APIURL:         apiURLFlag,
			Interval:       initIntervalFlag,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive || !isTerminal(os.Stdin),
			NoCheck:        initNoCheck,
			Out:            cmd.OutOrStdout(),
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for fleetdash.

Examples:
  # Bash
  fleetdash completion bash > /etc/bash_completion.d/fleetdash

  # Zsh
  fleetdash completion zsh > "${fpath[1]}/_fleetdash"

  # Fish
  fleetdash completion fish > ~/.config/fish/completions/fleetdash.fish`,
	Annotations: map[string]string{annotationNoConfig: "true"},
	ValidArgs:   []string{"bash", "zsh", "fish", "powershell"},
	Args:        cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCompletion(cmd.Root(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	dashboardCmd.Flags().Var(&dashboardInterval, "interval", "refresh interval (e.g., 2s, 5s, 1m); defaults to dashboard.interval")

	terminateCmd.Flags().BoolVarP(&terminateYes, "yes", "y", false, "skip the confirmation prompt")

	parseCmd.Flags().StringVar(&parseOpts.Proxy, "proxy", "", "proxy for the worker's browser (user:pass@host:port)")
	parseCmd.Flags().DurationVar(&parseOpts.Timeout, "timeout", 0, "page load timeout (e.g., 30s)")
	parseCmd.Flags().StringArrayVarP(&parseOpts.Headers, "header", "H", nil, "extra request header name=value (repeatable)")
	parseCmd.Flags().StringSliceVar(&parseOpts.Block, "block", nil, "resource extensions to block (e.g., png,jpg)")
	parseCmd.Flags().StringVar(&parseOpts.Load, "load", "", "load state to wait for (load, domcontentloaded, networkidle)")
	parseCmd.Flags().StringArrayVar(&parseOpts.Actions, "action", nil, "page action func[:name=value,...] (repeatable)")
	parseCmd.Flags().StringVarP(&parseOpts.Output, "output", "o", "", "write page content to a file")

	initCmd.Flags().StringVar(&initIntervalFlag, "interval", "", "dashboard refresh interval (default 5s)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "don't prompt; use flags and defaults")
	initCmd.Flags().BoolVar(&initNoCheck, "no-check", false, "don't contact the manager before saving")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(workersCmd)
	rootCmd.AddCommand(spawnCmd)
	rootCmd.AddCommand(terminateCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}

// writeCompletion writes the completion script for shell.
func writeCompletion(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletion(w)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletion(w)
	default:
		return errors.New(errors.ErrExec,
			"Unknown shell: "+shell,
			"Supported shells: bash, zsh, fish, powershell")
	}
}
