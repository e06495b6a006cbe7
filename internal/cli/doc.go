// Package cli implements the fleetdash command-line interface.
//
// Each Cobra command is a thin shell: it resolves the config, builds a
// fleetapi.Client and hands it to a command function that takes its
// dependencies as arguments (fleet.API, an io.Writer, a Confirmer), so the
// functions can be tested against fakes.
//
// # Command Structure
//
//	fleetdash dashboard          - Live dashboard (alias: monitor)
//	fleetdash workers            - One-shot worker table with averages
//	fleetdash spawn              - Start a worker
//	fleetdash terminate <id>     - Stop a worker after confirmation
//	fleetdash parse <url>        - Render a page on the fleet
//	fleetdash init               - Create .fleetdash.yaml
//	fleetdash version            - Build information
//	fleetdash completion <shell> - Shell completion scripts
//
// # Flag Handling
//
// Global flags (--config, --api-url, --json, --verbose, --no-color) live on
// the root command. PersistentPreRunE loads and validates the config once
// per invocation; commands annotated as not needing a config (init,
// version, completion) skip that step so they work before a config exists.
//
// # Machine Output
//
// With --json every command writes a {success, data, error} envelope on
// stdout and suppresses spinners and colors.
package cli
