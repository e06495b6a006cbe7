package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/rileyhilliard/fleetdash/internal/fleet"
	"github.com/rileyhilliard/fleetdash/internal/logger"
	"github.com/rileyhilliard/fleetdash/internal/monitor"
)

// dashboard wires the store, poller and TUI for one dashboard session.
type dashboard struct {
	store   *fleet.Store
	poller  *fleet.Poller
	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc
}

// newDashboard builds a dashboard session over api. The store's observer
// forwards every new state into the program, so the model never fetches on
// its own.
func newDashboard(ctx context.Context, api fleet.API, endpoint string, interval time.Duration, opts ...tea.ProgramOption) *dashboard {
	ctx, cancel := context.WithCancel(ctx)
	d := &dashboard{ctx: ctx, cancel: cancel}

	d.store = fleet.NewStore(api, fleet.WithObserver(func(st fleet.State) {
		d.program.Send(monitor.StateMsg(st))
	}))

	model := monitor.NewModel(ctx, d.store,
		monitor.WithConfirmer(monitor.NewPromptConfirmer()),
		monitor.WithEndpoint(endpoint),
		monitor.WithInterval(interval),
	)

	d.program = tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	d.poller = fleet.NewPoller(d.store, interval)
	return d
}

// run blocks until the user quits or the context is cancelled. The poller
// lives exactly as long as the program.
func (d *dashboard) run() error {
	defer d.cancel()

	d.poller.Start(d.ctx)
	defer d.poller.Stop()

	_, err := d.program.Run()
	if stderrors.Is(err, tea.ErrProgramKilled) && d.ctx.Err() != nil {
		// Interrupted by a signal
		return nil
	}
	return err
}

// dashboardCommand runs the live dashboard against the configured manager.
func dashboardCommand(ctx context.Context, interval time.Duration) error {
	if machineMode {
		return errors.New(errors.ErrExec,
			"The dashboard is interactive and has no JSON output",
			"Use 'fleetdash workers --json' for a machine-readable snapshot.")
	}
	if !isTerminal(os.Stdout) {
		return errors.New(errors.ErrExec,
			"The dashboard needs a terminal",
			"Use 'fleetdash workers' when piping or scripting.")
	}

	cfg := ActiveConfig()
	if interval == 0 {
		interval = cfg.Dashboard.Interval
	}

	restore, err := redirectLogs(cfg.Log.File)
	if err != nil {
		return err
	}
	defer restore()

	client, err := newClient()
	if err != nil {
		return err
	}

	log := logger.NewEnvLogger("dashboard")
	log.Info("watching %s every %s (config: %s)", client.BaseURL(), interval, configSource())

	return newDashboard(ctx, client, client.BaseURL(), interval, tea.WithAltScreen()).run()
}

// redirectLogs points loggers at path while the TUI owns the terminal, or
// discards them when no log file is configured. The returned func restores
// stderr.
func redirectLogs(path string) (func(), error) {
	if path == "" {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(os.Stderr) }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't open log file %s", path),
			"Check log.file in your config, or leave it empty to discard dashboard logs.")
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

func configSource() string {
	if activeConfigPath == "" {
		return "defaults"
	}
	return activeConfigPath
}
