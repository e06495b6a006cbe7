package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/rileyhilliard/fleetdash/internal/fleet"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
	"github.com/rileyhilliard/fleetdash/internal/monitor"
	"github.com/rileyhilliard/fleetdash/internal/ui"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// FleetSummary is the JSON form of fleet.Aggregates.
type FleetSummary struct {
	ActiveWorkers int     `json:"active_workers"`
	AverageCPU    float64 `json:"average_cpu"`
	AverageMemory float64 `json:"average_memory"`
	Total         int     `json:"total"`
}

// WorkersOutput is the JSON output of workers, spawn and terminate.
type WorkersOutput struct {
	Workers []fleetapi.Worker `json:"workers"`
	Summary FleetSummary      `json:"summary"`
}

// TerminateOutput is the JSON output of terminate.
type TerminateOutput struct {
	WorkerID   fleetapi.WorkerID `json:"worker_id"`
	Terminated bool              `json:"terminated"`
	WorkersOutput
}

func newWorkersOutput(workers []fleetapi.Worker) WorkersOutput {
	if workers == nil {
		workers = []fleetapi.Worker{}
	}
	agg := fleet.ComputeAggregates(workers)
	return WorkersOutput{
		Workers: workers,
		Summary: FleetSummary{
			ActiveWorkers: agg.ActiveWorkers,
			AverageCPU:    agg.AverageCPU,
			AverageMemory: agg.AverageMemory,
			Total:         agg.Total,
		},
	}
}

var workerColumns = []ui.TableColumn{
	{Title: "ID", Width: 14},
	{Title: "HOST", Width: 22},
	{Title: "STATUS", Width: 8},
	{Title: "CPU", Width: 7},
	{Title: "MEMORY", Width: 7},
	{Title: "PAGES", Width: 6},
	{Title: "LAST REPORT", Width: 19},
}

// workersCommand prints a one-shot view of the fleet.
func workersCommand(ctx context.Context, api fleet.API, out io.Writer, now time.Time) error {
	workers, err := api.ListWorkers(ctx)
	if err != nil {
		return errors.FromAPI(err, "list workers")
	}

	if machineMode {
		return WriteJSONSuccess(out, newWorkersOutput(workers))
	}

	renderFleet(out, workers, now)
	return nil
}

// renderFleet writes the worker table and the aggregate summary.
func renderFleet(out io.Writer, workers []fleetapi.Worker, now time.Time) {
	if len(workers) == 0 {
		fmt.Fprintln(out, ui.MutedStyle().Render("No workers running. Start one with 'fleetdash spawn'."))
		return
	}

	rows := make([][]string, len(workers))
	for i, w := range workers {
		rows[i] = []string{
			w.ID.String(),
			workerAddress(w),
			monitor.StatusText(w.Status),
			monitor.FormatPercent(w.CPUUsage),
			monitor.FormatPercent(w.MemoryUsage),
			strconv.Itoa(w.ActivePages),
			monitor.FormatTimestamp(w.LastReport),
		}
	}
	fmt.Fprintln(out, ui.RenderSimpleTable(workerColumns, rows))
	fmt.Fprintln(out)

	agg := fleet.ComputeAggregates(workers)
	summary := []ui.KeyValue{
		{Key: "Active workers", Value: strconv.Itoa(agg.ActiveWorkers)},
		{Key: "Average CPU", Value: monitor.FormatPercent(agg.AverageCPU)},
		{Key: "Average memory", Value: monitor.FormatPercent(agg.AverageMemory)},
		{Key: "Workers", Value: strconv.Itoa(agg.Total)},
	}
	if latest, ok := latestReport(workers); ok {
		summary = append(summary, ui.KeyValue{
			Key:   "Latest report",
			Value: humanize.RelTime(latest, now, "ago", "from now"),
		})
	}
	fmt.Fprint(out, ui.RenderSummary(summary))
}

func workerAddress(w fleetapi.Worker) string {
	switch {
	case w.Host == "":
		return "-"
	case w.Port == 0:
		return w.Host
	default:
		return fmt.Sprintf("%s:%d", w.Host, w.Port)
	}
}

// latestReport returns the newest parseable last_report in the fleet.
func latestReport(workers []fleetapi.Worker) (time.Time, bool) {
	var latest time.Time
	for _, w := range workers {
		if t, ok := monitor.ParseTimestamp(w.LastReport); ok && t.After(latest) {
			latest = t
		}
	}
	return latest, !latest.IsZero()
}

// commandSpinner returns a spinner for a fleet command, or nil in machine mode.
func commandSpinner(label string, out io.Writer, animate bool) *ui.Spinner {
	if machineMode {
		return nil
	}
	s := ui.NewSpinner(label)
	s.SetOutput(out)
	s.SetAnimated(animate)
	return s
}

// spawnCommand starts one worker and prints the fleet afterwards.
func spawnCommand(ctx context.Context, api fleet.API, out io.Writer, animate bool) error {
	store := fleet.NewStore(api)

	spin := commandSpinner("Spawning worker", out, animate)
	if spin != nil {
		spin.Start()
	}

	_, err := store.Spawn(ctx)
	if err != nil {
		if spin != nil {
			spin.Fail()
		}
		return errors.FromAPI(err, "spawn worker")
	}
	if spin != nil {
		spin.Success()
	}

	st := store.State()
	if machineMode {
		return WriteJSONSuccess(out, newWorkersOutput(st.Workers))
	}
	if st.Ready {
		fmt.Fprintln(out)
		renderFleet(out, st.Workers, time.Now())
	}
	return nil
}

// terminateCommand stops worker id once confirmer approves.
func terminateCommand(ctx context.Context, api fleet.API, out io.Writer, id fleetapi.WorkerID, confirmer fleet.Confirmer, animate bool) error {
	store := fleet.NewStore(api)

	var spin *ui.Spinner
	// The spinner only starts once the user has said yes
	confirmThenSpin := fleet.ConfirmFunc(func(ctx context.Context, id fleetapi.WorkerID) (bool, error) {
		ok, err := confirmer.Confirm(ctx, id)
		if err == nil && ok {
			spin = commandSpinner("Terminating worker "+id.String(), out, animate)
			if spin != nil {
				spin.Start()
			}
		}
		return ok, err
	})

	confirmed, err := store.Terminate(ctx, id, confirmThenSpin)
	switch {
	case err != nil && !confirmed:
		return errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't confirm termination",
			"Pass --yes to skip the prompt.")
	case err != nil:
		if spin != nil {
			spin.Fail()
		}
		return errors.FromAPI(err, "terminate worker")
	case !confirmed:
		if machineMode {
			return WriteJSONSuccess(out, TerminateOutput{WorkerID: id, WorkersOutput: newWorkersOutput(store.State().Workers)})
		}
		fmt.Fprintln(out, ui.WarningStyle().Render(ui.SymbolSkipped)+" Cancelled.")
		return nil
	}

	if spin != nil {
		spin.Success()
	}

	st := store.State()
	if machineMode {
		return WriteJSONSuccess(out, TerminateOutput{WorkerID: id, Terminated: true, WorkersOutput: newWorkersOutput(st.Workers)})
	}
	if st.Ready {
		fmt.Fprintln(out)
		renderFleet(out, st.Workers, time.Now())
	}
	return nil
}

// terminateConfirmer picks how terminate asks for approval: --yes skips
// the question, a terminal gets a huh prompt, anything else is refused.
func terminateConfirmer(yes, interactive bool) (fleet.Confirmer, error) {
	if yes {
		return fleet.AlwaysConfirm, nil
	}
	if machineMode || !interactive {
		return nil, errors.New(errors.ErrExec,
			"Refusing to terminate without confirmation",
			"Pass --yes to confirm non-interactively.")
	}
	return fleet.ConfirmFunc(promptTerminate), nil
}

func promptTerminate(ctx context.Context, id fleetapi.WorkerID) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Are you sure you want to terminate worker %s?", id)).
				Affirmative("Terminate").
				Negative("Cancel").
				Value(&ok),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
