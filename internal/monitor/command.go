package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/fleetdash/internal/fleet"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
)

// StateMsg carries a new store state into the program.
// The dashboard wires fleet.WithObserver to program.Send(StateMsg(st)).
type StateMsg fleet.State

// spawnResultMsg reports a finished spawn attempt.
type spawnResultMsg struct {
	started bool
	err     error
	state   fleet.State
}

// terminateResultMsg reports a finished terminate attempt.
type terminateResultMsg struct {
	id        fleetapi.WorkerID
	confirmed bool
	err       error
	state     fleet.State
}

// confirmRequestMsg asks the user a yes/no question on behalf of the store.
type confirmRequestMsg struct {
	req *ConfirmRequest
}

// clockTickMsg re-renders relative times in the header.
type clockTickMsg time.Time

const clockInterval = time.Second

// spawnCmd runs Store.Spawn off the UI goroutine.
func (m Model) spawnCmd() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		started, err := store.Spawn(ctx)
		return spawnResultMsg{started: started, err: err, state: store.State()}
	}
}

// terminateCmd runs Store.Terminate off the UI goroutine. The call blocks
// inside the confirmer until the prompt it raises is answered.
func (m Model) terminateCmd(id fleetapi.WorkerID) tea.Cmd {
	ctx, store, confirmer := m.ctx, m.store, m.confirmer
	return func() tea.Msg {
		confirmed, err := store.Terminate(ctx, id, confirmer)
		return terminateResultMsg{id: id, confirmed: confirmed, err: err, state: store.State()}
	}
}

// refreshCmd forces an out-of-band refresh.
func (m Model) refreshCmd() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		store.Refresh(ctx)
		return StateMsg(store.State())
	}
}

// waitForConfirmCmd receives the next confirmation request.
// It gives up when the dashboard context ends.
func (m Model) waitForConfirmCmd() tea.Cmd {
	ctx, confirmer := m.ctx, m.confirmer
	return func() tea.Msg {
		select {
		case req := <-confirmer.Requests():
			return confirmRequestMsg{req: req}
		case <-ctx.Done():
			return nil
		}
	}
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// commandNotice builds the interruptive message for a failed command,
// e.g. "Failed to spawn worker: No free ports". Cancellation during
// shutdown produces no notice.
func commandNotice(action string, err error) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}

	var cmdErr *fleetapi.CommandError
	if errors.As(err, &cmdErr) {
		return fmt.Sprintf("Failed to %s: %s", action, cmdErr.Message())
	}
	return fmt.Sprintf("Failed to %s: %s", action, err.Error())
}
