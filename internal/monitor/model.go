package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/fleetdash/internal/fleet"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
)

// Height breakpoints for layout adjustments
const (
	HeightMinimal = 16
)

// Model is the Bubble Tea model for the fleet dashboard.
// It renders whatever State the store last published and turns key
// presses into store commands.
type Model struct {
	ctx       context.Context
	store     *fleet.Store
	confirmer *PromptConfirmer
	endpoint  string
	interval  time.Duration
	now       func() time.Time

	state    fleet.State
	selected int
	width    int
	height   int
	quitting bool
	showHelp bool

	// notice is an error the user must dismiss before continuing
	notice string
	// prompt is a terminate confirmation waiting on y/n
	prompt *ConfirmRequest

	keys    keyMap
	help    help.Model
	spinner spinner.Model
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithConfirmer sets the confirmer shared with terminate commands.
func WithConfirmer(c *PromptConfirmer) ModelOption {
	return func(m *Model) { m.confirmer = c }
}

// WithEndpoint shows the manager URL in the header.
func WithEndpoint(url string) ModelOption {
	return func(m *Model) { m.endpoint = url }
}

// WithInterval shows the refresh period in the header.
func WithInterval(d time.Duration) ModelOption {
	return func(m *Model) { m.interval = d }
}

// WithNow overrides the clock used for relative times.
func WithNow(now func() time.Time) ModelOption {
	return func(m *Model) { m.now = now }
}

// NewModel creates a dashboard model over store. Commands run with ctx,
// so cancelling it aborts in-flight requests and pending prompts.
func NewModel(ctx context.Context, store *fleet.Store, opts ...ModelOption) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(ColorAccent)

	m := Model{
		ctx:       ctx,
		store:     store,
		confirmer: NewPromptConfirmer(),
		interval:  fleet.DefaultInterval,
		now:       time.Now,
		state:     store.State(),
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.syncKeys()
	return m
}

// Confirmer returns the confirmer terminate commands ask.
func (m Model) Confirmer() *PromptConfirmer {
	return m.confirmer
}

// Init starts the clock and begins listening for confirmation requests.
// Refreshes are driven by the fleet.Poller, not by the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForConfirmCmd(),
		clockTickCmd(),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case StateMsg:
		m.applyState(fleet.State(msg))

	case spawnResultMsg:
		m.applyState(msg.state)
		if notice := commandNotice("spawn worker", msg.err); notice != "" {
			m.notice = notice
		}

	case terminateResultMsg:
		m.applyState(msg.state)
		if notice := commandNotice("terminate worker", msg.err); notice != "" {
			m.notice = notice
		}

	case confirmRequestMsg:
		if m.quitting {
			msg.req.Answer(false)
			return m, nil
		}
		m.prompt = msg.req
		m.showHelp = false

	case clockTickMsg:
		return m, clockTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// applyState replaces the displayed state, keeping the selection on the
// same worker id when it survives the refresh.
func (m *Model) applyState(st fleet.State) {
	prev, hadPrev := m.SelectedWorker()

	m.state = st
	m.syncKeys()

	if len(st.Workers) == 0 {
		m.selected = 0
		return
	}
	if hadPrev {
		for i, w := range st.Workers {
			if w.ID == prev {
				m.selected = i
				return
			}
		}
	}
	if m.selected >= len(st.Workers) {
		m.selected = len(st.Workers) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// State returns the state currently on screen.
func (m Model) State() fleet.State {
	return m.state
}

// SelectedWorker returns the id of the highlighted worker.
func (m Model) SelectedWorker() (fleetapi.WorkerID, bool) {
	if m.selected >= 0 && m.selected < len(m.state.Workers) {
		return m.state.Workers[m.selected].ID, true
	}
	return "", false
}

// Notice returns the pending error notice, if any.
func (m Model) Notice() string {
	return m.notice
}

// Prompt returns the pending confirmation, if any.
func (m Model) Prompt() *ConfirmRequest {
	return m.prompt
}

// ShowFooter returns true if the terminal is tall enough to show the footer.
func (m Model) ShowFooter() bool {
	return m.height == 0 || m.height >= HeightMinimal
}
