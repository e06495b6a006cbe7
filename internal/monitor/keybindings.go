package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap holds every dashboard binding. It implements help.KeyMap.
type keyMap struct {
	Quit      key.Binding
	Refresh   key.Binding
	Spawn     key.Binding
	Terminate key.Binding
	Up        key.Binding
	Down      key.Binding
	First     key.Binding
	Last      key.Binding
	Help      key.Binding
	Close     key.Binding

	// Modal bindings, active only while a prompt or notice is shown
	Yes     key.Binding
	No      key.Binding
	Dismiss key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Spawn: key.NewBinding(
			key.WithKeys("s", "+"),
			key.WithHelp("s", "spawn worker"),
		),
		Terminate: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "terminate selected"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous worker"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next worker"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "first worker"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "last worker"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc", " "),
			key.WithHelp("enter", "dismiss"),
		),
	}
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Spawn, k.Terminate, k.Refresh, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Spawn, k.Terminate, k.Refresh},
		{k.Up, k.Down, k.First, k.Last},
		{k.Help, k.Close, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// ctrl+c always exits, even from a modal
	if msg.String() == "ctrl+c" {
		return true, m.quit()
	}

	// A pending confirmation owns the keyboard until answered
	if m.prompt != nil {
		switch {
		case key.Matches(msg, m.keys.Yes):
			return true, m.answerPrompt(true)
		case key.Matches(msg, m.keys.No):
			return true, m.answerPrompt(false)
		}
		return true, nil
	}

	// So does a notice, until dismissed
	if m.notice != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.notice = ""
		}
		return true, nil
	}

	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key.Matches(msg, m.keys.Close) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return true, m.quit()

	case key.Matches(msg, m.keys.Refresh):
		return true, m.refreshCmd()

	case key.Matches(msg, m.keys.Spawn):
		// Disabled while a spawn is in flight
		if m.state.Spawning {
			return true, nil
		}
		m.state.Spawning = true
		m.syncKeys()
		return true, m.spawnCmd()

	case key.Matches(msg, m.keys.Terminate):
		id, ok := m.SelectedWorker()
		if !ok {
			return true, nil
		}
		return true, m.terminateCmd(id)

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.state.Workers)-1 {
			m.selected++
		}
		return true, nil

	case key.Matches(msg, m.keys.First):
		if len(m.state.Workers) > 0 {
			m.selected = 0
		}
		return true, nil

	case key.Matches(msg, m.keys.Last):
		if len(m.state.Workers) > 0 {
			m.selected = len(m.state.Workers) - 1
		}
		return true, nil
	}

	return false, nil
}

func (m *Model) answerPrompt(ok bool) tea.Cmd {
	m.prompt.Answer(ok)
	m.prompt = nil
	return m.waitForConfirmCmd()
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	if m.prompt != nil {
		m.prompt.Answer(false)
		m.prompt = nil
	}
	return tea.Quit
}

// syncKeys greys out bindings that can't fire right now.
func (m *Model) syncKeys() {
	m.keys.Spawn.SetEnabled(!m.state.Spawning)
	m.keys.Terminate.SetEnabled(len(m.state.Workers) > 0)
}
