package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState represents the current state of a spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
	SpinnerSkipped
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerTick = 80 * time.Millisecond

// Spinner shows an animated indicator while a fleet command runs, then
// replaces it with a one-line result.
//
// With animation off (stdout is not a terminal) only the final line is
// written, so piped output stays clean.
type Spinner struct {
	mu           sync.Mutex
	label        string
	state        SpinnerState
	frame        int
	startTime    time.Time
	endTime      time.Time
	stopChan     chan struct{}
	doneChan     chan struct{}
	out          io.Writer
	animated     bool
	running      bool
	lastRendered string
}

// NewSpinner creates a spinner writing to stdout with animation on.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		label:    label,
		state:    SpinnerPending,
		out:      os.Stdout,
		animated: true,
	}
}

// SetOutput redirects the spinner.
func (s *Spinner) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = w
}

// SetAnimated turns frame animation on or off.
func (s *Spinner) SetAnimated(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animated = on
}

// Start begins the spinner animation. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.state = SpinnerInProgress
	s.startTime = time.Now()
	s.endTime = time.Time{}
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	animated := s.animated
	s.mu.Unlock()

	if !animated {
		close(s.doneChan)
		return
	}

	s.render()
	go s.animate()
}

// Stop halts the animation without changing state.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.endTime = time.Now()
	close(s.stopChan)
	s.mu.Unlock()

	<-s.doneChan
}

// Success stops the spinner and prints the label with a success mark.
func (s *Spinner) Success() { s.finish(SpinnerSuccess) }

// Fail stops the spinner and prints the label with a failure mark.
func (s *Spinner) Fail() { s.finish(SpinnerFailed) }

// Skip stops the spinner and prints the label as skipped.
func (s *Spinner) Skip() { s.finish(SpinnerSkipped) }

func (s *Spinner) finish(state SpinnerState) {
	s.Stop()
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.renderFinal()
}

// State returns the current spinner state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns the time the spinner ran, or has been running so far.
func (s *Spinner) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Spinner) elapsedLocked() time.Duration {
	switch {
	case s.startTime.IsZero():
		return 0
	case !s.endTime.IsZero():
		return s.endTime.Sub(s.startTime)
	default:
		return time.Since(s.startTime)
	}
}

// Label returns the spinner's label.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// SetLabel updates the spinner's label.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	defer close(s.doneChan)

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	style := lipgloss.NewStyle().Foreground(spinnerColors[(s.frame/2)%len(spinnerColors)])
	line := fmt.Sprintf("\r%s %s...", style.Render(spinnerFrames[s.frame]), s.label)

	s.clearLocked()
	fmt.Fprint(s.out, line)
	s.lastRendered = line
}

func (s *Spinner) clearLocked() {
	if s.lastRendered == "" {
		return
	}
	clearLen := lipgloss.Width(s.lastRendered)
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", clearLen)+"\r")
}

func (s *Spinner) renderFinal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var symbol string
	var style lipgloss.Style

	switch s.state {
	case SpinnerSuccess:
		symbol, style = SymbolComplete, SuccessStyle()
	case SpinnerFailed:
		symbol, style = SymbolFail, ErrorStyle()
	case SpinnerSkipped:
		symbol, style = SymbolSkipped, WarningStyle()
	default:
		symbol, style = SymbolPending, MutedStyle()
	}

	s.clearLocked()
	s.lastRendered = ""

	fmt.Fprintf(s.out, "%s %s %s\n",
		style.Render(symbol),
		s.label,
		MutedStyle().Render(formatDuration(s.elapsedLocked())),
	)
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
