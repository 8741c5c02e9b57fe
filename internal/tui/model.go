package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus is the display state of one script step.
// Values mirror script.Status so the caller can convert directly, keeping
// this package free of a script dependency.
type StepStatus string

const (
	StatusPending StepStatus = "pending"
	StatusRunning StepStatus = "running"
	StatusPassed  StepStatus = "passed"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// StepState tracks the display state of a single step.
type StepState struct {
	Name    string
	Status  StepStatus
	Reason  string
	Contact string
}

// StepUpdateMsg reports a step transition.
type StepUpdateMsg struct {
	Index    int    // 0-based step index.
	Step     string // Display name, e.g. "add 12345".
	Status   StepStatus
	Progress string // "n/total".
	Reason   string // Why a step failed.
	Contact  string // Stored values for a get that found its contact.
}

// RunDoneMsg signals that every step was processed.
type RunDoneMsg struct {
	Passed, Failed, Skipped int
	Size                    int // Contacts stored at the end of the run.
}

// RunErrorMsg signals that the run stopped early.
type RunErrorMsg struct {
	Err error
}

func (StepUpdateMsg) isDisplayEvent() {}
func (RunDoneMsg) isDisplayEvent()    {}
func (RunErrorMsg) isDisplayEvent()   {}

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Model is the Bubble Tea model for script step display.
type Model struct {
	steps      []StepState
	spinner    spinner.Model
	done       *RunDoneMsg
	err        error
	quit       bool
	cancelFunc context.CancelFunc
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithCancelFunc sets the function called when the user aborts with q or ctrl+c.
func WithCancelFunc(cancel context.CancelFunc) ModelOption {
	return func(m *Model) { m.cancelFunc = cancel }
}

// NewModel creates a Model with one pending row per step name.
func NewModel(stepNames []string, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	steps := make([]StepState, len(stepNames))
	for i, name := range stepNames {
		steps[i] = StepState{Name: name, Status: StatusPending}
	}

	m := Model{steps: steps, spinner: s}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Err returns the error the run ended with, if any.
func (m Model) Err() error {
	return m.err
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StepUpdateMsg:
		if msg.Index < 0 || msg.Index >= len(m.steps) {
			return m, nil
		}
		st := &m.steps[msg.Index]
		st.Status = msg.Status
		if msg.Step != "" {
			st.Name = msg.Step
		}
		st.Reason = msg.Reason
		st.Contact = msg.Contact
		return m, nil

	case RunDoneMsg:
		m.done = &msg
		return m, tea.Quit

	case RunErrorMsg:
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			if m.cancelFunc != nil {
				m.cancelFunc()
			}
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the step list with status indicators.
func (m Model) View() string {
	var b strings.Builder

	for _, st := range m.steps {
		fmt.Fprintf(&b, "  %s %s\n", statusIndicator(st.Status, m.spinner.View()), st.Name)
		if st.Status == StatusFailed && st.Reason != "" {
			b.WriteString(dimStyle.Render("      "+st.Reason) + "\n")
		}
		if st.Contact != "" {
			b.WriteString(dimStyle.Render("      "+st.Contact) + "\n")
		}
	}

	switch {
	case m.err != nil:
		fmt.Fprintf(&b, "\n  Error: %s\n", m.err)
	case m.done != nil:
		fmt.Fprintf(&b, "\n  %s\n", summaryLine(*m.done))
	}

	return b.String()
}

func summaryLine(d RunDoneMsg) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped; %d contacts stored",
		d.Passed, d.Failed, d.Skipped, d.Size)
}

// statusIndicator returns the Unicode indicator for a step status.
func statusIndicator(status StepStatus, spinnerView string) string {
	switch status {
	case StatusPending:
		return "○"
	case StatusRunning:
		return spinnerView
	case StatusPassed:
		return passStyle.Render("✓")
	case StatusFailed:
		return failStyle.Render("✗")
	case StatusSkipped:
		return "–"
	default:
		return "?"
	}
}
