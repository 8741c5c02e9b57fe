// Package shell implements an interactive Bubble Tea front end over a single
// contact.Service. Each input line is parsed with script.ParseLine and applied
// with a script.Runner.
package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/script"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// inputHeight is the number of lines reserved for the input line.
const inputHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// DefaultHistory is the number of transcript lines kept when no limit is set.
const DefaultHistory = 200

// Focus identifies the focused pane.
type Focus int

const (
	PaneTranscript Focus = iota
	PaneDetail
)

// Model is the root Bubble Tea model for the shell.
type Model struct {
	runner *script.Runner

	input      textinput.Model
	transcript viewport.Model
	help       help.Model
	keys       keyMap

	lines   []string
	history int

	detail *contact.Fields

	focus  Focus
	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithPrompt sets the input prompt.
func WithPrompt(prompt string) Option {
	return func(m *Model) { m.input.Prompt = prompt }
}

// WithHistory sets how many transcript lines are kept. Non-positive values are ignored.
func WithHistory(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.history = n
		}
	}
}

// NewModel creates a shell over the runner's directory with the input focused.
func NewModel(runner *script.Runner, opts ...Option) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "add <id> <first> <last> <phone> <address>"
	in.Focus()

	m := Model{
		runner:     runner,
		input:      in,
		transcript: viewport.New(0, 0),
		help:       help.New(),
		keys:       DefaultKeyMap(),
		history:    DefaultHistory,
		focus:      PaneTranscript,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.appendLines(labelStyle.Render("type help for commands"))
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		left, _ := PaneWidths(msg.Width)
		m.transcript.Width = max(left-borderChrome, 0)
		m.transcript.Height = m.contentHeight()
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 0)
		m.transcript.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		if m.focus == PaneTranscript {
			m.focus = PaneDetail
			m.input.Blur()
		} else {
			m.focus = PaneTranscript
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.transcript.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.transcript.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.focus != PaneTranscript {
			return m, nil
		}
		line := m.input.Value()
		m.input.Reset()
		return m.submit(line)
	}

	if m.focus != PaneTranscript {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles one input line.
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return m, nil
	case "quit", "exit":
		return m, tea.Quit
	case "help":
		m.appendLines(helpLines()...)
		return m, nil
	}

	echo := labelStyle.Render(m.input.Prompt + line)

	op, err := script.ParseLine(line)
	if err != nil {
		if errors.Is(err, script.ErrEmptyLine) {
			return m, nil
		}
		m.appendLines(echo, errStyle.Render("✗ "+err.Error()))
		return m, nil
	}

	res := m.runner.Apply(op)
	if res.Status != script.StatusPassed {
		m.appendLines(echo, errStyle.Render(fmt.Sprintf("✗ %s: %s", op, res.Reason)))
		if op.Op == script.OpGet {
			m.detail = nil
		}
		return m, nil
	}

	m.appendLines(echo, okStyle.Render("✓ "+op.String()))
	m.refreshDetail(op, res)
	return m, nil
}

// refreshDetail points the detail pane at the contact an operation touched.
func (m *Model) refreshDetail(op script.Operation, res script.Result) {
	if res.Found != nil {
		m.detail = res.Found
		return
	}
	id := op.TargetID()
	if c, ok := m.runner.Service().GetContact(id); ok {
		f := c.Fields()
		m.detail = &f
		return
	}
	if m.detail != nil && m.detail.ID == id {
		m.detail = nil
	}
}

// appendLines adds lines to the transcript, dropping the oldest beyond the history limit.
func (m *Model) appendLines(lines ...string) {
	m.lines = append(m.lines, lines...)
	if over := len(m.lines) - m.history; over > 0 {
		m.lines = append([]string(nil), m.lines[over:]...)
	}
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
}

func helpLines() []string {
	out := []string{titleStyle.Render("commands")}
	for _, c := range script.LineCommands {
		out = append(out, fmt.Sprintf("  %-46s %s", c.Usage, labelStyle.Render(c.Help)))
	}
	out = append(out,
		fmt.Sprintf("  %-46s %s", "help", labelStyle.Render("show this list")),
		fmt.Sprintf("  %-46s %s", "quit", labelStyle.Render("leave the shell")),
	)
	return out
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome, the input line and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - inputHeight - helpBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the two panes, the input line and the help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	leftStyle, rightStyle := FocusedBorder(), UnfocusedBorder()
	if m.focus == PaneDetail {
		leftStyle, rightStyle = UnfocusedBorder(), FocusedBorder()
	}

	leftStyle = leftStyle.
		Width(leftWidth - borderChrome).
		Height(contentHeight)
	rightStyle = rightStyle.
		Width(rightWidth - borderChrome).
		Height(contentHeight)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Render(m.transcript.View()),
		rightStyle.Render(m.viewDetail()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, panes, m.input.View(), m.help.View(m.keys))
}

// viewDetail renders the detail pane.
func (m Model) viewDetail() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Contact") + "\n\n")

	if m.detail == nil {
		b.WriteString(labelStyle.Render("none selected") + "\n")
	} else {
		rows := []struct{ label, value string }{
			{"id", m.detail.ID},
			{"first", m.detail.FirstName},
			{"last", m.detail.LastName},
			{"phone", m.detail.Phone},
			{"address", m.detail.Address},
		}
		for _, r := range rows {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-8s", r.label)), r.value)
		}
	}

	fmt.Fprintf(&b, "\n%s %d", labelStyle.Render("stored"), m.runner.Service().Len())
	return b.String()
}
