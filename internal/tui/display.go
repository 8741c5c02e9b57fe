package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// DisplayEvent is an event sent to a Display via the update channel.
// Implemented by StepUpdateMsg, RunDoneMsg, and RunErrorMsg.
type DisplayEvent interface {
	isDisplayEvent()
}

var (
	_ DisplayEvent = StepUpdateMsg{}
	_ DisplayEvent = RunDoneMsg{}
	_ DisplayEvent = RunErrorMsg{}
)

// Display renders script step updates.
type Display interface {
	Run(ctx context.Context, events <-chan DisplayEvent) error
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer     io.Writer          // Output destination (default: os.Stdout).
	ForcePlain bool               // Force plain text even if TTY.
	Steps      []string           // Step names for TUI initialization.
	CancelFunc context.CancelFunc // Called by TUI on abort keypress (ignored by PlainDisplay).
}

// NewDisplay returns a TUI display when the writer is a TTY, or a plain text
// display otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	if opts.ForcePlain || !IsTTY(opts.Writer) {
		return &PlainDisplay{w: opts.Writer}
	}

	return &TUIDisplay{steps: opts.Steps, w: opts.Writer, cancelFunc: opts.CancelFunc}
}

// IsTTY reports whether w is connected to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Bridge manages the channel between a script runner and a Display consumer.
type Bridge struct {
	ch chan DisplayEvent
}

// NewBridge creates a Bridge with a buffered event channel.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan DisplayEvent, 16)}
}

// Events returns the read-only channel for Display.Run() to consume.
func (b *Bridge) Events() <-chan DisplayEvent {
	return b.ch
}

// Send delivers a StepUpdateMsg to the display.
// It blocks if the channel buffer (16) is full.
func (b *Bridge) Send(msg StepUpdateMsg) {
	b.ch <- msg
}

// Done signals that the run finished and closes the channel.
func (b *Bridge) Done(msg RunDoneMsg) {
	b.ch <- msg
	close(b.ch)
}

// Error signals that the run stopped early and closes the channel.
func (b *Bridge) Error(err error) {
	b.ch <- RunErrorMsg{Err: err}
	close(b.ch)
}

// PlainDisplay renders step updates as text lines.
type PlainDisplay struct {
	w io.Writer
}

// Run loops over events, printing each step update as a text line.
// Returns the run error if the run stopped early, or context error if cancelled.
func (d *PlainDisplay) Run(ctx context.Context, events <-chan DisplayEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch msg := ev.(type) {
			case StepUpdateMsg:
				d.renderUpdate(msg)
			case RunDoneMsg:
				_, _ = fmt.Fprintln(d.w, summaryLine(msg))
				return nil
			case RunErrorMsg:
				return msg.Err
			}
		}
	}
}

func (d *PlainDisplay) renderUpdate(su StepUpdateMsg) {
	if su.Status == StatusRunning {
		return
	}
	_, _ = fmt.Fprintf(d.w, "[%s] %s %s\n", su.Progress, su.Step, su.Status)

	if su.Status == StatusFailed && su.Reason != "" {
		_, _ = fmt.Fprintf(d.w, "         error: %s\n", su.Reason)
	}
	if su.Contact != "" {
		_, _ = fmt.Fprintf(d.w, "         contact: %s\n", su.Contact)
	}
}

// TUIDisplay renders step updates using a Bubble Tea terminal UI.
// Falls back to PlainDisplay if the TUI program fails to start.
type TUIDisplay struct {
	steps      []string
	w          io.Writer
	cancelFunc context.CancelFunc
}

// Run starts the Bubble Tea program and feeds events from the channel.
// If the TUI fails to initialize, it falls back to plain text output.
func (d *TUIDisplay) Run(ctx context.Context, events <-chan DisplayEvent) error {
	var opts []ModelOption
	if d.cancelFunc != nil {
		opts = append(opts, WithCancelFunc(d.cancelFunc))
	}
	p := tea.NewProgram(NewModel(d.steps, opts...), tea.WithOutput(d.w), tea.WithContext(ctx))

	// Forward events through an intermediate channel so the goroutine can be
	// stopped before falling back.
	fwd := make(chan DisplayEvent, 16)
	stop := make(chan struct{})

	go func() {
		defer close(fwd)
		for ev := range events {
			select {
			case fwd <- ev:
			case <-stop:
				return
			}
		}
	}()

	go func() {
		for ev := range fwd {
			p.Send(ev)
		}
	}()

	final, err := p.Run()
	if err != nil {
		close(stop)
		plain := &PlainDisplay{w: d.w}
		return plain.Run(ctx, events)
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
