package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts"
	"github.com/smileynet/contacts/internal/config"
	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/logger"
	"github.com/smileynet/contacts/internal/script"
	"github.com/smileynet/contacts/internal/shell"
	"github.com/smileynet/contacts/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for contacts.
type CLI struct {
	Version  kong.VersionFlag `help:"Show version." short:"V"`
	Run      RunCmd           `cmd:"" help:"Run a contact script against a fresh directory."`
	Shell    ShellCmd         `cmd:"" help:"Open the interactive contact shell."`
	Check    CheckCmd         `cmd:"" help:"Validate contact fields without storing them."`
	Examples ExamplesCmd      `cmd:"" help:"List the built-in example scripts."`
}

// RunCmd applies a script of operations and reports each step.
type RunCmd struct {
	Script      string `arg:"" help:"Script file, or the name of a built-in example."`
	NoTUI       bool   `help:"Force plain text output even if stdout is a TTY." default:"false"`
	FailureMode string `help:"continue or abort after the first failed step (overrides config)."`
}

// ShellCmd opens the interactive shell.
type ShellCmd struct {
	Prompt string `help:"Input prompt (overrides config)."`
}

// CheckCmd validates one contact's fields.
type CheckCmd struct {
	ID        string `arg:"" name:"id" help:"Contact ID (1-10 characters)."`
	FirstName string `arg:"" name:"first" help:"First name (1-10 characters)."`
	LastName  string `arg:"" name:"last" help:"Last name (1-10 characters)."`
	Phone     string `arg:"" name:"phone" help:"Phone number (exactly 10 digits)."`
	Address   string `arg:"" name:"address" help:"Address (1-30 characters)."`
}

// ExamplesCmd lists the embedded scripts.
type ExamplesCmd struct{}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/contacts/config.yaml"),
		".contacts/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(cfg.Log.Mode, os.Stderr, logger.WithRedaction(cfg.Log.Redact))
}

// scriptRunner abstracts script execution for testing.
type scriptRunner interface {
	Run(ctx context.Context, s *script.Script) (script.Summary, error)
}

// Run builds real dependencies and runs the script.
func (r *RunCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	// Apply CLI flag overrides.
	if r.FailureMode != "" {
		cfg.Run.FailureMode = r.FailureMode
	}
	if r.NoTUI {
		cfg.Display.Plain = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer log.Sync()

	fsys, name := contacts.ScriptSource(r.Script)
	s, err := script.Load(fsys, name)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	// The cancel func is passed to the TUI so q / Ctrl+C stops the run between steps.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := tui.NewBridge()
	display := tui.NewDisplay(tui.DisplayOptions{
		Writer:     os.Stdout,
		ForcePlain: cfg.Display.Plain,
		Steps:      stepNames(s),
		CancelFunc: cancel,
	})

	runner := script.NewRunner(
		contact.NewService(contact.WithLogger(log)),
		script.WithFailureMode(cfg.Run.FailureMode),
		script.WithLogger(log),
		script.WithStatusCallback(bridgeStatusCallback(bridge)),
	)

	return r.run(ctx, runner, s, display, bridge)
}

func (r *RunCmd) run(ctx context.Context, runner scriptRunner, s *script.Script, display tui.Display, bridge *tui.Bridge) error {
	displayDone := make(chan error, 1)
	go func() {
		displayDone <- display.Run(context.Background(), bridge.Events())
	}()

	// Wrap with OS signal handling so Ctrl+C in plain mode still works.
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sum, runErr := runner.Run(runCtx, s)

	var stepErr *script.RunError
	if runErr != nil && !errors.As(runErr, &stepErr) {
		bridge.Error(runErr)
	} else {
		bridge.Done(tui.RunDoneMsg{
			Passed:  sum.Passed,
			Failed:  sum.Failed,
			Skipped: sum.Skipped,
			Size:    sum.Size,
		})
	}

	// Wait for display to finish so it releases the terminal.
	<-displayDone

	return runErr
}

func stepNames(s *script.Script) []string {
	names := make([]string, len(s.Operations))
	for i, op := range s.Operations {
		names[i] = op.String()
	}
	return names
}

func bridgeStatusCallback(bridge *tui.Bridge) script.StatusCallback {
	return func(su script.StatusUpdate) {
		bridge.Send(tui.StepUpdateMsg{
			Index:    su.Result.Index,
			Step:     su.Result.Op.String(),
			Status:   tui.StepStatus(su.Result.Status),
			Progress: su.Progress,
			Reason:   su.Result.Reason,
			Contact:  formatFields(su.Result.Found),
		})
	}
}

func formatFields(f *contact.Fields) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s %s %s %s %q", f.ID, f.FirstName, f.LastName, f.Phone, f.Address)
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds the shell model and launches it when stdout is a terminal.
func (c *ShellCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	if c.Prompt != "" {
		cfg.Shell.Prompt = c.Prompt
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("shell: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	defer log.Sync()

	runner := script.NewRunner(
		contact.NewService(contact.WithLogger(log)),
		script.WithLogger(log),
	)
	m := shell.NewModel(runner,
		shell.WithPrompt(cfg.Shell.Prompt),
		shell.WithHistory(cfg.Shell.History),
	)

	prog := tea.NewProgram(m, tea.WithAltScreen())
	return c.run(tui.IsTTY(os.Stdout), prog)
}

func (c *ShellCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return errors.New("shell: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// Run validates the fields and reports the result on stdout.
func (c *CheckCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *CheckCmd) run(w io.Writer) error {
	_, err := contact.New(c.ID, c.FirstName, c.LastName, c.Phone, c.Address)
	if err != nil {
		var fe *contact.FieldError
		if errors.As(err, &fe) {
			_, _ = fmt.Fprintf(w, "invalid %s: %s\n", fe.Field, fe.Reason)
		}
		return fmt.Errorf("check: %w", err)
	}
	_, _ = fmt.Fprintln(w, "valid")
	return nil
}

// Run prints the embedded script names.
func (e *ExamplesCmd) Run() error {
	return e.run(os.Stdout, contacts.Examples)
}

func (e *ExamplesCmd) run(w io.Writer, fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return fmt.Errorf("examples: %w", err)
	}
	for _, name := range names {
		_, _ = fmt.Fprintln(w, strings.TrimSuffix(name, ".yaml"))
	}
	return nil
}

// Exit codes.
const (
	exitSuccess = 0
	exitFailed  = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var re *script.RunError
	if errors.As(err, &re) {
		return exitFailed
	}
	// A contact rejected by check is a result, not a setup problem.
	if errors.Is(err, contact.ErrInvalidArgument) {
		return exitFailed
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, kong.Vars{"version": version + " " + commit + " " + date})
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
