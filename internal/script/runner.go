package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/smileynet/contacts/internal/config"
	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/logger"
)

// Status is the state of one step.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of applying one operation.
type Result struct {
	Index  int
	Op     Operation
	Status Status
	Err    error           // Error returned by the service; nil when applied.
	Found  *contact.Fields // Stored values for a get that found its contact.
	Reason string          // Why the step failed its expectation.
}

// StatusUpdate reports progress of a running script.
type StatusUpdate struct {
	Progress string // "n/total", 1-based.
	Result   Result
}

// StatusCallback receives step transitions: running, then a final status.
type StatusCallback func(StatusUpdate)

// Summary tallies a finished run.
type Summary struct {
	Results []Result
	Passed  int
	Failed  int
	Skipped int
	Size    int // Contacts stored when the run ended.
}

// RunError indicates that one or more steps did not meet their expectation.
type RunError struct {
	Failed int
	Total  int
	First  Result // First failed step.
}

func (e *RunError) Error() string {
	return fmt.Sprintf("script: %d of %d steps failed; first: step %d (%s): %s",
		e.Failed, e.Total, e.First.Index+1, e.First.Op, e.First.Reason)
}

// Runner applies operations to a contact.Service.
type Runner struct {
	svc            *contact.Service
	failureMode    string
	statusCallback StatusCallback
	log            *logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// NewRunner creates a Runner over svc. Failure mode defaults to continue.
func NewRunner(svc *contact.Service, opts ...Option) *Runner {
	r := &Runner{
		svc:            svc,
		failureMode:    config.FailureContinue,
		statusCallback: func(StatusUpdate) {},
		log:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithFailureMode sets "continue" or "abort". With abort, steps after the
// first failure are skipped.
func WithFailureMode(mode string) Option {
	return func(r *Runner) {
		if mode != "" {
			r.failureMode = mode
		}
	}
}

// WithStatusCallback sets the callback for progress updates.
func WithStatusCallback(cb StatusCallback) Option {
	return func(r *Runner) { r.statusCallback = cb }
}

// WithLogger sets the logger used for step events. Entries carry
// component=script.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l.With("component", "script")
		}
	}
}

// Service returns the directory the runner operates on.
func (r *Runner) Service() *contact.Service {
	return r.svc
}

// Apply runs a single operation and judges it against its expectation.
func (r *Runner) Apply(op Operation) Result {
	res := Result{Op: op}

	switch op.Op {
	case OpAdd:
		res.Err = r.add(op.Contact)
	case OpDelete:
		res.Err = r.svc.DeleteContact(op.ID)
	case OpUpdateFirstName:
		res.Err = r.svc.UpdateFirstName(op.ID, op.Value)
	case OpUpdateLastName:
		res.Err = r.svc.UpdateLastName(op.ID, op.Value)
	case OpUpdatePhone:
		res.Err = r.svc.UpdatePhone(op.ID, op.Value)
	case OpUpdateAddress:
		res.Err = r.svc.UpdateAddress(op.ID, op.Value)
	case OpGet:
		if c, ok := r.svc.GetContact(op.ID); ok {
			f := c.Fields()
			res.Found = &f
		}
	default:
		res.Err = fmt.Errorf("%w %q", ErrUnknownOp, op.Op)
	}

	res.Status, res.Reason = judge(op, res)
	return res
}

// Run applies every operation in order and reports each step to the status
// callback. It returns *RunError when any step failed, or the context error
// if ctx is cancelled between steps.
func (r *Runner) Run(ctx context.Context, s *Script) (Summary, error) {
	total := len(s.Operations)
	results := make([]Result, 0, total)
	aborted := false

	for i, op := range s.Operations {
		progress := fmt.Sprintf("%d/%d", i+1, total)

		if aborted {
			res := Result{Index: i, Op: op, Status: StatusSkipped}
			r.statusCallback(StatusUpdate{Progress: progress, Result: res})
			results = append(results, res)
			continue
		}

		if err := ctx.Err(); err != nil {
			r.log.Error("script stopped", "step", i+1, "error", err)
			return r.summarize(results), fmt.Errorf("script: stopped before step %d: %w", i+1, err)
		}

		r.statusCallback(StatusUpdate{Progress: progress, Result: Result{Index: i, Op: op, Status: StatusRunning}})

		res := r.Apply(op)
		res.Index = i
		r.log.Debug("step finished", "step", i+1, "op", string(op.Op), "id", op.TargetID(), "status", string(res.Status))
		r.statusCallback(StatusUpdate{Progress: progress, Result: res})
		results = append(results, res)

		if res.Status == StatusFailed {
			r.log.Warn("step failed", "step", i+1, "op", string(op.Op), "id", op.TargetID())
			aborted = r.failureMode == config.FailureAbort
		}
	}

	sum := r.summarize(results)
	r.log.Info("script finished", "steps", total, "passed", sum.Passed, "failed", sum.Failed, "skipped", sum.Skipped, "size", sum.Size)
	if sum.Failed > 0 {
		runErr := &RunError{Failed: sum.Failed, Total: total}
		for _, res := range results {
			if res.Status == StatusFailed {
				runErr.First = res
				break
			}
		}
		return sum, runErr
	}
	return sum, nil
}

func (r *Runner) add(spec *ContactSpec) error {
	if spec == nil {
		return r.svc.AddContact(nil)
	}
	c, err := contact.New(spec.ID, spec.FirstName, spec.LastName, spec.Phone, spec.Address)
	if err != nil {
		return err
	}
	return r.svc.AddContact(c)
}

func (r *Runner) summarize(results []Result) Summary {
	sum := Summary{Results: results, Size: r.svc.Len()}
	for _, res := range results {
		switch res.Status {
		case StatusPassed:
			sum.Passed++
		case StatusFailed:
			sum.Failed++
		case StatusSkipped:
			sum.Skipped++
		}
	}
	return sum
}

// judge compares an applied operation's outcome with its expectation.
func judge(op Operation, res Result) (Status, string) {
	if !op.Op.Mutates() {
		if res.Err != nil {
			return StatusFailed, res.Err.Error()
		}
		return judgeGet(op, res.Found)
	}

	switch op.Expectation() {
	case ExpectRejected:
		if res.Err == nil {
			return StatusFailed, "operation succeeded, want rejection"
		}
		if !errors.Is(res.Err, contact.ErrInvalidArgument) {
			return StatusFailed, res.Err.Error()
		}
		return StatusPassed, ""
	default:
		if res.Err != nil {
			return StatusFailed, res.Err.Error()
		}
		return StatusPassed, ""
	}
}

func judgeGet(op Operation, found *contact.Fields) (Status, string) {
	if op.Expectation() == ExpectAbsent {
		if found != nil {
			return StatusFailed, fmt.Sprintf("contact %q exists, want absent", op.ID)
		}
		return StatusPassed, ""
	}
	if found == nil {
		return StatusFailed, fmt.Sprintf("contact %q not found", op.ID)
	}
	if op.Want != nil {
		if reason := diffWant(*op.Want, *found); reason != "" {
			return StatusFailed, reason
		}
	}
	return StatusPassed, ""
}

// diffWant reports the first non-empty wanted field that differs from got.
func diffWant(want ContactSpec, got contact.Fields) string {
	checks := []struct {
		field     string
		want, got string
	}{
		{contact.FieldID, want.ID, got.ID},
		{contact.FieldFirstName, want.FirstName, got.FirstName},
		{contact.FieldLastName, want.LastName, got.LastName},
		{contact.FieldPhone, want.Phone, got.Phone},
		{contact.FieldAddress, want.Address, got.Address},
	}
	for _, c := range checks {
		if c.want != "" && c.want != c.got {
			return fmt.Sprintf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
	return ""
}
