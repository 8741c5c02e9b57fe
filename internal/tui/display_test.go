package tui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

// --- IsTTY ---

func TestIsTTY_NonFileWriter(t *testing.T) {
	var buf bytes.Buffer
	if IsTTY(&buf) {
		t.Error("non-*os.File writer should not be a TTY")
	}
}

func TestIsTTY_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "test")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if IsTTY(f) {
		t.Error("regular file should not be a TTY")
	}
}

// --- Bridge ---

func TestBridge_SendDeliversStepUpdate(t *testing.T) {
	b := NewBridge()

	go b.Send(StepUpdateMsg{Index: 0, Step: "add 1", Status: StatusRunning})

	got := <-b.Events()
	su, ok := got.(StepUpdateMsg)
	if !ok {
		t.Fatalf("expected StepUpdateMsg, got %T", got)
	}
	if su.Step != "add 1" {
		t.Errorf("step = %q, want %q", su.Step, "add 1")
	}
}

func TestBridge_DoneSendsSummaryAndCloses(t *testing.T) {
	b := NewBridge()

	go b.Done(RunDoneMsg{Passed: 2})

	got := <-b.Events()
	done, ok := got.(RunDoneMsg)
	if !ok {
		t.Fatalf("expected RunDoneMsg, got %T", got)
	}
	if done.Passed != 2 {
		t.Errorf("Passed = %d, want 2", done.Passed)
	}
	if _, open := <-b.Events(); open {
		t.Error("channel should be closed after Done")
	}
}

func TestBridge_ErrorSendsRunErrorAndCloses(t *testing.T) {
	b := NewBridge()

	go b.Error(errors.New("stopped"))

	got := <-b.Events()
	re, ok := got.(RunErrorMsg)
	if !ok {
		t.Fatalf("expected RunErrorMsg, got %T", got)
	}
	if re.Err.Error() != "stopped" {
		t.Errorf("error = %q, want %q", re.Err, "stopped")
	}
	if _, open := <-b.Events(); open {
		t.Error("channel should be closed after Error")
	}
}

// --- PlainDisplay ---

func runPlain(t *testing.T, events ...DisplayEvent) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	ch := make(chan DisplayEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	err := (&PlainDisplay{w: &buf}).Run(context.Background(), ch)
	return buf.String(), err
}

func TestPlainDisplay_RendersFinalStatusOnly(t *testing.T) {
	out, err := runPlain(t,
		StepUpdateMsg{Index: 0, Step: "add 12345", Status: StatusRunning, Progress: "1/2"},
		StepUpdateMsg{Index: 0, Step: "add 12345", Status: StatusPassed, Progress: "1/2"},
		RunDoneMsg{Passed: 1, Size: 1},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "[1/2] add 12345 passed\n") {
		t.Errorf("output should contain step line, got:\n%s", out)
	}
	if strings.Contains(out, "running") {
		t.Errorf("running transitions should not be printed, got:\n%s", out)
	}
	if !strings.Contains(out, "1 passed, 0 failed, 0 skipped; 1 contacts stored") {
		t.Errorf("output should contain summary, got:\n%s", out)
	}
}

func TestPlainDisplay_RendersDetails(t *testing.T) {
	out, err := runPlain(t,
		StepUpdateMsg{Step: "delete nope", Status: StatusFailed, Progress: "1/2", Reason: "contact ID not found"},
		StepUpdateMsg{Step: "get 1", Status: StatusPassed, Progress: "2/2", Contact: "1 John Doe"},
		RunDoneMsg{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "error: contact ID not found") {
		t.Errorf("output should show failure reason, got:\n%s", out)
	}
	if !strings.Contains(out, "contact: 1 John Doe") {
		t.Errorf("output should show found contact, got:\n%s", out)
	}
}

func TestPlainDisplay_HandlesContextCancellation(t *testing.T) {
	d := &PlainDisplay{w: &bytes.Buffer{}}
	ctx, cancel := context.WithCancel(context.Background())

	ch := make(chan DisplayEvent) // Unbuffered, will block.

	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, ch)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestPlainDisplay_ReturnsRunError(t *testing.T) {
	_, err := runPlain(t, RunErrorMsg{Err: errors.New("stopped before step 2")})
	if err == nil || !strings.Contains(err.Error(), "stopped before step 2") {
		t.Errorf("expected run error, got %v", err)
	}
}

func TestPlainDisplay_ClosedChannel(t *testing.T) {
	if _, err := runPlain(t); err != nil {
		t.Errorf("closed channel should end cleanly, got %v", err)
	}
}

// --- NewDisplay factory ---

func TestNewDisplay_ForcePlainReturnsPlainDisplay(t *testing.T) {
	d := NewDisplay(DisplayOptions{Writer: os.Stdout, ForcePlain: true, Steps: []string{"add 1"}})

	if _, ok := d.(*PlainDisplay); !ok {
		t.Errorf("ForcePlain should return *PlainDisplay, got %T", d)
	}
}

func TestNewDisplay_NonTTYReturnsPlainDisplay(t *testing.T) {
	d := NewDisplay(DisplayOptions{Writer: &bytes.Buffer{}, Steps: []string{"add 1"}})

	if _, ok := d.(*PlainDisplay); !ok {
		t.Errorf("non-TTY writer should return *PlainDisplay, got %T", d)
	}
}

func TestNewDisplay_DefaultsWriterToStdout(t *testing.T) {
	d := NewDisplay(DisplayOptions{ForcePlain: true})

	pd, ok := d.(*PlainDisplay)
	if !ok {
		t.Fatalf("expected *PlainDisplay, got %T", d)
	}
	if pd.w != os.Stdout {
		t.Error("default Writer should be os.Stdout")
	}
}
