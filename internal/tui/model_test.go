package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

func TestNewModel_InitializesSteps(t *testing.T) {
	names := []string{"add 12345", "get 12345", "delete 12345"}
	m := NewModel(names)

	if got := len(m.steps); got != 3 {
		t.Fatalf("steps count = %d, want 3", got)
	}
	for i, name := range names {
		if m.steps[i].Name != name {
			t.Errorf("steps[%d].Name = %q, want %q", i, m.steps[i].Name, name)
		}
		if m.steps[i].Status != StatusPending {
			t.Errorf("steps[%d].Status = %q, want %q", i, m.steps[i].Status, StatusPending)
		}
	}
	if m.done != nil || m.err != nil {
		t.Error("new model should be neither done nor failed")
	}
}

func TestModel_Init_ReturnsTickCmd(t *testing.T) {
	if NewModel([]string{"add 1"}).Init() == nil {
		t.Fatal("Init() should return a non-nil Cmd for the spinner")
	}
}

func TestModel_Update_StepUpdateMsg(t *testing.T) {
	tests := []struct {
		name   string
		status StepStatus
	}{
		{name: "running", status: StatusRunning},
		{name: "passed", status: StatusPassed},
		{name: "failed", status: StatusFailed},
		{name: "skipped", status: StatusSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel([]string{"add 1", "add 1"})

			newModel, _ := m.Update(StepUpdateMsg{Index: 1, Step: "add 1", Status: tt.status})
			updated := newModel.(Model)

			// Steps are addressed by index, so duplicate names stay distinct.
			if updated.steps[1].Status != tt.status {
				t.Errorf("steps[1].Status = %q, want %q", updated.steps[1].Status, tt.status)
			}
			if updated.steps[0].Status != StatusPending {
				t.Errorf("steps[0].Status = %q, want pending", updated.steps[0].Status)
			}
		})
	}
}

func TestModel_Update_StepUpdateMsg_OutOfRange(t *testing.T) {
	m := NewModel([]string{"add 1"})

	for _, idx := range []int{-1, 1, 99} {
		newModel, _ := m.Update(StepUpdateMsg{Index: idx, Status: StatusRunning})
		if got := newModel.(Model).steps[0].Status; got != StatusPending {
			t.Errorf("index %d: status = %q, want pending", idx, got)
		}
	}
}

func TestModel_Update_RunDoneMsg(t *testing.T) {
	m := NewModel([]string{"add 1"})

	newModel, cmd := m.Update(RunDoneMsg{Passed: 1, Size: 1})
	updated := newModel.(Model)

	if updated.done == nil || updated.done.Passed != 1 {
		t.Errorf("done = %+v, want Passed 1", updated.done)
	}
	if cmd == nil {
		t.Error("RunDoneMsg should produce a quit Cmd")
	}
}

func TestModel_Update_RunErrorMsg(t *testing.T) {
	m := NewModel([]string{"add 1"})

	newModel, cmd := m.Update(RunErrorMsg{Err: errors.New("stopped")})
	updated := newModel.(Model)

	if updated.Err() == nil || updated.Err().Error() != "stopped" {
		t.Errorf("Err() = %v, want stopped", updated.Err())
	}
	if cmd == nil {
		t.Error("RunErrorMsg should produce a quit Cmd")
	}
}

func TestModel_Update_QuitKeysCallCancel(t *testing.T) {
	keys := map[string]tea.KeyMsg{
		"q":      {Type: tea.KeyRunes, Runes: []rune{'q'}},
		"ctrl+c": {Type: tea.KeyCtrlC},
	}
	for name, key := range keys {
		t.Run(name, func(t *testing.T) {
			cancelled := false
			m := NewModel([]string{"add 1"}, WithCancelFunc(func() { cancelled = true }))

			newModel, cmd := m.Update(key)

			if !newModel.(Model).quit {
				t.Error("quit should be set")
			}
			if !cancelled {
				t.Error("cancel func should be called")
			}
			if cmd == nil {
				t.Error("should produce a quit Cmd")
			}
		})
	}
}

func TestModel_Update_QuitWithoutCancel(t *testing.T) {
	m := NewModel([]string{"add 1"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q should quit even without a cancel func")
	}
}

func TestModel_View_StatusIndicators(t *testing.T) {
	tests := []struct {
		status StepStatus
		want   string
	}{
		{StatusPending, "○"},
		{StatusPassed, "✓"},
		{StatusFailed, "✗"},
		{StatusSkipped, "–"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			m := NewModel([]string{"get 12345"})
			newModel, _ := m.Update(StepUpdateMsg{Index: 0, Status: tt.status})

			view := newModel.(Model).View()
			if !strings.Contains(view, tt.want) || !strings.Contains(view, "get 12345") {
				t.Errorf("View() = %q, want indicator %q and step name", view, tt.want)
			}
		})
	}
}

func TestModel_View_FailedReason(t *testing.T) {
	m := NewModel([]string{"delete nope"})
	newModel, _ := m.Update(StepUpdateMsg{Index: 0, Status: StatusFailed, Reason: "contact ID not found"})

	if view := newModel.(Model).View(); !strings.Contains(view, "contact ID not found") {
		t.Errorf("View() should show failure reason, got:\n%s", view)
	}
}

func TestModel_View_FoundContact(t *testing.T) {
	// Given a get step that is running
	m := NewModel([]string{"get 12345"})
	running, _ := m.Update(StepUpdateMsg{Index: 0, Status: StatusRunning})
	if strings.Contains(running.(Model).View(), "John") {
		t.Fatal("View() shows a contact before the step finished")
	}

	// When it passes with the stored record
	found := `12345 John Doe 1234567890 "123 Main Street"`
	passed, _ := running.Update(StepUpdateMsg{Index: 0, Status: StatusPassed, Contact: found})

	// Then the record is rendered under the step
	pm := passed.(Model)
	if pm.steps[0].Contact != found {
		t.Errorf("steps[0].Contact = %q, want %q", pm.steps[0].Contact, found)
	}
	if view := pm.View(); !strings.Contains(view, found) {
		t.Errorf("View() should show found contact, got:\n%s", view)
	}
}

func TestModel_View_Footer(t *testing.T) {
	m := NewModel([]string{"add 1"})

	if strings.Contains(m.View(), "passed,") {
		t.Error("summary footer should not show while running")
	}

	done, _ := m.Update(RunDoneMsg{Passed: 4, Failed: 1, Skipped: 2, Size: 3})
	view := done.(Model).View()
	if !strings.Contains(view, "4 passed, 1 failed, 2 skipped; 3 contacts stored") {
		t.Errorf("View() missing summary, got:\n%s", view)
	}

	failed, _ := m.Update(RunErrorMsg{Err: errors.New("context canceled")})
	if view := failed.(Model).View(); !strings.Contains(view, "Error: context canceled") {
		t.Errorf("View() missing error, got:\n%s", view)
	}
}

// TestModel_Teatest_FullRun verifies the model processes messages in sequence via teatest.
func TestModel_Teatest_FullRun(t *testing.T) {
	steps := []string{"add 12345", "update_phone 12345", "get 12345"}
	m := NewModel(steps)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	for i, step := range steps {
		tm.Send(StepUpdateMsg{Index: i, Step: step, Status: StatusRunning})
		tm.Send(StepUpdateMsg{Index: i, Step: step, Status: StatusPassed})
	}
	tm.Send(RunDoneMsg{Passed: 3, Size: 1})

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	for i, name := range steps {
		if final.steps[i].Status != StatusPassed {
			t.Errorf("step %q status = %q, want %q", name, final.steps[i].Status, StatusPassed)
		}
	}
	if final.done == nil {
		t.Error("final model should be done")
	}
}
