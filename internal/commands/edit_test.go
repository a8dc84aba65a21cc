package commands_test

import (
	"testing"

	"tick/internal/commands"
	"tick/internal/exitcode"
	"tick/internal/service"
	"tick/internal/view"
)

func TestEditCommand_Fields(t *testing.T) {
	svc := sampleService()

	stdout, stderr, code := runWith(t, newConfig(t), &commands.EditCmd{}, svc,
		[]string{"--title", "Buy oat milk", "--desc", "2 litres", "--priority", "high", "--due", "2025-03-20", "1"})
	expect(t, stdout, stderr, code, "ok\n", "", exitcode.Success)

	got, _ := svc.Task("2")
	if got.Title != "Buy oat milk" || got.Description != "2 litres" {
		t.Errorf("title=%q description=%q", got.Title, got.Description)
	}
	if got.Priority != service.PriorityHigh {
		t.Errorf("priority = %v, want high", got.Priority)
	}
	if got.DueDate != "2025-03-20T00:00:00" || !got.AllDay {
		t.Errorf("due=%q allDay=%v, want 2025-03-20T00:00:00/true", got.DueDate, got.AllDay)
	}
	if got.Status != service.StatusTodo {
		t.Errorf("status changed to %v", got.Status)
	}
}

func TestEditCommand_KeepsUnchangedFields(t *testing.T) {
	svc := sampleService()

	_, stderr, code := runWith(t, newConfig(t), &commands.EditCmd{}, svc, []string{"--desc", "", "#3"})
	if code != exitcode.Success {
		t.Fatalf("code %d stderr %q", code, stderr)
	}

	got, _ := svc.Task("3")
	if got.Title != "Call mom" || got.Priority != service.PriorityLow || got.DueDate != "2025-03-06" {
		t.Errorf("unrelated fields changed: %+v", got)
	}
}

func TestEditCommand_PriorityMovesQuadrant(t *testing.T) {
	svc := sampleService()

	_, stderr, code := runWith(t, newConfig(t), &commands.EditCmd{}, svc, []string{"--view", "matrix", "--priority", "high", "4"})
	if code != exitcode.Success {
		t.Fatalf("code %d stderr %q", code, stderr)
	}

	// matrix order: Pay rent (q1), Buy milk (q2), Call mom (q3), Dentist (q4)
	got, _ := svc.Task("4")
	if q := view.QuadrantFor(got.Priority); q != view.QuadrantFor(service.PriorityHigh) {
		t.Errorf("Dentist is in quadrant %s, want %s", q.Title(), view.QuadrantFor(service.PriorityHigh).Title())
	}
}

func TestEditCommand_DueTimeAndNoDue(t *testing.T) {
	svc := sampleService()

	_, _, code := runWith(t, newConfig(t), &commands.EditCmd{}, svc, []string{"--due", "2025-03-07T14:30", "#1"})
	if code != exitcode.Success {
		t.Fatalf("code %d", code)
	}
	if got, _ := svc.Task("1"); got.DueDate != "2025-03-07T14:30:00" || got.AllDay {
		t.Errorf("due=%q allDay=%v", got.DueDate, got.AllDay)
	}

	_, _, code = runWith(t, newConfig(t), &commands.EditCmd{}, svc, []string{"--no-due", "#1"})
	if code != exitcode.Success {
		t.Fatalf("code %d", code)
	}
	if got, _ := svc.Task("1"); got.DueDate != "" || got.AllDay {
		t.Errorf("due=%q allDay=%v, want cleared", got.DueDate, got.AllDay)
	}
}

func TestEditCommand_List(t *testing.T) {
	svc := sampleService()
	svc.AddList(7, "Work")

	_, stderr, code := runWith(t, newConfig(t), &commands.EditCmd{}, svc, []string{"--list", "work", "#4"})
	if code != exitcode.Success {
		t.Fatalf("code %d stderr %q", code, stderr)
	}
	if got, _ := svc.Task("4"); got.TaskListID == nil || *got.TaskListID != 7 {
		t.Errorf("task list = %v, want 7", got.TaskListID)
	}
}

func TestEditCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no ref", []string{"--title", "x"}, "error: task reference required\n"},
		{"two refs", []string{"--title", "x", "1", "2"}, "error: edit takes a single task reference\n"},
		{"bad ref", []string{"--title", "x", "abc"}, "error: invalid task reference: abc\n"},
		{"nothing to change", []string{"1"}, "error: nothing to change (use --title, --desc, --priority, --due, --no-due or --list)\n"},
		{"due and no-due", []string{"--due", "today", "--no-due", "1"}, "error: --due and --no-due cannot be combined\n"},
		{"empty title", []string{"--title", " ", "1"}, "error: title cannot be empty\n"},
		{"bad priority", []string{"--priority", "urgent", "1"}, "error: invalid priority: urgent (use none, low, medium or high)\n"},
		{"bad due", []string{"--due", "soon", "1"}, "error: invalid due date: soon (use today, tomorrow, YYYY-MM-DD or YYYY-MM-DDTHH:MM)\n"},
		{"out of range", []string{"--title", "x", "9"}, "error: task number out of range: 9\n"},
		{"unknown id", []string{"--title", "x", "#999"}, "error: task not found: #999\n"},
		{"unknown list", []string{"--list", "Nope", "1"}, "error: list not found: Nope\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := sampleService()
			stdout, stderr, code := runWith(t, newConfig(t), &commands.EditCmd{}, svc, tt.args)
			expect(t, stdout, stderr, code, "", tt.want, exitcode.UserError)

			if got, _ := svc.Task("2"); got.Title != "Buy milk" {
				t.Errorf("task changed on error: %+v", got)
			}
		})
	}
}

func TestEditCommand_Offline(t *testing.T) {
	svc := sampleService()
	cfg := newConfig(t)
	cfg.Offline = true

	stdout, stderr, code := runWith(t, cfg, &commands.EditCmd{}, svc, []string{"--title", "x", "#2"})
	expect(t, stdout, stderr, code, "", "error: cannot change data with --offline\n", exitcode.UserError)
	if got, _ := svc.Task("2"); got.Title != "Buy milk" {
		t.Error("offline edit should not reach the backend")
	}
}

func TestEditCommand_BackendError(t *testing.T) {
	svc := sampleService()
	svc.UpdateTaskErr = service.ErrTimeout

	stdout, stderr, code := runWith(t, newConfig(t), &commands.EditCmd{}, svc, []string{"--title", "x", "#2"})
	expect(t, stdout, stderr, code, "", "error: backend error: "+service.ErrTimeout.Error()+"\n", exitcode.BackendError)
}

func TestEditCommand_Alias(t *testing.T) {
	cmd, ok := commands.DefaultRegistry.Find("update")
	if !ok || cmd.Name() != "edit" {
		t.Fatalf("update alias = %v, %v", cmd, ok)
	}
}
