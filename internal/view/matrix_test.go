package view

import (
	"reflect"
	"testing"

	"tick/internal/service"
)

func TestBucket(t *testing.T) {
	tasks := []service.Task{
		{ID: "h1", Priority: service.PriorityHigh},
		{ID: "n1", Priority: service.PriorityNone},
		{ID: "m1", Priority: service.PriorityMedium},
		{ID: "done", Priority: service.PriorityHigh, Status: service.StatusCompleted},
		{ID: "l1", Priority: service.PriorityLow, Status: service.StatusInProgress},
		{ID: "h2", Priority: service.PriorityHigh},
		{ID: "odd", Priority: service.Priority(42)},
	}

	m := Bucket(tasks)

	tests := []struct {
		q    Quadrant
		want []string
	}{
		{DoFirst, []string{"h1", "h2"}},
		{Schedule, []string{"m1"}},
		{Delegate, []string{"l1"}},
		{Eliminate, []string{"n1", "odd"}},
	}
	for _, tt := range tests {
		if got := ids(m.Get(tt.q)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.q.Title(), got, tt.want)
		}
	}
	if m.Len() != 6 {
		t.Errorf("Len = %d, want 6 (completed task excluded)", m.Len())
	}
}

func TestBucket_CountMatchesOpenTasks(t *testing.T) {
	var tasks []service.Task
	for i := 0; i < 40; i++ {
		tasks = append(tasks, service.Task{
			ID:       string(rune('A' + i)),
			Priority: service.Priority(i % 5),
			Status:   service.Status(i % 3),
		})
	}
	open := 0
	for _, task := range tasks {
		if task.Status != service.StatusCompleted {
			open++
		}
	}

	m := Bucket(tasks)

	if got := len(m.DoFirst) + len(m.Schedule) + len(m.Delegate) + len(m.Eliminate); got != open {
		t.Errorf("quadrants hold %d tasks, want %d", got, open)
	}
}

func TestBucket_AllCompleted(t *testing.T) {
	m := Bucket([]service.Task{
		{ID: "1", Status: service.StatusCompleted},
		{ID: "2", Status: service.StatusCompleted, Priority: service.PriorityHigh},
	})
	if m.Len() != 0 {
		t.Errorf("expected empty matrix, got %d tasks", m.Len())
	}
}

func TestBucket_Idempotent(t *testing.T) {
	tasks := []service.Task{
		{ID: "1", Priority: service.PriorityLow},
		{ID: "2", Priority: service.PriorityHigh},
		{ID: "3"},
	}
	if a, b := Bucket(tasks), Bucket(tasks); !reflect.DeepEqual(a, b) {
		t.Errorf("Bucket is not idempotent: %v vs %v", a, b)
	}
}

func TestQuadrantPriorityRoundTrip(t *testing.T) {
	for _, q := range Quadrants {
		if got := QuadrantFor(q.Priority()); got != q {
			t.Errorf("QuadrantFor(%s.Priority()) = %s", q.Title(), got.Title())
		}
	}
}

func TestParseQuadrant(t *testing.T) {
	tests := []struct {
		in   string
		want Quadrant
		ok   bool
	}{
		{"q1", DoFirst, true},
		{"schedule", Schedule, true},
		{"q3", Delegate, true},
		{"eliminate", Eliminate, true},
		{"q5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseQuadrant(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseQuadrant(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
