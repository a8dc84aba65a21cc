// Package service defines the backend-agnostic model and interface for task operations.
package service

import (
	"strings"
	"time"
)

// Priority orders tasks for the matrix view. NONE < LOW < MEDIUM < HIGH.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// String returns the wire name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	default:
		return "NONE"
	}
}

// ParsePriority maps a wire or user-supplied name to a Priority.
// Matching is case-insensitive; unknown values map to PriorityNone.
func ParsePriority(s string) Priority {
	p, _ := ParsePriorityStrict(s)
	return p
}

// ParsePriorityStrict is ParsePriority that reports whether s named a
// priority at all. Unknown values return PriorityNone and false.
func ParsePriorityStrict(s string) (Priority, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE":
		return PriorityNone, true
	case "LOW":
		return PriorityLow, true
	case "MEDIUM", "MED":
		return PriorityMedium, true
	case "HIGH":
		return PriorityHigh, true
	default:
		return PriorityNone, false
	}
}

// Status is the lifecycle state of a task.
type Status int

const (
	StatusTodo Status = iota
	StatusInProgress
	StatusCompleted
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return "TODO"
	}
}

// ParseStatus maps a wire name to a Status. Unknown values map to StatusTodo.
func ParseStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN_PROGRESS":
		return StatusInProgress
	case "COMPLETED":
		return StatusCompleted
	default:
		return StatusTodo
	}
}

// dueLayouts are tried in order when parsing a due date. Layouts without a
// zone are interpreted in the caller's location.
var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Task represents a single task item.
type Task struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	Priority      Priority `json:"priority"`
	Status        Status   `json:"status"`
	DueDate       string   `json:"due_date,omitempty"` // raw wire value, may be malformed
	StartDate     string   `json:"start_date,omitempty"`
	CompletedAt   string   `json:"completed_at,omitempty"`
	AllDay        bool     `json:"all_day,omitempty"`
	SortOrder     int      `json:"sort_order,omitempty"`
	TaskListID    *int64   `json:"task_list_id,omitempty"`
	TaskListName  string   `json:"task_list_name,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PomodoroCount int      `json:"pomodoro_count,omitempty"`
	TimeSpent     int      `json:"time_spent,omitempty"`
}

// DueIn parses the task's due date. Zone-less values are read in loc.
// Returns false when the task has no due date or it cannot be parsed.
func (t Task) DueIn(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(t.DueDate)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dueLayouts {
		if d, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return d.In(loc), true
		}
	}
	return time.Time{}, false
}

// Completed reports whether the task is done.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// TaskList represents a task list.
type TaskList struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	FolderName string `json:"folder_name,omitempty"`
	TaskCount  int    `json:"task_count"`
}

// Habit is a daily habit with the dates it was completed on (YYYY-MM-DD).
type Habit struct {
	ID             int64
	Name           string
	Color          string
	Icon           string
	CompletedDates []string
	SortOrder      int
}

// User is the signed-in account.
type User struct {
	ID       int64
	Email    string
	Name     string
	Timezone string
}

// TaskRequest carries the writable fields of a task for create and update.
type TaskRequest struct {
	Title       string
	Description string
	Notes       string
	Priority    Priority
	Status      Status
	DueDate     string
	StartDate   string
	AllDay      bool
	TaskListID  *int64
	SortOrder   int
}

// RequestFrom copies the writable fields of t so an update does not clear them.
func RequestFrom(t Task) TaskRequest {
	return TaskRequest{
		Title:       t.Title,
		Description: t.Description,
		Notes:       t.Notes,
		Priority:    t.Priority,
		Status:      t.Status,
		DueDate:     t.DueDate,
		StartDate:   t.StartDate,
		AllDay:      t.AllDay,
		TaskListID:  t.TaskListID,
		SortOrder:   t.SortOrder,
	}
}

// DateLayout is the wire format of habit completion dates.
const DateLayout = "2006-01-02"

// RequestTimeLayout is the format due dates are sent in. The server stores
// local date-times without a zone.
const RequestTimeLayout = "2006-01-02T15:04:05"
