package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors returned (wrapped) by every backend.
var (
	ErrNotFound     = errors.New("not found")
	ErrAmbiguous    = errors.New("ambiguous")
	ErrUnauthorized = errors.New("not logged in")
	ErrUnsupported  = errors.New("not supported by this backend")
	ErrTimeout      = errors.New("request timed out")
)

// Service defines the interface for task backend operations.
// Commands never import a backend SDK directly.
type Service interface {
	// CurrentUser returns the signed-in account.
	CurrentUser(ctx context.Context) (User, error)

	// AllTasks returns every task of the user, including completed ones.
	AllTasks(ctx context.Context) ([]Task, error)

	// TodayTasks returns tasks due today as decided by the backend.
	TodayTasks(ctx context.Context) ([]Task, error)

	// OverdueTasks returns open tasks due before today.
	OverdueTasks(ctx context.Context) ([]Task, error)

	// TasksByList returns the tasks of one list in backend order.
	TasksByList(ctx context.Context, listID int64) ([]Task, error)

	// SearchTasks returns tasks whose title or description matches query.
	SearchTasks(ctx context.Context, query string) ([]Task, error)

	GetTask(ctx context.Context, id string) (Task, error)
	CreateTask(ctx context.Context, req TaskRequest) (Task, error)
	UpdateTask(ctx context.Context, id string, req TaskRequest) (Task, error)
	DeleteTask(ctx context.Context, id string) error

	// ListLists returns all task lists in backend order.
	ListLists(ctx context.Context) ([]TaskList, error)

	// ResolveList finds a list by numeric id or by name (case-insensitive, trimmed).
	// Returns ErrNotFound or ErrAmbiguous.
	ResolveList(ctx context.Context, ref string) (TaskList, error)

	CreateList(ctx context.Context, name string) (TaskList, error)
	DeleteList(ctx context.Context, id int64) error

	Habits(ctx context.Context) ([]Habit, error)
	CreateHabit(ctx context.Context, name string) (Habit, error)

	// ToggleHabit flips completion of the habit on date (YYYY-MM-DD).
	ToggleHabit(ctx context.Context, id int64, date string) (Habit, error)

	DeleteHabit(ctx context.Context, id int64) error
}

// TokenProvider is implemented by backends whose bearer token can be reused
// for the real-time channel.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// MatchList resolves ref against lists. A ref that is all digits matches a
// list id first; otherwise names are compared case-insensitively after trimming.
func MatchList(lists []TaskList, ref string) (TaskList, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, l := range lists {
			if l.ID == id {
				return l, nil
			}
		}
	}

	refLower := strings.ToLower(ref)
	var matches []TaskList
	for _, l := range lists {
		if strings.ToLower(strings.TrimSpace(l.Name)) == refLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return TaskList{}, fmt.Errorf("list %s: %w", ref, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return TaskList{}, fmt.Errorf("list %s: %w", ref, ErrAmbiguous)
	}
}
