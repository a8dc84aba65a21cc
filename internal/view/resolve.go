package view

import (
	"context"
	"strconv"
	"time"

	"tick/internal/service"
)

// Source names the backend read operation a view needs.
type Source int

const (
	// SourceNone means the view does not read tasks (habits, focus).
	SourceNone Source = iota
	SourceToday
	SourceOverdue
	SourceAll
	SourceList
)

// PostFilter is a client-side filter applied after fetching.
type PostFilter int

const (
	FilterNone PostFilter = iota
	// FilterNext7Days keeps tasks due from the start of today through the end
	// of the seventh following calendar day.
	FilterNext7Days
)

// FetchDescriptor tells the data layer what to read for a selection.
type FetchDescriptor struct {
	Source Source
	ListID int64 // set when Source is SourceList
	Filter PostFilter
}

// Resolve maps a selection to the read it requires.
func Resolve(sel Selection) FetchDescriptor {
	switch s := sel.(type) {
	case SmartList:
		switch s.Kind {
		case Today:
			return FetchDescriptor{Source: SourceToday}
		case Overdue:
			return FetchDescriptor{Source: SourceOverdue}
		case Next7Days:
			return FetchDescriptor{Source: SourceAll, Filter: FilterNext7Days}
		default:
			return FetchDescriptor{Source: SourceAll}
		}
	case CustomList:
		return FetchDescriptor{Source: SourceList, ListID: s.ID}
	case Module:
		switch s.Kind {
		case Calendar, Matrix:
			return FetchDescriptor{Source: SourceAll}
		}
	}
	return FetchDescriptor{Source: SourceNone}
}

// Key identifies the raw collection a descriptor reads. Descriptors that
// differ only by post-filter share a key.
func (d FetchDescriptor) Key() string {
	switch d.Source {
	case SourceToday:
		return "tasks-today"
	case SourceOverdue:
		return "tasks-overdue"
	case SourceAll:
		return "tasks-all"
	case SourceList:
		return "tasks-list-" + strconv.FormatInt(d.ListID, 10)
	}
	return ""
}

// Reader is the part of service.Service a descriptor reads from.
type Reader interface {
	AllTasks(ctx context.Context) ([]service.Task, error)
	TodayTasks(ctx context.Context) ([]service.Task, error)
	OverdueTasks(ctx context.Context) ([]service.Task, error)
	TasksByList(ctx context.Context, listID int64) ([]service.Task, error)
}

// Fetch performs the read named by d. The post-filter is not applied.
func (d FetchDescriptor) Fetch(ctx context.Context, r Reader) ([]service.Task, error) {
	switch d.Source {
	case SourceToday:
		return r.TodayTasks(ctx)
	case SourceOverdue:
		return r.OverdueTasks(ctx)
	case SourceAll:
		return r.AllTasks(ctx)
	case SourceList:
		return r.TasksByList(ctx, d.ListID)
	}
	return nil, nil
}

// Apply runs the post-filter over tasks relative to now. The input slice is
// not modified.
func (d FetchDescriptor) Apply(tasks []service.Task, now time.Time) []service.Task {
	if d.Filter != FilterNext7Days {
		return tasks
	}
	loc := now.Location()
	start := StartOfDay(now)
	end := start.AddDate(0, 0, 8)

	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		due, ok := t.DueIn(loc)
		if !ok {
			continue
		}
		if !due.Before(start) && due.Before(end) {
			out = append(out, t)
		}
	}
	return out
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
