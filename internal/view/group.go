package view

import (
	"sort"
	"time"

	"tick/internal/service"
)

// BucketKind is the semantic kind of a task group. Display labels are
// derived from it at render time.
type BucketKind int

// Kinds are declared in rendering precedence.
const (
	BucketOverdue BucketKind = iota
	BucketToday
	BucketTomorrow
	BucketDate
	BucketNoDate
	// BucketAll is the single group of views that are not grouped by date.
	BucketAll
)

// DateLabelLayout formats the label of a named-date group, e.g. "Wed, Mar 5".
const DateLabelLayout = "Mon, Jan 2"

// Group is one labelled run of tasks in a GroupedView.
type Group struct {
	Kind  BucketKind
	Date  time.Time // local midnight of the day; set for BucketDate
	Tasks []service.Task
}

// Label returns the display label of the group.
func (g Group) Label() string {
	switch g.Kind {
	case BucketOverdue:
		return "Overdue"
	case BucketToday:
		return "Today"
	case BucketTomorrow:
		return "Tomorrow"
	case BucketDate:
		return g.Date.Format(DateLabelLayout)
	case BucketNoDate:
		return "No Date"
	default:
		return "Tasks"
	}
}

// GroupedView is an ordered list of groups. It is rebuilt on every input change.
type GroupedView []Group

// Len returns the number of tasks across all groups.
func (gv GroupedView) Len() int {
	n := 0
	for _, g := range gv {
		n += len(g.Tasks)
	}
	return n
}

// Flatten returns the tasks in rendering order.
func (gv GroupedView) Flatten() []service.Task {
	out := make([]service.Task, 0, gv.Len())
	for _, g := range gv {
		out = append(out, g.Tasks...)
	}
	return out
}

// groupedByDate reports whether sel renders date groups.
func groupedByDate(sel Selection) bool {
	switch s := sel.(type) {
	case SmartList:
		return s.Kind == Next7Days || s.Kind == All
	case CustomList:
		return true
	}
	return false
}

// Classify returns the bucket of a task relative to now, and for
// BucketDate the local midnight of its due day.
func Classify(t service.Task, now time.Time) (BucketKind, time.Time) {
	due, ok := t.DueIn(now.Location())
	if !ok {
		return BucketNoDate, time.Time{}
	}
	today := StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	dayAfter := today.AddDate(0, 0, 2)

	switch {
	case !due.Before(today) && due.Before(tomorrow):
		return BucketToday, time.Time{}
	case !due.Before(tomorrow) && due.Before(dayAfter):
		return BucketTomorrow, time.Time{}
	case due.Before(today):
		return BucketOverdue, time.Time{}
	default:
		return BucketDate, StartOfDay(due)
	}
}

// GroupTasks buckets tasks for a list view. Views other than Next 7 Days, All
// and custom lists get one "Tasks" group in input order. Empty input yields
// an empty view. Task order inside a group follows the input.
func GroupTasks(tasks []service.Task, sel Selection, now time.Time) GroupedView {
	if len(tasks) == 0 {
		return GroupedView{}
	}
	if !groupedByDate(sel) {
		all := make([]service.Task, len(tasks))
		copy(all, tasks)
		return GroupedView{{Kind: BucketAll, Tasks: all}}
	}

	type groupKey struct {
		kind BucketKind
		day  int64
	}
	index := make(map[groupKey]int)
	var groups GroupedView

	for _, t := range tasks {
		kind, day := Classify(t, now)
		key := groupKey{kind: kind}
		if kind == BucketDate {
			key.day = day.Unix()
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Kind: kind, Date: day})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Kind == BucketDate {
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
			return a.Label() < b.Label()
		}
		return false
	})
	return groups
}
