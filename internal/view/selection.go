// Package view derives the presentation models of the task views from raw
// task collections: date-grouped lists, the priority matrix, the month
// calendar and the habit week. Everything here is pure and safe to call
// concurrently; inputs are never mutated.
package view

import (
	"fmt"
	"strconv"
	"strings"
)

// SmartKind enumerates the predefined task views.
type SmartKind int

const (
	Today SmartKind = iota
	Next7Days
	Overdue
	All
)

// ModuleKind enumerates the non-list modules.
type ModuleKind int

const (
	Calendar ModuleKind = iota
	Matrix
	Habits
	Focus
)

// Selection is the navigational choice of the user. It is one of
// SmartList, CustomList or Module.
type Selection interface {
	isSelection()
	String() string
}

// SmartList selects a predefined view such as Today.
type SmartList struct{ Kind SmartKind }

// CustomList selects a user-created task list by id.
type CustomList struct{ ID int64 }

// Module selects one of the non-list modules.
type Module struct{ Kind ModuleKind }

func (SmartList) isSelection()  {}
func (CustomList) isSelection() {}
func (Module) isSelection()     {}

func (s SmartList) String() string {
	switch s.Kind {
	case Today:
		return "today"
	case Next7Days:
		return "next7"
	case Overdue:
		return "overdue"
	default:
		return "all"
	}
}

func (c CustomList) String() string { return strconv.FormatInt(c.ID, 10) }

func (m Module) String() string {
	switch m.Kind {
	case Calendar:
		return "calendar"
	case Matrix:
		return "matrix"
	case Habits:
		return "habits"
	default:
		return "focus"
	}
}

// ParseSelection parses the --view flag value: a smart list or module name,
// or a numeric list id.
func ParseSelection(s string) (Selection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return SmartList{Today}, nil
	case "next7", "next7days", "week":
		return SmartList{Next7Days}, nil
	case "overdue":
		return SmartList{Overdue}, nil
	case "all", "inbox":
		return SmartList{All}, nil
	case "calendar":
		return Module{Calendar}, nil
	case "matrix":
		return Module{Matrix}, nil
	case "habits":
		return Module{Habits}, nil
	case "focus":
		return Module{Focus}, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return nil, fmt.Errorf("unknown view: %s", s)
	}
	return CustomList{ID: id}, nil
}

// Title is the heading shown above a view.
func Title(sel Selection) string {
	switch s := sel.(type) {
	case SmartList:
		switch s.Kind {
		case Today:
			return "Today"
		case Next7Days:
			return "Next 7 Days"
		case Overdue:
			return "Overdue"
		default:
			return "Inbox"
		}
	case CustomList:
		return "List"
	case Module:
		switch s.Kind {
		case Calendar:
			return "Calendar"
		case Matrix:
			return "Eisenhower Matrix"
		case Habits:
			return "Habits"
		default:
			return "Focus"
		}
	}
	return "Tasks"
}
