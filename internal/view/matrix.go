package view

import "tick/internal/service"

// Quadrant is one of the four Eisenhower matrix buckets.
type Quadrant int

const (
	DoFirst Quadrant = iota
	Schedule
	Delegate
	Eliminate
)

// Quadrants lists every quadrant in display order.
var Quadrants = []Quadrant{DoFirst, Schedule, Delegate, Eliminate}

// Title is the quadrant heading.
func (q Quadrant) Title() string {
	switch q {
	case DoFirst:
		return "Do First"
	case Schedule:
		return "Schedule"
	case Delegate:
		return "Delegate"
	default:
		return "Eliminate"
	}
}

// Subtitle describes the urgency/importance combination.
func (q Quadrant) Subtitle() string {
	switch q {
	case DoFirst:
		return "Urgent & Important"
	case Schedule:
		return "Not Urgent & Important"
	case Delegate:
		return "Urgent & Not Important"
	default:
		return "Not Urgent & Not Important"
	}
}

// Priority is the priority a task added to the quadrant receives.
func (q Quadrant) Priority() service.Priority {
	switch q {
	case DoFirst:
		return service.PriorityHigh
	case Schedule:
		return service.PriorityMedium
	case Delegate:
		return service.PriorityLow
	default:
		return service.PriorityNone
	}
}

// QuadrantFor maps a priority to its quadrant. Unrecognised values fall in Eliminate.
func QuadrantFor(p service.Priority) Quadrant {
	switch p {
	case service.PriorityHigh:
		return DoFirst
	case service.PriorityMedium:
		return Schedule
	case service.PriorityLow:
		return Delegate
	default:
		return Eliminate
	}
}

// ParseQuadrant accepts q1..q4 or a quadrant title without spaces.
func ParseQuadrant(s string) (Quadrant, bool) {
	switch s {
	case "q1", "dofirst", "do-first":
		return DoFirst, true
	case "q2", "schedule":
		return Schedule, true
	case "q3", "delegate":
		return Delegate, true
	case "q4", "eliminate":
		return Eliminate, true
	}
	return 0, false
}

// MatrixQuadrants holds the partition of open tasks by priority.
type MatrixQuadrants struct {
	DoFirst   []service.Task
	Schedule  []service.Task
	Delegate  []service.Task
	Eliminate []service.Task
}

// Get returns the tasks of quadrant q.
func (m MatrixQuadrants) Get(q Quadrant) []service.Task {
	switch q {
	case DoFirst:
		return m.DoFirst
	case Schedule:
		return m.Schedule
	case Delegate:
		return m.Delegate
	default:
		return m.Eliminate
	}
}

// Len returns the number of tasks across quadrants.
func (m MatrixQuadrants) Len() int {
	return len(m.DoFirst) + len(m.Schedule) + len(m.Delegate) + len(m.Eliminate)
}

// Flatten returns the tasks in display order (DoFirst first).
func (m MatrixQuadrants) Flatten() []service.Task {
	out := make([]service.Task, 0, m.Len())
	for _, q := range Quadrants {
		out = append(out, m.Get(q)...)
	}
	return out
}

// Bucket partitions tasks into quadrants, skipping completed ones. Input
// order is preserved within each quadrant.
func Bucket(tasks []service.Task) MatrixQuadrants {
	var m MatrixQuadrants
	for _, t := range tasks {
		if t.Completed() {
			continue
		}
		switch QuadrantFor(t.Priority) {
		case DoFirst:
			m.DoFirst = append(m.DoFirst, t)
		case Schedule:
			m.Schedule = append(m.Schedule, t)
		case Delegate:
			m.Delegate = append(m.Delegate, t)
		default:
			m.Eliminate = append(m.Eliminate, t)
		}
	}
	return m
}
