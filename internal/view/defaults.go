package view

import (
	"time"

	"tick/internal/service"
)

// NewTask returns the request for a quick-added task in sel. Tasks added to
// a custom list go to that list, tasks added in Today are due now.
func NewTask(title string, sel Selection, now time.Time) service.TaskRequest {
	req := service.TaskRequest{
		Title:    title,
		Priority: service.PriorityNone,
		Status:   service.StatusTodo,
	}
	switch s := sel.(type) {
	case CustomList:
		id := s.ID
		req.TaskListID = &id
	case SmartList:
		if s.Kind == Today {
			req.DueDate = now.Format(service.RequestTimeLayout)
		}
	}
	return req
}

// NewMatrixTask returns the request for a task added to quadrant q: the
// quadrant's priority, due now.
func NewMatrixTask(title string, q Quadrant, now time.Time) service.TaskRequest {
	return service.TaskRequest{
		Title:    title,
		Priority: q.Priority(),
		Status:   service.StatusTodo,
		DueDate:  now.Format(service.RequestTimeLayout),
	}
}
