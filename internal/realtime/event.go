package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"

	"tick/internal/service"
)

// Actions carried by task events.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is a task change pushed by the server.
type Event struct {
	Action string
	Task   service.Task
}

type eventDTO struct {
	Action string `json:"action"`
	Task   struct {
		ID           int64  `json:"id"`
		Title        string `json:"title"`
		Priority     string `json:"priority"`
		Status       string `json:"status"`
		DueDate      string `json:"dueDate"`
		TaskListID   *int64 `json:"taskListId"`
		TaskListName string `json:"taskListName"`
	} `json:"task"`
}

// DecodeEvent parses a message body.
func DecodeEvent(body []byte) (Event, error) {
	var d eventDTO
	if err := json.Unmarshal(body, &d); err != nil {
		return Event{}, fmt.Errorf("decoding event: %w", err)
	}
	if d.Action == "" {
		return Event{}, fmt.Errorf("decoding event: missing action")
	}
	return Event{
		Action: d.Action,
		Task: service.Task{
			ID:           strconv.FormatInt(d.Task.ID, 10),
			Title:        d.Task.Title,
			Priority:     service.ParsePriority(d.Task.Priority),
			Status:       service.ParseStatus(d.Task.Status),
			DueDate:      d.Task.DueDate,
			TaskListID:   d.Task.TaskListID,
			TaskListName: d.Task.TaskListName,
		},
	}, nil
}
