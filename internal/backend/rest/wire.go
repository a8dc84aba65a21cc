package rest

import (
	"strconv"

	"tick/internal/service"
)

// Wire shapes of the task server. Dates are ISO local date-times without
// a zone and are kept as strings.

type tagDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type taskDTO struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	Priority      string   `json:"priority"`
	Status        string   `json:"status"`
	DueDate       string   `json:"dueDate,omitempty"`
	StartDate     string   `json:"startDate,omitempty"`
	CompletedAt   string   `json:"completedAt,omitempty"`
	AllDay        bool     `json:"allDay"`
	SortOrder     int      `json:"sortOrder"`
	TaskListID    *int64   `json:"taskListId,omitempty"`
	TaskListName  string   `json:"taskListName,omitempty"`
	Tags          []tagDTO `json:"tags,omitempty"`
	PomodoroCount int      `json:"pomodoroCount"`
	TimeSpent     int      `json:"timeSpent"`
}

type taskRequestDTO struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	AllDay      bool   `json:"allDay"`
	TaskListID  *int64 `json:"taskListId,omitempty"`
	SortOrder   int    `json:"sortOrder"`
}

type listDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	FolderName string `json:"folderName,omitempty"`
	TaskCount  int    `json:"taskCount"`
}

type listRequestDTO struct {
	Name string `json:"name"`
}

type habitDTO struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Color          string   `json:"color"`
	Icon           string   `json:"icon"`
	CompletedDates []string `json:"completedDates"`
	SortOrder      int      `json:"sortOrder"`
}

type habitRequestDTO struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type userDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponseDTO struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	TokenType    string  `json:"tokenType"`
	User         userDTO `json:"user"`
}

// errorDTO is the server's default error body.
type errorDTO struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Defaults the web client sends for new habits.
const (
	defaultHabitColor = "bg-blue-500"
	defaultHabitIcon  = "check"
)

func (d taskDTO) toTask() service.Task {
	t := service.Task{
		ID:            strconv.FormatInt(d.ID, 10),
		Title:         d.Title,
		Description:   d.Description,
		Notes:         d.Notes,
		Priority:      service.ParsePriority(d.Priority),
		Status:        service.ParseStatus(d.Status),
		DueDate:       d.DueDate,
		StartDate:     d.StartDate,
		CompletedAt:   d.CompletedAt,
		AllDay:        d.AllDay,
		SortOrder:     d.SortOrder,
		TaskListID:    d.TaskListID,
		TaskListName:  d.TaskListName,
		PomodoroCount: d.PomodoroCount,
		TimeSpent:     d.TimeSpent,
	}
	for _, tag := range d.Tags {
		t.Tags = append(t.Tags, tag.Name)
	}
	return t
}

func toTasks(ds []taskDTO) []service.Task {
	out := make([]service.Task, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.toTask())
	}
	return out
}

func fromRequest(r service.TaskRequest) taskRequestDTO {
	return taskRequestDTO{
		Title:       r.Title,
		Description: r.Description,
		Notes:       r.Notes,
		Priority:    r.Priority.String(),
		Status:      r.Status.String(),
		DueDate:     r.DueDate,
		StartDate:   r.StartDate,
		AllDay:      r.AllDay,
		TaskListID:  r.TaskListID,
		SortOrder:   r.SortOrder,
	}
}

func (d listDTO) toList() service.TaskList {
	return service.TaskList{
		ID:         d.ID,
		Name:       d.Name,
		Color:      d.Color,
		FolderName: d.FolderName,
		TaskCount:  d.TaskCount,
	}
}

func (d habitDTO) toHabit() service.Habit {
	return service.Habit{
		ID:             d.ID,
		Name:           d.Name,
		Color:          d.Color,
		Icon:           d.Icon,
		CompletedDates: d.CompletedDates,
		SortOrder:      d.SortOrder,
	}
}

func (d userDTO) toUser() service.User {
	return service.User{ID: d.ID, Email: d.Email, Name: d.Name, Timezone: d.Timezone}
}
