// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"tick/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Today and Overdue are decided against Now in Location, the way the server
// does it.
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.TaskList
	tasks  []service.Task
	habits []service.Habit
	nextID int64

	User     service.User
	Now      func() time.Time
	Location *time.Location

	// Error injection for testing
	CurrentUserErr error
	ReadErr        error // every task read
	GetTaskErr     error
	CreateTaskErr  error
	UpdateTaskErr  error
	DeleteTaskErr  error
	ListListsErr   error
	CreateListErr  error
	DeleteListErr  error
	HabitsErr      error
	ToggleHabitErr error

	// Calls counts backend reads, for cache tests.
	Calls int
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:   100,
		User:     service.User{ID: 1, Email: "ada@example.com", Name: "Ada"},
		Now:      time.Now,
		Location: time.Local,
	}
}

// AddList adds a list with the given id.
func (f *FakeService) AddList(id int64, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Name: name})
}

// AddTask adds a task as given.
func (f *FakeService) AddTask(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// AddHabit adds a habit as given.
func (f *FakeService) AddHabit(h service.Habit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.habits = append(f.habits, h)
}

// Task returns the stored task with id.
func (f *FakeService) Task(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Tasks returns a copy of every stored task.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.tasks)
}

// Habit returns the stored habit with id.
func (f *FakeService) Habit(id int64) (service.Habit, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, h := range f.habits {
		if h.ID == id {
			return h, true
		}
	}
	return service.Habit{}, false
}

func (f *FakeService) read(keep func(service.Task) bool) ([]service.Task, error) {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.Task
	for _, t := range f.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *FakeService) today() (time.Time, time.Time) {
	now := f.Now().In(f.Location)
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, f.Location)
	return start, start.AddDate(0, 0, 1)
}

// CurrentUser implements service.Service.
func (f *FakeService) CurrentUser(ctx context.Context) (service.User, error) {
	if f.CurrentUserErr != nil {
		return service.User{}, f.CurrentUserErr
	}
	return f.User, nil
}

// AllTasks implements service.Service.
func (f *FakeService) AllTasks(ctx context.Context) ([]service.Task, error) {
	return f.read(func(service.Task) bool { return true })
}

// TodayTasks implements service.Service.
func (f *FakeService) TodayTasks(ctx context.Context) ([]service.Task, error) {
	start, end := f.today()
	return f.read(func(t service.Task) bool {
		due, ok := t.DueIn(f.Location)
		return ok && !due.Before(start) && due.Before(end)
	})
}

// OverdueTasks implements service.Service.
func (f *FakeService) OverdueTasks(ctx context.Context) ([]service.Task, error) {
	start, _ := f.today()
	return f.read(func(t service.Task) bool {
		due, ok := t.DueIn(f.Location)
		return ok && due.Before(start) && !t.Completed()
	})
}

// TasksByList implements service.Service.
func (f *FakeService) TasksByList(ctx context.Context, listID int64) ([]service.Task, error) {
	if !f.hasList(listID) {
		return nil, fmt.Errorf("list %d: %w", listID, service.ErrNotFound)
	}
	return f.read(func(t service.Task) bool {
		return t.TaskListID != nil && *t.TaskListID == listID
	})
}

// SearchTasks implements service.Service.
func (f *FakeService) SearchTasks(ctx context.Context, query string) ([]service.Task, error) {
	q := strings.ToLower(query)
	return f.read(func(t service.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q)
	})
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id string) (service.Task, error) {
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	t, ok := f.Task(id)
	if !ok {
		return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	return t, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, req service.TaskRequest) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := apply(service.Task{ID: strconv.FormatInt(f.nextID, 10)}, req)
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, req service.TaskRequest) (service.Task, error) {
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = apply(t, req)
			return f.tasks[i], nil
		}
	}
	return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.TaskList, len(f.lists))
	for i, l := range f.lists {
		l.TaskCount = 0
		for _, t := range f.tasks {
			if t.TaskListID != nil && *t.TaskListID == l.ID && !t.Completed() {
				l.TaskCount++
			}
		}
		out[i] = l
	}
	return out, nil
}

// ResolveList implements service.Service.
func (f *FakeService) ResolveList(ctx context.Context, ref string) (service.TaskList, error) {
	lists, err := f.ListLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	return service.MatchList(lists, ref)
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, name string) (service.TaskList, error) {
	if f.CreateListErr != nil {
		return service.TaskList{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l := service.TaskList{ID: f.nextID, Name: name}
	f.lists = append(f.lists, l)
	return l, nil
}

// DeleteList implements service.Service. Tasks of the list are removed too.
func (f *FakeService) DeleteList(ctx context.Context, id int64) error {
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lists {
		if l.ID == id {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			f.tasks = slices.DeleteFunc(f.tasks, func(t service.Task) bool {
				return t.TaskListID != nil && *t.TaskListID == id
			})
			return nil
		}
	}
	return fmt.Errorf("list %d: %w", id, service.ErrNotFound)
}

// Habits implements service.Service.
func (f *FakeService) Habits(ctx context.Context) ([]service.Habit, error) {
	if f.HabitsErr != nil {
		return nil, f.HabitsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.habits), nil
}

// CreateHabit implements service.Service.
func (f *FakeService) CreateHabit(ctx context.Context, name string) (service.Habit, error) {
	if f.HabitsErr != nil {
		return service.Habit{}, f.HabitsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	h := service.Habit{ID: f.nextID, Name: name}
	f.habits = append(f.habits, h)
	return h, nil
}

// ToggleHabit implements service.Service.
func (f *FakeService) ToggleHabit(ctx context.Context, id int64, date string) (service.Habit, error) {
	if f.ToggleHabitErr != nil {
		return service.Habit{}, f.ToggleHabitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, h := range f.habits {
		if h.ID != id {
			continue
		}
		if j := slices.Index(h.CompletedDates, date); j >= 0 {
			h.CompletedDates = slices.Delete(slices.Clone(h.CompletedDates), j, j+1)
		} else {
			h.CompletedDates = append(slices.Clone(h.CompletedDates), date)
		}
		f.habits[i] = h
		return h, nil
	}
	return service.Habit{}, fmt.Errorf("habit %d: %w", id, service.ErrNotFound)
}

// DeleteHabit implements service.Service.
func (f *FakeService) DeleteHabit(ctx context.Context, id int64) error {
	if f.HabitsErr != nil {
		return f.HabitsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, h := range f.habits {
		if h.ID == id {
			f.habits = append(f.habits[:i], f.habits[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("habit %d: %w", id, service.ErrNotFound)
}

func (f *FakeService) hasList(id int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.ID == id {
			return true
		}
	}
	return false
}

func apply(t service.Task, r service.TaskRequest) service.Task {
	t.Title = r.Title
	t.Description = r.Description
	t.Notes = r.Notes
	t.Priority = r.Priority
	t.Status = r.Status
	t.DueDate = r.DueDate
	t.StartDate = r.StartDate
	t.AllDay = r.AllDay
	t.TaskListID = r.TaskListID
	t.SortOrder = r.SortOrder
	return t
}

var _ service.Service = (*FakeService)(nil)
