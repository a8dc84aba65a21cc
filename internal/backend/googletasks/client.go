// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tick/internal/config"
	"tick/internal/logging"
	"tick/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Service using Google Tasks API.
// Task lists are numbered 1..n in API order; task ids are "<listID>/<taskID>".
type Client struct {
	svc *tasks.Service
	loc *time.Location
	now func() time.Time
	log *slog.Logger
}

var _ service.Service = (*Client)(nil)

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := oauthConfig(cfg)
	if err != nil {
		return nil, err
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, service.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)

	// Create HTTP client with token source
	httpClient := oauth2.NewClient(ctx, tokenSource)

	// Create Tasks service
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Client{svc: svc, loc: cfg.Location, now: cfg.Clock, log: logging.OrNop(cfg.Logger)}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and API
// endpoint (for testing). An empty endpoint uses the public API.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string, now func() time.Time) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Client{svc: svc, loc: now().Location(), now: now, log: logging.Nop()}, nil
}

func oauthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	oc, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oc, nil
}

// CurrentUser is not available through the Tasks API.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	return service.User{}, fmt.Errorf("current user: %w", service.ErrUnsupported)
}

// rawLists returns the API task lists in API order.
func (c *Client) rawLists(ctx context.Context) ([]*tasks.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []*tasks.TaskList
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		result = append(result, resp.Items...)
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// listByOrdinal maps a 1-based list number to the API list.
func (c *Client) listByOrdinal(ctx context.Context, id int64) (*tasks.TaskList, error) {
	lists, err := c.rawLists(ctx)
	if err != nil {
		return nil, err
	}
	if id < 1 || id > int64(len(lists)) {
		return nil, fmt.Errorf("list %d: %w", id, service.ErrNotFound)
	}
	return lists[id-1], nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	lists, err := c.rawLists(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]service.TaskList, 0, len(lists))
	for i, l := range lists {
		result = append(result, service.TaskList{ID: int64(i + 1), Name: l.Title})
	}
	return result, nil
}

// ResolveList finds a list by number or name (case-insensitive, trimmed).
func (c *Client) ResolveList(ctx context.Context, ref string) (service.TaskList, error) {
	lists, err := c.ListLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	return service.MatchList(lists, ref)
}

// CreateList creates a new task list. The new list is returned with its
// position in the refreshed list order.
func (c *Client) CreateList(ctx context.Context, name string) (service.TaskList, error) {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(callCtx).Do()
	if err != nil {
		return service.TaskList{}, wrapError(err)
	}

	lists, err := c.rawLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	for i, l := range lists {
		if l.Id == created.Id {
			return service.TaskList{ID: int64(i + 1), Name: l.Title}, nil
		}
	}
	return service.TaskList{ID: int64(len(lists) + 1), Name: created.Title}, nil
}

// DeleteList deletes a task list by number.
func (c *Client) DeleteList(ctx context.Context, id int64) error {
	list, err := c.listByOrdinal(ctx, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	if err := c.svc.Tasklists.Delete(list.Id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// query describes a task listing across one or more lists.
type query struct {
	showCompleted bool
	dueMin        string
	dueMax        string
}

// listTasks fetches every page of one list.
func (c *Client) listTasks(ctx context.Context, ordinal int64, list *tasks.TaskList, q query) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	call := c.svc.Tasks.List(list.Id).
		MaxResults(PageSize).
		ShowCompleted(q.showCompleted).
		ShowHidden(q.showCompleted).
		ShowDeleted(false)
	if q.dueMin != "" {
		call = call.DueMin(q.dueMin)
	}
	if q.dueMax != "" {
		call = call.DueMax(q.dueMax)
	}

	var result []service.Task
	err := call.Pages(ctx, func(resp *tasks.Tasks) error {
		for _, t := range resp.Items {
			result = append(result, toTask(ordinal, list, t))
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// across runs q on every list and concatenates the results in list order.
func (c *Client) across(ctx context.Context, q query) ([]service.Task, error) {
	lists, err := c.rawLists(ctx)
	if err != nil {
		return nil, err
	}
	var all []service.Task
	for i, l := range lists {
		ts, err := c.listTasks(ctx, int64(i+1), l, q)
		if err != nil {
			return nil, err
		}
		all = append(all, ts...)
	}
	return all, nil
}

// today returns the RFC 3339 bounds of the local calendar day, expressed
// at UTC midnight the way the API stores date-only due values.
func (c *Client) today() (string, string) {
	y, m, d := c.now().In(c.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start.Format(time.RFC3339), start.AddDate(0, 0, 1).Format(time.RFC3339)
}

// AllTasks returns every task of every list, completed ones included.
func (c *Client) AllTasks(ctx context.Context) ([]service.Task, error) {
	return c.across(ctx, query{showCompleted: true})
}

// TodayTasks returns tasks due today.
func (c *Client) TodayTasks(ctx context.Context) ([]service.Task, error) {
	start, end := c.today()
	return c.across(ctx, query{showCompleted: true, dueMin: start, dueMax: end})
}

// OverdueTasks returns open tasks due before today. The API's dueMax is
// exclusive.
func (c *Client) OverdueTasks(ctx context.Context) ([]service.Task, error) {
	start, _ := c.today()
	return c.across(ctx, query{dueMax: start})
}

// TasksByList returns the tasks of list number listID.
func (c *Client) TasksByList(ctx context.Context, listID int64) ([]service.Task, error) {
	list, err := c.listByOrdinal(ctx, listID)
	if err != nil {
		return nil, err
	}
	return c.listTasks(ctx, listID, list, query{showCompleted: true})
}

// SearchTasks filters all tasks by a case-insensitive substring of the
// title or notes. The API has no search.
func (c *Client) SearchTasks(ctx context.Context, q string) ([]service.Task, error) {
	all, err := c.AllTasks(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(q))
	var out []service.Task
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Title), needle) || strings.Contains(strings.ToLower(t.Notes), needle) {
			out = append(out, t)
		}
	}
	return out, nil
}

// locate resolves a composite task id to its list.
func (c *Client) locate(ctx context.Context, id string) (int64, *tasks.TaskList, string, error) {
	listID, taskID, ok := strings.Cut(id, "/")
	if !ok || listID == "" || taskID == "" {
		return 0, nil, "", fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	lists, err := c.rawLists(ctx)
	if err != nil {
		return 0, nil, "", err
	}
	for i, l := range lists {
		if l.Id == listID {
			return int64(i + 1), l, taskID, nil
		}
	}
	return 0, nil, "", fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}

// GetTask fetches a task by composite id.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	ordinal, list, taskID, err := c.locate(ctx, id)
	if err != nil {
		return service.Task{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	t, err := c.svc.Tasks.Get(list.Id, taskID).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(ordinal, list, t), nil
}

// CreateTask creates a task in the requested list, or the default list.
func (c *Client) CreateTask(ctx context.Context, req service.TaskRequest) (service.Task, error) {
	var (
		list    *tasks.TaskList
		ordinal int64
		err     error
	)
	if req.TaskListID != nil {
		ordinal = *req.TaskListID
		list, err = c.listByOrdinal(ctx, ordinal)
	} else {
		ordinal = 1
		list, err = c.listByOrdinal(ctx, 1)
	}
	if err != nil {
		return service.Task{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	t, err := c.svc.Tasks.Insert(list.Id, fromRequest(req)).Context(callCtx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(ordinal, list, t), nil
}

// UpdateTask patches title, notes, due date and status. Moving a task
// between lists is not supported by the API and is ignored.
func (c *Client) UpdateTask(ctx context.Context, id string, req service.TaskRequest) (service.Task, error) {
	ordinal, list, taskID, err := c.locate(ctx, id)
	if err != nil {
		return service.Task{}, err
	}

	patch := fromRequest(req)
	if req.Status != service.StatusCompleted {
		patch.NullFields = append(patch.NullFields, "Completed")
	}
	if req.DueDate == "" {
		patch.NullFields = append(patch.NullFields, "Due")
	}

	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	t, err := c.svc.Tasks.Patch(list.Id, taskID, patch).Context(callCtx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(ordinal, list, t), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, list, taskID, err := c.locate(ctx, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	if err := c.svc.Tasks.Delete(list.Id, taskID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// Habits are not part of Google Tasks.
func (c *Client) Habits(ctx context.Context) ([]service.Habit, error) {
	return nil, fmt.Errorf("habits: %w", service.ErrUnsupported)
}

func (c *Client) CreateHabit(ctx context.Context, name string) (service.Habit, error) {
	return service.Habit{}, fmt.Errorf("habits: %w", service.ErrUnsupported)
}

func (c *Client) ToggleHabit(ctx context.Context, id int64, date string) (service.Habit, error) {
	return service.Habit{}, fmt.Errorf("habits: %w", service.ErrUnsupported)
}

func (c *Client) DeleteHabit(ctx context.Context, id int64) error {
	return fmt.Errorf("habits: %w", service.ErrUnsupported)
}

// toTask converts an API task. Due values are date-only in the API, so only
// the date part is kept.
func toTask(ordinal int64, list *tasks.TaskList, t *tasks.Task) service.Task {
	id := ordinal
	out := service.Task{
		ID:           list.Id + "/" + t.Id,
		Title:        t.Title,
		Notes:        t.Notes,
		Priority:     service.PriorityNone,
		Status:       service.StatusTodo,
		TaskListID:   &id,
		TaskListName: list.Title,
		AllDay:       t.Due != "",
	}
	if len(t.Due) >= len(service.DateLayout) {
		out.DueDate = t.Due[:len(service.DateLayout)]
	}
	if t.Status == statusCompleted {
		out.Status = service.StatusCompleted
		out.CompletedAt = derefString(t.Completed)
	}
	if pos, err := strconv.Atoi(t.Position); err == nil {
		out.SortOrder = pos
	}
	return out
}

func fromRequest(r service.TaskRequest) *tasks.Task {
	t := &tasks.Task{
		Title:  r.Title,
		Notes:  joinNotes(r.Description, r.Notes),
		Status: statusNeedsAction,
	}
	if r.Status == service.StatusCompleted {
		t.Status = statusCompleted
	}
	if len(r.DueDate) >= len(service.DateLayout) {
		if d, err := time.Parse(service.DateLayout, r.DueDate[:len(service.DateLayout)]); err == nil {
			t.Due = d.Format(time.RFC3339)
		}
	}
	return t
}

func joinNotes(description, notes string) string {
	switch {
	case description == "":
		return notes
	case notes == "":
		return description
	default:
		return description + "\n\n" + notes
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// wrapError maps API errors to the service sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrTimeout
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: tick login): %w", service.ErrUnauthorized)
		case http.StatusNotFound:
			return service.ErrNotFound
		}
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("token expired or revoked (run: tick login): %w", service.ErrUnauthorized)
	}
	return err
}
