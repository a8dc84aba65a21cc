// Package rest implements service.Service against the tick task server's
// JSON API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"tick/internal/logging"
	"tick/internal/service"
)

// DefaultTimeout bounds every API call when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Options configure a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api.
	BaseURL string

	// SessionPath is where tokens are stored.
	SessionPath string

	// HTTPClient supplies the underlying transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	Timeout time.Duration
	Logger  *slog.Logger
}

// Client implements service.Service using the REST API.
type Client struct {
	baseURL string
	api     *http.Client // authenticated
	plain   *http.Client // auth endpoints
	session *Session
	auth    *authTransport
	timeout time.Duration
	log     *slog.Logger
}

var _ service.Service = (*Client)(nil)
var _ service.TokenProvider = (*Client)(nil)

// New creates a REST client. No request is made.
func New(opts Options) *Client {
	plain := opts.HTTPClient
	if plain == nil {
		plain = http.DefaultClient
	}
	base := plain.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		plain:   plain,
		session: NewSession(opts.SessionPath),
		timeout: timeout,
		log:     logging.OrNop(opts.Logger),
	}
	c.auth = &authTransport{base: base, session: c.session, refresh: c.refresh}
	c.api = &http.Client{Transport: c.auth, Timeout: plain.Timeout}
	return c
}

// Session returns the token store used by the client.
func (c *Client) Session() *Session { return c.session }

// AccessToken returns a bearer token for the realtime channel. A token past
// its expiry is refreshed first, as for API calls.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	tok, err := c.auth.current(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Login signs in with email and password and stores the session.
func (c *Client) Login(ctx context.Context, email, password string) (service.User, error) {
	var resp authResponseDTO
	err := c.call(ctx, c.plain, http.MethodPost, "/auth/login", nil,
		loginRequestDTO{Email: email, Password: password}, &resp)
	if err != nil {
		return service.User{}, err
	}
	return resp.User.toUser(), c.session.Save(tokenFromAuth(resp))
}

// Register creates an account and stores the session.
func (c *Client) Register(ctx context.Context, name, email, password string) (service.User, error) {
	var resp authResponseDTO
	err := c.call(ctx, c.plain, http.MethodPost, "/auth/register", nil,
		signUpRequestDTO{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return service.User{}, err
	}
	return resp.User.toUser(), c.session.Save(tokenFromAuth(resp))
}

// Logout forgets the stored session.
func (c *Client) Logout() error {
	return c.session.Remove()
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	var resp authResponseDTO
	q := url.Values{"refreshToken": {refreshToken}}
	if err := c.call(ctx, c.plain, http.MethodPost, "/auth/refresh", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("refresh returned no access token")
	}
	tok := tokenFromAuth(resp)
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	c.log.Debug("session refreshed", "expiry", tok.Expiry)
	return tok, nil
}

// CurrentUser returns the signed-in account.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	var u userDTO
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return service.User{}, err
	}
	return u.toUser(), nil
}

func (c *Client) tasks(ctx context.Context, path string, q url.Values) ([]service.Task, error) {
	var ds []taskDTO
	if err := c.do(ctx, http.MethodGet, path, q, nil, &ds); err != nil {
		return nil, err
	}
	return toTasks(ds), nil
}

// AllTasks returns every task of the user.
func (c *Client) AllTasks(ctx context.Context) ([]service.Task, error) {
	return c.tasks(ctx, "/tasks", nil)
}

// TodayTasks returns tasks the server considers due today.
func (c *Client) TodayTasks(ctx context.Context) ([]service.Task, error) {
	return c.tasks(ctx, "/tasks/today", nil)
}

// OverdueTasks returns open tasks due before today.
func (c *Client) OverdueTasks(ctx context.Context) ([]service.Task, error) {
	return c.tasks(ctx, "/tasks/overdue", nil)
}

// TasksByList returns the tasks of one list.
func (c *Client) TasksByList(ctx context.Context, listID int64) ([]service.Task, error) {
	return c.tasks(ctx, "/tasks/list/"+strconv.FormatInt(listID, 10), nil)
}

// SearchTasks runs a server-side search.
func (c *Client) SearchTasks(ctx context.Context, query string) ([]service.Task, error) {
	return c.tasks(ctx, "/tasks/search", url.Values{"query": {query}})
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	path, err := taskPath(id)
	if err != nil {
		return service.Task{}, err
	}
	var d taskDTO
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &d); err != nil {
		return service.Task{}, err
	}
	return d.toTask(), nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req service.TaskRequest) (service.Task, error) {
	var d taskDTO
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, fromRequest(req), &d); err != nil {
		return service.Task{}, err
	}
	return d.toTask(), nil
}

// UpdateTask replaces the writable fields of a task.
func (c *Client) UpdateTask(ctx context.Context, id string, req service.TaskRequest) (service.Task, error) {
	path, err := taskPath(id)
	if err != nil {
		return service.Task{}, err
	}
	var d taskDTO
	if err := c.do(ctx, http.MethodPut, path, nil, fromRequest(req), &d); err != nil {
		return service.Task{}, err
	}
	return d.toTask(), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	path, err := taskPath(id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// ListLists returns all task lists.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	var ds []listDTO
	if err := c.do(ctx, http.MethodGet, "/lists", nil, nil, &ds); err != nil {
		return nil, err
	}
	out := make([]service.TaskList, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.toList())
	}
	return out, nil
}

// ResolveList finds a list by id or name.
func (c *Client) ResolveList(ctx context.Context, ref string) (service.TaskList, error) {
	lists, err := c.ListLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	return service.MatchList(lists, ref)
}

// CreateList creates a task list.
func (c *Client) CreateList(ctx context.Context, name string) (service.TaskList, error) {
	var d listDTO
	if err := c.do(ctx, http.MethodPost, "/lists", nil, listRequestDTO{Name: name}, &d); err != nil {
		return service.TaskList{}, err
	}
	return d.toList(), nil
}

// DeleteList deletes a task list.
func (c *Client) DeleteList(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/lists/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// Habits returns the user's habits.
func (c *Client) Habits(ctx context.Context) ([]service.Habit, error) {
	var ds []habitDTO
	if err := c.do(ctx, http.MethodGet, "/habits", nil, nil, &ds); err != nil {
		return nil, err
	}
	out := make([]service.Habit, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.toHabit())
	}
	return out, nil
}

// CreateHabit creates a habit with the default color and icon.
func (c *Client) CreateHabit(ctx context.Context, name string) (service.Habit, error) {
	var d habitDTO
	req := habitRequestDTO{Name: name, Color: defaultHabitColor, Icon: defaultHabitIcon}
	if err := c.do(ctx, http.MethodPost, "/habits", nil, req, &d); err != nil {
		return service.Habit{}, err
	}
	return d.toHabit(), nil
}

// ToggleHabit flips completion of a habit on date (YYYY-MM-DD).
func (c *Client) ToggleHabit(ctx context.Context, id int64, date string) (service.Habit, error) {
	var d habitDTO
	path := "/habits/" + strconv.FormatInt(id, 10) + "/toggle"
	if err := c.do(ctx, http.MethodPost, path, url.Values{"date": {date}}, nil, &d); err != nil {
		return service.Habit{}, err
	}
	return d.toHabit(), nil
}

// DeleteHabit deletes a habit.
func (c *Client) DeleteHabit(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/habits/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func taskPath(id string) (string, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	return "/tasks/" + id, nil
}

// do performs an authenticated call.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	return c.call(ctx, c.api, method, path, q, in, out)
}

func (c *Client) call(ctx context.Context, hc *http.Client, method, path string, q url.Values, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return wrapError(err)
	}
	defer resp.Body.Close()

	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// StatusError is an HTTP error response not covered by a sentinel.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body errorDTO
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Message
		if msg == "" {
			msg = body.Error
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg == "" {
			return service.ErrUnauthorized
		}
		return fmt.Errorf("%s: %w", msg, service.ErrUnauthorized)
	case http.StatusNotFound:
		if msg == "" {
			return service.ErrNotFound
		}
		return fmt.Errorf("%s: %w", msg, service.ErrNotFound)
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}

// wrapError maps transport failures to the service sentinels.
func wrapError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		switch {
		case errors.Is(uerr.Err, service.ErrUnauthorized):
			return uerr.Err
		case uerr.Timeout(), errors.Is(uerr.Err, context.DeadlineExceeded):
			return service.ErrTimeout
		}
		return fmt.Errorf("%s %s: %w", uerr.Op, redact(uerr.URL), uerr.Err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrTimeout
	}
	return err
}

// redact strips the query so refresh tokens never reach error output.
func redact(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}
