package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"

	"tick/internal/service"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		Subject:   "1",
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// fakeServer accepts exactly one access token at a time.
type fakeServer struct {
	mu         sync.Mutex
	valid      string
	refreshes  int
	refreshErr bool
	unauth     int
	lastBody   string
	lastQuery  string
	reqIDs     []string
	next       string // access token handed out on refresh
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.reqIDs = append(f.reqIDs, r.Header.Get("X-Request-ID"))
			ok := r.Header.Get("Authorization") == "Bearer "+f.valid
			if !ok {
				f.unauth++
			}
			f.mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequestDTO
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"status":401,"error":"Unauthorized","message":"Bad credentials"}`)
			return
		}
		f.mu.Lock()
		access := f.valid
		f.mu.Unlock()
		writeJSON(w, authResponseDTO{AccessToken: access, RefreshToken: "r1", TokenType: "Bearer",
			User: userDTO{ID: 1, Email: req.Email, Name: "Ada"}})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.refreshes++
		if f.refreshErr || r.URL.Query().Get("refreshToken") != "r1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.valid = f.next
		writeJSON(w, authResponseDTO{AccessToken: f.next, RefreshToken: "r1"})
	})
	mux.HandleFunc("GET /api/auth/me", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, userDTO{ID: 1, Email: "ada@example.com", Name: "Ada", Timezone: "UTC"})
	}))
	mux.HandleFunc("GET /api/tasks", authed(func(w http.ResponseWriter, r *http.Request) {
		list := int64(3)
		writeJSON(w, []taskDTO{
			{ID: 7, Title: "Write report", Priority: "HIGH", Status: "TODO", DueDate: "2025-03-05T09:00:00",
				TaskListID: &list, TaskListName: "Work", Tags: []tagDTO{{ID: 1, Name: "q1"}}},
			{ID: 8, Title: "Done thing", Priority: "BOGUS", Status: "COMPLETED"},
		})
	}))
	mux.HandleFunc("POST /api/tasks", authed(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.lastBody = string(b)
		f.mu.Unlock()
		var req taskRequestDTO
		_ = json.Unmarshal(b, &req)
		writeJSON(w, taskDTO{ID: 9, Title: req.Title, Priority: req.Priority, Status: req.Status, DueDate: req.DueDate})
	}))
	mux.HandleFunc("GET /api/tasks/404", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":404,"message":"Task not found with id : '404'"}`)
	}))
	mux.HandleFunc("GET /api/tasks/500", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"status":500,"error":"Internal Server Error"}`)
	}))
	mux.HandleFunc("GET /api/tasks/slow", authed(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	mux.HandleFunc("GET /api/tasks/search", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastQuery = r.URL.RawQuery
		f.mu.Unlock()
		writeJSON(w, []taskDTO{})
	}))
	mux.HandleFunc("DELETE /api/tasks/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/lists", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []listDTO{{ID: 1, Name: "Inbox", TaskCount: 2}, {ID: 3, Name: "Work"}})
	}))
	mux.HandleFunc("POST /api/habits", authed(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.lastBody = string(b)
		f.mu.Unlock()
		var req habitRequestDTO
		_ = json.Unmarshal(b, &req)
		writeJSON(w, habitDTO{ID: 5, Name: req.Name, Color: req.Color, Icon: req.Icon})
	}))
	mux.HandleFunc("POST /api/habits/{id}/toggle", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastQuery = r.URL.RawQuery
		f.mu.Unlock()
		writeJSON(w, habitDTO{ID: 5, Name: "Read", CompletedDates: []string{r.URL.Query().Get("date")}})
	}))
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeServer) (*Client, string) {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	path := filepath.Join(t.TempDir(), "session.json")
	c := New(Options{
		BaseURL:     srv.URL + "/api/",
		SessionPath: path,
		HTTPClient:  srv.Client(),
		Timeout:     time.Second,
	})
	return c, path
}

func TestLogin_StoresSession(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	f := &fakeServer{}
	f.valid = signedToken(t, exp)
	c, path := newTestClient(t, f)

	u, err := c.Login(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("user = %+v", u)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("session mode = %o, want 600", info.Mode().Perm())
	}
	tok, err := c.Session().Load()
	if err != nil {
		t.Fatal(err)
	}
	if tok.RefreshToken != "r1" || !tok.Expiry.Equal(exp) {
		t.Errorf("token = %+v, want refresh r1 expiry %s", tok, exp)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	c, path := newTestClient(t, &fakeServer{})

	_, err := c.Login(context.Background(), "ada@example.com", "wrong")
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session should not be written on failed login")
	}
}

func TestNoSession(t *testing.T) {
	f := &fakeServer{}
	c, _ := newTestClient(t, f)

	_, err := c.AllTasks(context.Background())
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(f.reqIDs) != 0 {
		t.Error("no request should reach the server without a session")
	}
}

func TestAllTasks(t *testing.T) {
	f := &fakeServer{valid: "good"}
	c, _ := newTestClient(t, f)
	if err := c.Session().Save(&oauth2.Token{AccessToken: "good", RefreshToken: "r1"}); err != nil {
		t.Fatal(err)
	}

	tasks, err := c.AllTasks(context.Background())
	if err != nil {
		t.Fatalf("AllTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	first := tasks[0]
	if first.ID != "7" || first.Priority != service.PriorityHigh || first.TaskListName != "Work" {
		t.Errorf("first task = %+v", first)
	}
	if first.TaskListID == nil || *first.TaskListID != 3 {
		t.Errorf("list id = %v", first.TaskListID)
	}
	if len(first.Tags) != 1 || first.Tags[0] != "q1" {
		t.Errorf("tags = %v", first.Tags)
	}
	if tasks[1].Priority != service.PriorityNone || !tasks[1].Completed() {
		t.Errorf("second task = %+v", tasks[1])
	}
	if f.reqIDs[0] == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestRefreshOn401_ReplaysBody(t *testing.T) {
	f := &fakeServer{valid: "server-side", next: "fresh"}
	c, _ := newTestClient(t, f)
	if err := c.Session().Save(&oauth2.Token{AccessToken: "stale", RefreshToken: "r1"}); err != nil {
		t.Fatal(err)
	}

	task, err := c.CreateTask(context.Background(), service.TaskRequest{
		Title:    "Call Bob",
		Priority: service.PriorityMedium,
		DueDate:  "2025-03-05T10:30:00",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Title != "Call Bob" || task.Priority != service.PriorityMedium || task.Status != service.StatusTodo {
		t.Errorf("task = %+v", task)
	}
	if f.refreshes != 1 || f.unauth != 1 {
		t.Errorf("refreshes=%d unauthorized=%d, want 1/1", f.refreshes, f.unauth)
	}
	var body taskRequestDTO
	if err := json.Unmarshal([]byte(f.lastBody), &body); err != nil || body.Title != "Call Bob" {
		t.Errorf("replayed body = %q", f.lastBody)
	}

	tok, _ := c.Session().Load()
	if tok.AccessToken != "fresh" {
		t.Errorf("stored access token = %q, want fresh", tok.AccessToken)
	}
}

func TestRefreshFailure_ClearsSession(t *testing.T) {
	f := &fakeServer{valid: "server-side", refreshErr: true}
	c, path := newTestClient(t, f)
	if err := c.Session().Save(&oauth2.Token{AccessToken: "stale", RefreshToken: "r1"}); err != nil {
		t.Fatal(err)
	}

	_, err := c.AllTasks(context.Background())
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session should be removed after a failed refresh")
	}
	if f.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", f.refreshes)
	}
}

func TestExpiredToken_RefreshedBeforeRequest(t *testing.T) {
	f := &fakeServer{next: "fresh"}
	f.valid = "fresh"
	c, _ := newTestClient(t, f)
	expired := signedToken(t, time.Now().Add(-time.Minute))
	if err := c.Session().Save(&oauth2.Token{AccessToken: expired, RefreshToken: "r1", Expiry: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatal(err)
	}

	if _, err := c.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if f.unauth != 0 || f.refreshes != 1 {
		t.Errorf("unauthorized=%d refreshes=%d, want 0/1", f.unauth, f.refreshes)
	}
}

func TestStatusMapping(t *testing.T) {
	f := &fakeServer{valid: "good"}
	c, _ := newTestClient(t, f)
	_ = c.Session().Save(&oauth2.Token{AccessToken: "good"})

	_, err := c.GetTask(context.Background(), "404")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("404: expected ErrNotFound, got %v", err)
	}

	_, err = c.GetTask(context.Background(), "500")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 500 || se.Message != "Internal Server Error" {
		t.Errorf("500: got %v", err)
	}

	_, err = c.GetTask(context.Background(), "abc")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("non-numeric id: expected ErrNotFound, got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	f := &fakeServer{valid: "good"}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()
	c := New(Options{
		BaseURL:     srv.URL + "/api",
		SessionPath: filepath.Join(t.TempDir(), "session.json"),
		HTTPClient:  srv.Client(),
		Timeout:     50 * time.Millisecond,
	})
	_ = c.Session().Save(&oauth2.Token{AccessToken: "good"})

	_, err := c.tasks(context.Background(), "/tasks/slow", nil)
	if !errors.Is(err, service.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestDeleteTask_NoContent(t *testing.T) {
	f := &fakeServer{valid: "good"}
	c, _ := newTestClient(t, f)
	_ = c.Session().Save(&oauth2.Token{AccessToken: "good"})

	if err := c.DeleteTask(context.Background(), "7"); err != nil {
		t.Errorf("DeleteTask: %v", err)
	}
}

func TestSearchAndResolveList(t *testing.T) {
	f := &fakeServer{valid: "good"}
	c, _ := newTestClient(t, f)
	_ = c.Session().Save(&oauth2.Token{AccessToken: "good"})

	if _, err := c.SearchTasks(context.Background(), "bob & co"); err != nil {
		t.Fatal(err)
	}
	if f.lastQuery != "query=bob+%26+co" {
		t.Errorf("query = %q", f.lastQuery)
	}

	l, err := c.ResolveList(context.Background(), " work ")
	if err != nil || l.ID != 3 {
		t.Errorf("ResolveList = %+v, %v", l, err)
	}
	l, err = c.ResolveList(context.Background(), "1")
	if err != nil || l.Name != "Inbox" {
		t.Errorf("ResolveList(1) = %+v, %v", l, err)
	}
	if _, err := c.ResolveList(context.Background(), "Home"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHabits(t *testing.T) {
	f := &fakeServer{valid: "good"}
	c, _ := newTestClient(t, f)
	_ = c.Session().Save(&oauth2.Token{AccessToken: "good"})

	h, err := c.CreateHabit(context.Background(), "Read")
	if err != nil {
		t.Fatal(err)
	}
	if h.Color != "bg-blue-500" || h.Icon != "check" {
		t.Errorf("habit = %+v", h)
	}

	h, err = c.ToggleHabit(context.Background(), 5, "2025-03-05")
	if err != nil {
		t.Fatal(err)
	}
	if f.lastQuery != "date=2025-03-05" || len(h.CompletedDates) != 1 {
		t.Errorf("toggle query=%q habit=%+v", f.lastQuery, h)
	}
}

func TestAccessToken(t *testing.T) {
	c, _ := newTestClient(t, &fakeServer{})
	if _, err := c.AccessToken(context.Background()); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	_ = c.Session().Save(&oauth2.Token{AccessToken: "abc"})
	if tok, err := c.AccessToken(context.Background()); err != nil || tok != "abc" {
		t.Errorf("AccessToken = %q, %v", tok, err)
	}
	if err := c.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AccessToken(context.Background()); !errors.Is(err, service.ErrUnauthorized) {
		t.Error("logout should remove the session")
	}
}

func TestAccessToken_RefreshesExpired(t *testing.T) {
	f := &fakeServer{valid: "old", next: "fresh"}
	c, _ := newTestClient(t, f)
	if err := c.Session().Save(&oauth2.Token{AccessToken: "expired", RefreshToken: "r1", Expiry: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}

	tok, err := c.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if tok != "fresh" || f.refreshes != 1 {
		t.Errorf("AccessToken = %q after %d refreshes, want fresh after 1", tok, f.refreshes)
	}
	stored, err := c.Session().Load()
	if err != nil || stored.AccessToken != "fresh" {
		t.Errorf("stored token = %v, %v", stored, err)
	}

	// the renewed token has no expiry and is reused
	if tok, _ := c.AccessToken(context.Background()); tok != "fresh" || f.refreshes != 1 {
		t.Errorf("second AccessToken = %q after %d refreshes", tok, f.refreshes)
	}
}

func TestAccessToken_RefreshFailure(t *testing.T) {
	f := &fakeServer{refreshErr: true}
	c, path := newTestClient(t, f)
	if err := c.Session().Save(&oauth2.Token{AccessToken: "expired", RefreshToken: "r1", Expiry: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}

	if _, err := c.AccessToken(context.Background()); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session should be removed after a failed refresh")
	}
}
