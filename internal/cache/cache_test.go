package cache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"tick/internal/service"
	"tick/internal/view"
)

func TestStore_PutGet(t *testing.T) {
	s := Open(t.TempDir())
	at := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	in := []service.Task{{ID: "1", Title: "a", Priority: service.PriorityHigh}}
	if err := s.Put("tasks-list-7", in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out []service.Task
	got, err := s.Get("tasks-list-7", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("stored at %s, want %s", got, at)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("Get = %+v, want %+v", out, in)
	}
}

func TestStore_Miss(t *testing.T) {
	s := Open(t.TempDir())
	var out []service.Task
	if _, err := s.Get("tasks-today", &out); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss, got %v", err)
	}
}

func TestStore_KeysAndInvalidate(t *testing.T) {
	s := Open(t.TempDir())
	for _, k := range []string{"tasks-today", "tasks-list-3", "lists-all"} {
		if err := s.Put(k, []int{1}); err != nil {
			t.Fatal(err)
		}
	}

	keys := s.Keys(context.Background())
	sort.Strings(keys)
	if want := []string{"lists-all", "tasks-list-3", "tasks-today"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys = %v, want %v", keys, want)
	}

	if err := s.Delete("tasks-today"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("tasks-today"); err != nil {
		t.Errorf("second Delete: %v", err)
	}

	if err := s.Invalidate(); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	var v []int
	if _, err := s.Get("lists-all", &v); !errors.Is(err, ErrMiss) {
		t.Errorf("after Invalidate expected ErrMiss, got %v", err)
	}
	if err := s.Put("lists-all", []int{2}); err != nil {
		t.Errorf("Put after Invalidate: %v", err)
	}
}

type reader struct {
	all []service.Task
	err error
}

func (r *reader) AllTasks(context.Context) ([]service.Task, error) { return r.all, r.err }
func (r *reader) TodayTasks(context.Context) ([]service.Task, error) {
	return r.all, r.err
}
func (r *reader) OverdueTasks(context.Context) ([]service.Task, error) {
	return nil, r.err
}
func (r *reader) TasksByList(context.Context, int64) ([]service.Task, error) {
	return nil, r.err
}

func TestFetcher_StaleFallback(t *testing.T) {
	f := &Fetcher{Store: Open(t.TempDir())}
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	r := &reader{all: []service.Task{{ID: "1"}, {ID: "2"}}}
	d := view.Resolve(view.SmartList{Kind: view.All})

	res, err := f.Tasks(context.Background(), r, d, now)
	if err != nil || res.Stale || len(res.Value) != 2 {
		t.Fatalf("first load = %+v, %v", res, err)
	}

	r.err = errors.New("connection refused")
	res, err = f.Tasks(context.Background(), r, d, now)
	if err != nil {
		t.Fatalf("fallback load: %v", err)
	}
	if !res.Stale || len(res.Value) != 2 {
		t.Errorf("fallback = %+v, want 2 stale tasks", res)
	}
}

func TestFetcher_AuthErrorNotMasked(t *testing.T) {
	f := &Fetcher{Store: Open(t.TempDir())}
	r := &reader{all: []service.Task{{ID: "1"}}}
	d := view.Resolve(view.SmartList{Kind: view.Today})
	if _, err := f.Tasks(context.Background(), r, d, time.Now()); err != nil {
		t.Fatal(err)
	}

	r.err = fmt.Errorf("refresh: %w", service.ErrUnauthorized)
	if _, err := f.Tasks(context.Background(), r, d, time.Now()); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFetcher_NoCacheReturnsError(t *testing.T) {
	f := &Fetcher{Store: Open(t.TempDir())}
	r := &reader{err: errors.New("boom")}
	d := view.Resolve(view.SmartList{Kind: view.All})

	if _, err := f.Tasks(context.Background(), r, d, time.Now()); err == nil || err.Error() != "boom" {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestFetcher_Offline(t *testing.T) {
	store := Open(t.TempDir())
	r := &reader{all: []service.Task{{ID: "1"}}}
	d := view.Resolve(view.SmartList{Kind: view.All})

	off := &Fetcher{Store: store, Offline: true}
	if _, err := off.Tasks(context.Background(), r, d, time.Now()); !errors.Is(err, ErrMiss) {
		t.Fatalf("offline miss = %v, want ErrMiss", err)
	}

	on := &Fetcher{Store: store}
	if _, err := on.Tasks(context.Background(), r, d, time.Now()); err != nil {
		t.Fatal(err)
	}

	r.all = nil
	res, err := off.Tasks(context.Background(), r, d, time.Now())
	if err != nil || !res.Stale || len(res.Value) != 1 {
		t.Errorf("offline hit = %+v, %v", res, err)
	}
}

func TestFetcher_AppliesPostFilterAfterCache(t *testing.T) {
	loc := time.FixedZone("X", 0)
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, loc)
	store := Open(t.TempDir())
	f := &Fetcher{Store: store}
	r := &reader{all: []service.Task{
		{ID: "soon", DueDate: "2025-03-06T09:00:00"},
		{ID: "later", DueDate: "2025-04-01T09:00:00"},
	}}

	res, err := f.Tasks(context.Background(), r, view.Resolve(view.SmartList{Kind: view.Next7Days}), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Value) != 1 || res.Value[0].ID != "soon" {
		t.Errorf("filtered = %+v", res.Value)
	}

	var raw []service.Task
	if _, err := store.Get("tasks-all", &raw); err != nil || len(raw) != 2 {
		t.Errorf("cache should hold the unfiltered collection, got %d, %v", len(raw), err)
	}
}

func TestFetcher_NilStore(t *testing.T) {
	f := &Fetcher{}
	r := &reader{all: []service.Task{{ID: "1"}}}
	res, err := f.Tasks(context.Background(), r, view.Resolve(view.SmartList{Kind: view.All}), time.Now())
	if err != nil || len(res.Value) != 1 {
		t.Errorf("got %+v, %v", res, err)
	}
	f.Invalidate()
}
