package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tick/internal/logging"
	"tick/internal/service"
	"tick/internal/view"
)

// Result is the outcome of a cached read.
type Result[T any] struct {
	Value T
	// Stale is set when Value came from the cache instead of the backend.
	Stale    bool
	StoredAt time.Time
}

// Fetcher reads through the backend and falls back to the store.
// A nil Store disables caching.
type Fetcher struct {
	Store   *Store
	Offline bool
	Logger  *slog.Logger
}

// Tasks performs the read described by d, then applies its post-filter
// relative to now. On success the raw collection is written through. When
// the backend fails with anything other than an auth error and a cached
// copy exists, the copy is returned marked stale.
func (f *Fetcher) Tasks(ctx context.Context, r view.Reader, d view.FetchDescriptor, now time.Time) (Result[[]service.Task], error) {
	res, err := load(ctx, f, d.Key(), func(ctx context.Context) ([]service.Task, error) {
		return d.Fetch(ctx, r)
	})
	if err != nil {
		return res, err
	}
	res.Value = d.Apply(res.Value, now)
	return res, nil
}

// Lists reads task lists through the cache.
func (f *Fetcher) Lists(ctx context.Context, svc service.Service) (Result[[]service.TaskList], error) {
	return load(ctx, f, "lists-all", svc.ListLists)
}

// Habits reads habits through the cache.
func (f *Fetcher) Habits(ctx context.Context, svc service.Service) (Result[[]service.Habit], error) {
	return load(ctx, f, "habits-all", svc.Habits)
}

// Invalidate drops cached data after a write. Failure is logged only.
func (f *Fetcher) Invalidate() {
	if f == nil || f.Store == nil {
		return
	}
	if err := f.Store.Invalidate(); err != nil {
		logging.OrNop(f.Logger).Warn("cache invalidate failed", "error", err)
	}
}

func load[T any](ctx context.Context, f *Fetcher, key string, fetch func(context.Context) (T, error)) (Result[T], error) {
	log := logging.OrNop(f.Logger)

	if f.Offline {
		var res Result[T]
		if f.Store == nil {
			return res, ErrMiss
		}
		at, err := f.Store.Get(key, &res.Value)
		if err != nil {
			return res, err
		}
		res.Stale = true
		res.StoredAt = at
		return res, nil
	}

	v, err := fetch(ctx)
	if err == nil {
		if f.Store != nil && key != "" {
			if perr := f.Store.Put(key, v); perr != nil {
				log.Warn("cache write failed", "key", key, "error", perr)
			}
		}
		return Result[T]{Value: v}, nil
	}

	if f.Store == nil || key == "" || errors.Is(err, service.ErrUnauthorized) {
		return Result[T]{}, err
	}
	var res Result[T]
	at, cerr := f.Store.Get(key, &res.Value)
	if cerr != nil {
		return Result[T]{}, err
	}
	log.Debug("serving stale cache", "key", key, "stored_at", at, "error", err)
	res.Stale = true
	res.StoredAt = at
	return res, nil
}
