package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"tick/internal/cache"
	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/output"
	"tick/internal/service"
	"tick/internal/view"
)

// userError is a usage problem reported verbatim with exit code 1.
type userError struct{ msg string }

func (e *userError) Error() string { return e.msg }

func userErrorf(format string, a ...any) error {
	return &userError{msg: fmt.Sprintf(format, a...)}
}

// reportErr prints err as a single error line and returns its exit code.
func reportErr(errOut io.Writer, err error) int {
	var ue *userError
	switch {
	case errors.As(err, &ue):
		fmt.Fprintf(errOut, "error: %s\n", ue.msg)
		return exitcode.UserError
	case errors.Is(err, cache.ErrMiss):
		fmt.Fprintln(errOut, "error: no cached data (run without --offline)")
		return exitcode.UserError
	}

	code := exitcode.For(err)
	switch code {
	case exitcode.AuthError:
		fmt.Fprintln(errOut, "error: not logged in (run: tick login)")
	case exitcode.UserError:
		fmt.Fprintf(errOut, "error: %v\n", err)
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	}
	return code
}

// refuseOffline reports writes attempted with --offline.
func refuseOffline(cfg *config.Config, errOut io.Writer) bool {
	if !cfg.Offline {
		return false
	}
	fmt.Fprintln(errOut, "error: cannot change data with --offline")
	return true
}

func ok(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func newFetcher(cfg *config.Config) *cache.Fetcher {
	f := &cache.Fetcher{Offline: cfg.Offline, Logger: cfg.Logger}
	if cfg.Settings.Cache || cfg.Offline {
		f.Store = cache.Open(cfg.CacheDir())
	}
	return f
}

func staleNotice[T any](cfg *config.Config, out io.Writer, res cache.Result[T]) {
	if res.Stale && !cfg.Quiet {
		output.FormatStale(out, res.StoredAt)
	}
}

// loadView reads the tasks of sel through the cache, post-filtered.
func loadView(ctx context.Context, cfg *config.Config, svc service.Service, sel view.Selection) (cache.Result[[]service.Task], error) {
	return newFetcher(cfg).Tasks(ctx, svc, view.Resolve(sel), cfg.Clock())
}

// displayOrder returns tasks in the order they are numbered when sel is
// rendered.
func displayOrder(sel view.Selection, tasks []service.Task, cfg *config.Config) []service.Task {
	if m, ok := sel.(view.Module); ok && m.Kind == view.Matrix {
		return view.Bucket(tasks).Flatten()
	}
	return view.GroupTasks(tasks, sel, cfg.Clock()).Flatten()
}

// parseNumberedView parses a --view value naming a view with numbered tasks.
func parseNumberedView(s string) (view.Selection, error) {
	sel, err := view.ParseSelection(s)
	if err != nil {
		return nil, userErrorf("%v", err)
	}
	if m, ok := sel.(view.Module); ok && m.Kind != view.Matrix {
		return nil, userErrorf("view has no numbered tasks: %s", s)
	}
	return sel, nil
}

// resolveList finds a list by name or id. Offline it matches against the
// cached lists.
func resolveList(ctx context.Context, cfg *config.Config, svc service.Service, ref string) (service.TaskList, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return service.TaskList{}, userErrorf("list name required")
	}

	var (
		l   service.TaskList
		err error
	)
	if cfg.Offline {
		var res cache.Result[[]service.TaskList]
		res, err = newFetcher(cfg).Lists(ctx, svc)
		if err == nil {
			l, err = service.MatchList(res.Value, ref)
		}
	} else {
		l, err = svc.ResolveList(ctx, ref)
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return l, userErrorf("list not found: %s", ref)
	case errors.Is(err, service.ErrAmbiguous):
		return l, userErrorf("ambiguous list name: %s", ref)
	}
	return l, err
}
