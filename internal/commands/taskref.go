package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"tick/internal/config"
	"tick/internal/service"
	"tick/internal/view"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in the rendered view; 0 when ID is set
	ID  string // backend id given as #ID
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses one task reference.
//
// Parsing rules:
// 1. All digits → position in the view (must be >= 1)
// 2. '#' followed by a non-empty id → backend id
// 3. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(arg string) (TaskRef, error) {
	if arg == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %d", num)
		}
		return TaskRef{Num: num}, nil
	}
	if id, ok := strings.CutPrefix(arg, "#"); ok && strings.TrimSpace(id) != "" {
		return TaskRef{ID: id}, nil
	}
	return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
}

// ParseTaskRefs parses every argument as a task reference.
func ParseTaskRefs(args []string) ([]TaskRef, error) {
	if len(args) == 0 {
		return nil, ErrTaskRefRequired
	}
	refs := make([]TaskRef, 0, len(args))
	for _, a := range args {
		ref, err := ParseTaskRef(a)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// resolveRefs maps refs to tasks. Positions are resolved against a single
// read of sel so that several refs in one call see the same numbering.
func resolveRefs(ctx context.Context, cfg *config.Config, svc service.Service, sel view.Selection, refs []TaskRef) ([]service.Task, error) {
	var shown []service.Task
	loaded := false

	out := make([]service.Task, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != "" {
			t, err := svc.GetTask(ctx, ref.ID)
			if errors.Is(err, service.ErrNotFound) {
				return nil, userErrorf("task not found: #%s", ref.ID)
			}
			if err != nil {
				return nil, err
			}
			out = append(out, t)
			continue
		}

		if !loaded {
			res, err := loadView(ctx, cfg, svc, sel)
			if err != nil {
				return nil, err
			}
			shown = displayOrder(sel, res.Value, cfg)
			loaded = true
		}
		if ref.Num > len(shown) {
			return nil, userErrorf("task number out of range: %d", ref.Num)
		}
		out = append(out, shown[ref.Num-1])
	}
	return out, nil
}
