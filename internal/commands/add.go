package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/service"
	"tick/internal/view"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName string
	priority string
	due      string
	quadrant string
	today    bool
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tick add [--list <list>] [--priority none|low|medium|high] [--due <date>] [--quadrant q1-q4] [--today] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.due, "d", "", "")
	fs.StringVar(&c.quadrant, "quadrant", "", "")
	fs.StringVar(&c.quadrant, "q", "", "")
	fs.BoolVar(&c.today, "today", false, "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	if c.quadrant != "" && c.priority != "" {
		fmt.Fprintln(errOut, "error: --quadrant and --priority cannot be combined")
		return exitcode.UserError
	}
	if refuseOffline(cfg, errOut) {
		return exitcode.UserError
	}

	now := cfg.Clock()
	var sel view.Selection = view.SmartList{Kind: view.All}
	if c.today {
		sel = view.SmartList{Kind: view.Today}
	}
	var listID *int64
	if c.listName != "" {
		list, err := resolveList(ctx, cfg, svc, c.listName)
		if err != nil {
			return reportErr(errOut, err)
		}
		listID = &list.ID
	}

	var req service.TaskRequest
	if c.quadrant != "" {
		q, ok := view.ParseQuadrant(strings.ToLower(c.quadrant))
		if !ok {
			fmt.Fprintf(errOut, "error: invalid quadrant: %s (use q1, q2, q3 or q4)\n", c.quadrant)
			return exitcode.UserError
		}
		req = view.NewMatrixTask(title, q, now)
	} else {
		req = view.NewTask(title, sel, now)
	}
	if listID != nil {
		req.TaskListID = listID
	}

	if c.priority != "" {
		p, err := parsePriorityFlag(c.priority)
		if err != nil {
			return reportErr(errOut, err)
		}
		req.Priority = p
	}
	if c.due != "" {
		due, allDay, err := parseDue(c.due, now)
		if err != nil {
			return reportErr(errOut, err)
		}
		req.DueDate = due.Format(service.RequestTimeLayout)
		req.AllDay = allDay
	}

	if _, err := svc.CreateTask(ctx, req); err != nil {
		return reportErr(errOut, err)
	}
	newFetcher(cfg).Invalidate()
	return ok(cfg, out)
}

func parsePriorityFlag(s string) (service.Priority, error) {
	p, ok := service.ParsePriorityStrict(s)
	if !ok {
		return service.PriorityNone, userErrorf("invalid priority: %s (use none, low, medium or high)", s)
	}
	return p, nil
}

// parseDue parses a --due value: today, tomorrow, YYYY-MM-DD or
// YYYY-MM-DDTHH:MM, in the location of now. Dates without a time are
// all-day.
func parseDue(s string, now time.Time) (time.Time, bool, error) {
	loc := now.Location()
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return view.StartOfDay(now), true, nil
	case "tomorrow":
		return view.StartOfDay(now).AddDate(0, 0, 1), true, nil
	}
	if d, err := time.ParseInLocation(service.DateLayout, s, loc); err == nil {
		return d, true, nil
	}
	if d, err := time.ParseInLocation("2006-01-02T15:04", s, loc); err == nil {
		return d, false, nil
	}
	return time.Time{}, false, userErrorf("invalid due date: %s (use today, tomorrow, YYYY-MM-DD or YYYY-MM-DDTHH:MM)", s)
}
