package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given, so an
// explicit empty value can clear a field.
type optString struct {
	val string
	set bool
}

func (o *optString) String() string { return o.val }

func (o *optString) Set(s string) error {
	o.val, o.set = s, true
	return nil
}

// EditCmd implements the edit command: changes the fields of one task.
type EditCmd struct {
	viewName string
	title    optString
	desc     optString
	priority optString
	due      optString
	noDue    bool
	listName optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task's title, description, priority, due date or list" }
func (c *EditCmd) Usage() string {
	return "tick edit [--view <view>] [--title <t>] [--desc <d>] [--priority <p>] [--due <date>|--no-due] [--list <list>] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.StringVar(&c.viewName, "view", "today", "")
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.due, "d", "")
	fs.BoolVar(&c.noDue, "no-due", false, "")
	fs.Var(&c.listName, "list", "")
	fs.Var(&c.listName, "l", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	switch {
	case len(args) == 0:
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	case len(args) > 1:
		fmt.Fprintln(errOut, "error: edit takes a single task reference")
		return exitcode.UserError
	}
	ref, err := ParseTaskRef(args[0])
	if err != nil {
		return reportErr(errOut, userErrorf("%v", err))
	}
	if !c.title.set && !c.desc.set && !c.priority.set && !c.due.set && !c.noDue && !c.listName.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --desc, --priority, --due, --no-due or --list)")
		return exitcode.UserError
	}
	if c.due.set && c.noDue {
		fmt.Fprintln(errOut, "error: --due and --no-due cannot be combined")
		return exitcode.UserError
	}
	title := strings.TrimSpace(c.title.val)
	if c.title.set && title == "" {
		fmt.Fprintln(errOut, "error: title cannot be empty")
		return exitcode.UserError
	}

	var priority service.Priority
	if c.priority.set {
		if priority, err = parsePriorityFlag(c.priority.val); err != nil {
			return reportErr(errOut, err)
		}
	}
	now := cfg.Clock()
	var dueDate string
	var allDay bool
	if c.due.set {
		due, ad, err := parseDue(c.due.val, now)
		if err != nil {
			return reportErr(errOut, err)
		}
		dueDate, allDay = due.Format(service.RequestTimeLayout), ad
	}

	sel, err := parseNumberedView(c.viewName)
	if err != nil {
		return reportErr(errOut, err)
	}
	if refuseOffline(cfg, errOut) {
		return exitcode.UserError
	}

	var listID *int64
	if c.listName.set {
		list, err := resolveList(ctx, cfg, svc, c.listName.val)
		if err != nil {
			return reportErr(errOut, err)
		}
		listID = &list.ID
	}
	tasks, err := resolveRefs(ctx, cfg, svc, sel, []TaskRef{ref})
	if err != nil {
		return reportErr(errOut, err)
	}
	t := tasks[0]

	req := service.RequestFrom(t)
	if c.title.set {
		req.Title = title
	}
	if c.desc.set {
		req.Description = c.desc.val
	}
	if c.priority.set {
		req.Priority = priority
	}
	switch {
	case c.due.set:
		req.DueDate, req.AllDay = dueDate, allDay
	case c.noDue:
		req.DueDate, req.AllDay = "", false
	}
	if listID != nil {
		req.TaskListID = listID
	}

	if _, err := svc.UpdateTask(ctx, t.ID, req); err != nil {
		return reportErr(errOut, err)
	}
	newFetcher(cfg).Invalidate()
	return ok(cfg, out)
}
