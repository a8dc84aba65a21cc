package commands

import (
	"context"
	"flag"
	"io"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. Refs are positions in --view or #ids.
type DoneCmd struct {
	viewName string
	undo     bool
}

// SetView sets the view refs are numbered in (for testing).
func (c *DoneCmd) SetView(name string) {
	c.viewName = name
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string     { return "tick done [--view <view>] [--undo] <ref...>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.viewName, "view", "today", "")
	fs.BoolVar(&c.undo, "undo", false, "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return reportErr(errOut, userErrorf("%v", err))
	}
	sel, err := parseNumberedView(c.viewName)
	if err != nil {
		return reportErr(errOut, err)
	}
	if refuseOffline(cfg, errOut) {
		return exitcode.UserError
	}

	tasks, err := resolveRefs(ctx, cfg, svc, sel, refs)
	if err != nil {
		return reportErr(errOut, err)
	}

	status := service.StatusCompleted
	if c.undo {
		status = service.StatusTodo
	}
	defer newFetcher(cfg).Invalidate()
	for _, t := range tasks {
		if t.Status == status {
			continue
		}
		req := service.RequestFrom(t)
		req.Status = status
		if _, err := svc.UpdateTask(ctx, t.ID, req); err != nil {
			return reportErr(errOut, err)
		}
	}
	return ok(cfg, out)
}
