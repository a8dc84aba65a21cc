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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	viewName string
}

// SetView sets the view refs are numbered in (for testing).
func (c *RmCmd) SetView(name string) {
	c.viewName = name
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete tasks" }
func (c *RmCmd) Usage() string     { return "tick rm [--view <view>] <ref...>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.viewName, "view", "today", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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
	defer newFetcher(cfg).Invalidate()
	for _, t := range tasks {
		if err := svc.DeleteTask(ctx, t.ID); err != nil {
			return reportErr(errOut, err)
		}
	}
	return ok(cfg, out)
}
