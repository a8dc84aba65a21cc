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
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command. A list with open tasks is only
// deleted with --force.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string      { return "rmlist" }
func (c *RmListCmd) Aliases() []string { return nil }
func (c *RmListCmd) Synopsis() string  { return "Delete a task list" }
func (c *RmListCmd) Usage() string     { return "tick rmlist [--force] <list-name|id>" }
func (c *RmListCmd) NeedsAuth() bool   { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.force, "f", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}
	if refuseOffline(cfg, errOut) {
		return exitcode.UserError
	}

	list, err := resolveList(ctx, cfg, svc, strings.Join(args, " "))
	if err != nil {
		return reportErr(errOut, err)
	}

	if !c.force {
		tasks, err := svc.TasksByList(ctx, list.ID)
		if err != nil {
			return reportErr(errOut, err)
		}
		for _, t := range tasks {
			if !t.Completed() {
				fmt.Fprintln(errOut, "error: list not empty (use --force)")
				return exitcode.UserError
			}
		}
	}

	if err := svc.DeleteList(ctx, list.ID); err != nil {
		return reportErr(errOut, err)
	}
	newFetcher(cfg).Invalidate()
	return ok(cfg, out)
}
