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
	Register(&CreateListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct{}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a task list" }
func (c *CreateListCmd) Usage() string     { return "tick createlist <name...>" }
func (c *CreateListCmd) NeedsAuth() bool   { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}
	if refuseOffline(cfg, errOut) {
		return exitcode.UserError
	}

	if _, err := svc.CreateList(ctx, name); err != nil {
		return reportErr(errOut, err)
	}
	newFetcher(cfg).Invalidate()
	return ok(cfg, out)
}
