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
	"tick/internal/view"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command: the tasks of one custom list.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return nil }
func (c *ListCmd) Synopsis() string  { return "List tasks of a list" }
func (c *ListCmd) Usage() string     { return "tick list <list-name|id>" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	list, err := resolveList(ctx, cfg, svc, strings.Join(args, " "))
	if err != nil {
		return reportErr(errOut, err)
	}
	return renderList(ctx, cfg, svc, view.CustomList{ID: list.ID}, list.Name, out, errOut)
}
