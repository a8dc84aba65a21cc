package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/output"
	"tick/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "List task lists" }
func (c *ListsCmd) Usage() string     { return "tick lists" }
func (c *ListsCmd) NeedsAuth() bool   { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	res, err := newFetcher(cfg).Lists(ctx, svc)
	if err != nil {
		return reportErr(errOut, err)
	}
	if len(res.Value) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no lists found")
		}
		return exitcode.Success
	}
	staleNotice(cfg, out, res)
	output.FormatLists(out, res.Value)
	return exitcode.Success
}
