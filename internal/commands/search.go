package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/output"
	"tick/internal/service"
)

func init() {
	Register(&SearchCmd{})
}

// SearchCmd implements the search command. Results are printed with their
// ids since they are not part of a numbered view.
type SearchCmd struct{}

func (c *SearchCmd) Name() string      { return "search" }
func (c *SearchCmd) Aliases() []string { return []string{"find"} }
func (c *SearchCmd) Synopsis() string  { return "Search tasks by title or description" }
func (c *SearchCmd) Usage() string     { return "tick search <query...>" }
func (c *SearchCmd) NeedsAuth() bool   { return true }

func (c *SearchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		fmt.Fprintln(errOut, "error: search query required")
		return exitcode.UserError
	}
	if cfg.Offline {
		fmt.Fprintln(errOut, "error: search is not available with --offline")
		return exitcode.UserError
	}

	tasks, err := svc.SearchTasks(ctx, query)
	if err != nil {
		return reportErr(errOut, err)
	}
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	for _, t := range tasks {
		output.FormatTaskID(out, t)
	}
	return exitcode.Success
}
