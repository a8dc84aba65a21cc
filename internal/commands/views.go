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
	"tick/internal/view"
)

func init() {
	Register(NewSmartCmd(view.Today))
	Register(NewSmartCmd(view.Next7Days))
	Register(NewSmartCmd(view.Overdue))
	Register(NewSmartCmd(view.All))
}

// SmartCmd prints one of the smart lists.
// Handles `tick` (no args, today), `tick today`, `tick next7`, `tick overdue` and `tick all`.
type SmartCmd struct {
	kind view.SmartKind
}

// NewSmartCmd returns the command for the smart list kind.
func NewSmartCmd(kind view.SmartKind) *SmartCmd {
	return &SmartCmd{kind: kind}
}

func (c *SmartCmd) Name() string { return view.SmartList{Kind: c.kind}.String() }

func (c *SmartCmd) Aliases() []string {
	switch c.kind {
	case view.Next7Days:
		return []string{"week"}
	case view.All:
		return []string{"inbox"}
	}
	return nil
}

func (c *SmartCmd) Synopsis() string {
	return "List " + view.Title(view.SmartList{Kind: c.kind}) + " tasks"
}

func (c *SmartCmd) Usage() string   { return "tick " + c.Name() }
func (c *SmartCmd) NeedsAuth() bool { return true }

func (c *SmartCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SmartCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	sel := view.SmartList{Kind: c.kind}
	return renderList(ctx, cfg, svc, sel, view.Title(sel), out, errOut)
}

// renderList prints a list view: title, date groups and numbered tasks.
func renderList(ctx context.Context, cfg *config.Config, svc service.Service, sel view.Selection, title string, out, errOut io.Writer) int {
	res, err := loadView(ctx, cfg, svc, sel)
	if err != nil {
		return reportErr(errOut, err)
	}
	gv := view.GroupTasks(res.Value, sel, cfg.Clock())

	staleNotice(cfg, out, res)
	output.FormatTitle(out, title)
	if output.FormatGroupedView(out, gv) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
