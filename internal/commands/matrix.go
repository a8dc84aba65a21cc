package commands

import (
	"context"
	"flag"
	"io"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/output"
	"tick/internal/service"
	"tick/internal/view"
)

func init() {
	Register(&MatrixCmd{})
}

// MatrixCmd prints open tasks in the four priority quadrants.
type MatrixCmd struct{}

func (c *MatrixCmd) Name() string      { return "matrix" }
func (c *MatrixCmd) Aliases() []string { return nil }
func (c *MatrixCmd) Synopsis() string  { return "Show the Eisenhower matrix" }
func (c *MatrixCmd) Usage() string     { return "tick matrix" }
func (c *MatrixCmd) NeedsAuth() bool   { return true }

func (c *MatrixCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MatrixCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sel := view.Module{Kind: view.Matrix}
	res, err := loadView(ctx, cfg, svc, sel)
	if err != nil {
		return reportErr(errOut, err)
	}

	staleNotice(cfg, out, res)
	output.FormatTitle(out, view.Title(sel))
	output.FormatMatrix(out, view.Bucket(res.Value))
	return exitcode.Success
}
