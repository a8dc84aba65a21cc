package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/output"
	"tick/internal/service"
	"tick/internal/view"
)

func init() {
	Register(&CalendarCmd{})
}

// CalendarCmd prints a month grid with the tasks due in that month.
type CalendarCmd struct{}

func (c *CalendarCmd) Name() string      { return "calendar" }
func (c *CalendarCmd) Aliases() []string { return []string{"cal"} }
func (c *CalendarCmd) Synopsis() string  { return "Show a month calendar" }
func (c *CalendarCmd) Usage() string     { return "tick calendar [YYYY-MM]" }
func (c *CalendarCmd) NeedsAuth() bool   { return true }

func (c *CalendarCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CalendarCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	now := cfg.Clock()
	month := now
	if len(args) > 0 {
		m, err := time.ParseInLocation("2006-01", args[0], now.Location())
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid month: %s (use YYYY-MM)\n", args[0])
			return exitcode.UserError
		}
		month = m
	}

	res, err := loadView(ctx, cfg, svc, view.Module{Kind: view.Calendar})
	if err != nil {
		return reportErr(errOut, err)
	}

	staleNotice(cfg, out, res)
	output.FormatCalendar(out, view.BuildMonth(res.Value, month, now))
	return exitcode.Success
}
