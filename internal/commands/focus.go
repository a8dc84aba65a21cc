package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/focus"
	"tick/internal/output"
	"tick/internal/service"
	"tick/internal/tui/focusview"
)

func init() {
	Register(&FocusCmd{})
}

// FocusCmd runs a pomodoro timer. On a terminal it opens the interactive
// screen; otherwise, or with --plain, it prints one status line per second.
type FocusCmd struct {
	mode      string
	start     bool
	plain     bool
	newTicker focus.TickerFunc
}

// SetTicker replaces the one second ticker (for testing).
func (c *FocusCmd) SetTicker(fn focus.TickerFunc) {
	c.newTicker = fn
}

func (c *FocusCmd) Name() string      { return "focus" }
func (c *FocusCmd) Aliases() []string { return []string{"pomodoro"} }
func (c *FocusCmd) Synopsis() string  { return "Run a focus timer" }
func (c *FocusCmd) Usage() string {
	return "tick focus [--mode focus|short-break|long-break] [--start] [--plain]"
}
func (c *FocusCmd) NeedsAuth() bool { return false }

func (c *FocusCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.mode, "mode", "focus", "")
	fs.StringVar(&c.mode, "m", "focus", "")
	fs.BoolVar(&c.start, "start", false, "")
	fs.BoolVar(&c.plain, "plain", false, "")
}

func (c *FocusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	mode, err := focus.ParseMode(c.mode)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	d := focus.NewDriver(mode, c.newTicker)
	defer d.Close()

	if !c.plain && isTerminal(out) {
		if c.start {
			d.Toggle()
		}
		if err := focusview.Run(ctx, d, os.Stdin, out); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}
	return runPlainFocus(ctx, d, out)
}

// runPlainFocus always starts the countdown and prints every snapshot
// until the session completes or ctx ends.
func runPlainFocus(ctx context.Context, d *focus.Driver, out io.Writer) int {
	states, cancel := d.Subscribe()
	defer cancel()
	d.Toggle()

	for {
		select {
		case <-ctx.Done():
			return exitcode.Success
		case st, ok := <-states:
			if !ok {
				return exitcode.Success
			}
			output.FormatFocus(out, st)
			if st.Completed() {
				return exitcode.Success
			}
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
