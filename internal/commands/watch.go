package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/output"
	"tick/internal/realtime"
	"tick/internal/service"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd prints task changes pushed by the server until interrupted.
type WatchCmd struct {
	max  int
	dial realtime.DialFunc
}

// SetDialer replaces the STOMP dialer (for testing).
func (c *WatchCmd) SetDialer(fn realtime.DialFunc) {
	c.dial = fn
}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Print task changes as they happen" }
func (c *WatchCmd) Usage() string     { return "tick watch [--max <n>]" }
func (c *WatchCmd) NeedsAuth() bool   { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.max, "max", 0, "")
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.Offline {
		fmt.Fprintln(errOut, "error: watch is not available with --offline")
		return exitcode.UserError
	}
	tp, ok := svc.(service.TokenProvider)
	if !ok {
		fmt.Fprintf(errOut, "error: watch is not supported by the %s backend\n", cfg.Settings.Backend)
		return exitcode.UserError
	}
	if cfg.Settings.WSURL == "" {
		fmt.Fprintln(errOut, "error: ws_url not configured")
		return exitcode.UserError
	}

	conn, err := realtime.Dial(ctx, realtime.Options{
		URL:    cfg.Settings.WSURL,
		Token:  tp.AccessToken,
		Logger: cfg.Logger,
		Dial:   c.dial,
	})
	if err != nil {
		return reportErr(errOut, err)
	}
	defer conn.Close()

	if !cfg.Quiet {
		fmt.Fprintf(errOut, "watching %s (ctrl-c to stop)\n", cfg.Settings.WSURL)
	}

	fetcher := newFetcher(cfg)
	seen := 0
	for ev := range conn.Events() {
		output.FormatEvent(out, ev)
		fetcher.Invalidate()
		seen++
		if c.max > 0 && seen >= c.max {
			break
		}
	}
	return exitcode.Success
}
