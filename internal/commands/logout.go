package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tick/internal/cache"
	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/logging"
	"tick/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string     { return "tick logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasCredentials() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveCredentials(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove credentials: %v\n", err)
		return exitcode.AuthError
	}
	// cached data belongs to the account that just signed out
	if err := cache.Open(cfg.CacheDir()).Invalidate(); err != nil {
		logging.OrNop(cfg.Logger).Warn("cache invalidate failed", "error", err)
	}

	return ok(cfg, out)
}
