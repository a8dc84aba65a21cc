package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/service"
)

// Version is the application version. Set at build time with -ldflags.
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd implements the version command.
type VersionCmd struct {
	verbose bool
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "tick version [--verbose]" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	c.verbose = false
	fs.BoolVar(&c.verbose, "verbose", false, "")
	fs.BoolVar(&c.verbose, "v", false, "")
}

// SetVerbose sets the verbose flag (for testing).
func (c *VersionCmd) SetVerbose(v bool) { c.verbose = v }

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "tick %s\n", Version)
	if c.verbose {
		fmt.Fprintf(out, "go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "config:  %s\n", cfg.Dir)
		fmt.Fprintf(out, "backend: %s\n", cfg.Settings.Backend)
	}
	return exitcode.Success
}
