// Package commands implements the tick subcommands and their registry.
package commands

import (
	"context"
	"flag"
	"io"

	"tick/internal/config"
	"tick/internal/service"
)

// Command is one tick subcommand.
type Command interface {
	Name() string
	Aliases() []string

	// Synopsis is the one-line summary shown by help.
	Synopsis() string

	// Usage is the argument syntax, starting with "tick <name>".
	Usage() string

	// NeedsAuth reports whether Run needs a backend. When false, svc is nil.
	NeedsAuth() bool

	// RegisterFlags adds the command's flags to fs and resets them to defaults.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes with the positional args left after flags and returns an
	// exit code. cfg is never nil.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}
