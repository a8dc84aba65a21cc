package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tick help [command]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, helpText)
		return exitcode.Success
	}

	cmd, ok := DefaultRegistry.Find(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	fmt.Fprintf(out, "Usage: %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
	}
	return exitcode.Success
}

const helpText = `Usage:
  tick                                         Show today's tasks
  tick today|next7|overdue|all                 Show a smart list
  tick list <list-name|id>                     Show the tasks of a list
  tick matrix                                  Show the Eisenhower matrix
  tick calendar [YYYY-MM]                      Show a month calendar
  tick search <query...>
  tick add [--list <list>] [--priority <p>] [--due <date>] [--quadrant q1-q4] [--today] <title...>
  tick done [--view <view>] [--undo] <ref...>
  tick edit [--view <view>] [--title <t>] [--desc <d>] [--priority <p>] [--due <date>|--no-due] [--list <list>] <ref>
  tick rm [--view <view>] <ref...>
  tick lists
  tick createlist <name...>
  tick rmlist [--force] <list-name|id>
  tick habits
  tick habit [--date YYYY-MM-DD] add|toggle|rm <name...|id>
  tick focus [--mode focus|short-break|long-break] [--start] [--plain]
  tick watch [--max <n>]
  tick login [--email <email>] [--register --name <name>]
  tick logout
  tick whoami
  tick help [command]
  tick version [--verbose]

Task refs:
  N      position in the view given by --view (default today)
  #ID    task id

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
  --offline        Read from the local cache only
`
