package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"tick/internal/config"
	"tick/internal/exitcode"
	"tick/internal/output"
	"tick/internal/service"
	"tick/internal/view"
)

func init() {
	Register(&HabitsCmd{})
	Register(&HabitCmd{})
}

// HabitsCmd prints this week's habit tracker.
type HabitsCmd struct{}

func (c *HabitsCmd) Name() string      { return "habits" }
func (c *HabitsCmd) Aliases() []string { return nil }
func (c *HabitsCmd) Synopsis() string  { return "Show this week's habits" }
func (c *HabitsCmd) Usage() string     { return "tick habits" }
func (c *HabitsCmd) NeedsAuth() bool   { return true }

func (c *HabitsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HabitsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	res, err := newFetcher(cfg).Habits(ctx, svc)
	if err != nil {
		return reportErr(errOut, err)
	}

	staleNotice(cfg, out, res)
	output.FormatTitle(out, view.Title(view.Module{Kind: view.Habits}))
	if len(res.Value) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no habits found")
		}
		return exitcode.Success
	}

	now := cfg.Clock()
	rows := make([]view.HabitRow, len(res.Value))
	for i, h := range res.Value {
		rows[i] = view.HabitWeek(h, now)
	}
	output.FormatHabits(out, rows, view.Summarize(rows, now))
	return exitcode.Success
}

// HabitCmd changes habits: add, toggle and rm.
type HabitCmd struct {
	date string
}

// SetDate sets the date toggled (for testing).
func (c *HabitCmd) SetDate(date string) {
	c.date = date
}

func (c *HabitCmd) Name() string      { return "habit" }
func (c *HabitCmd) Aliases() []string { return nil }
func (c *HabitCmd) Synopsis() string  { return "Add, toggle or remove a habit" }
func (c *HabitCmd) Usage() string {
	return "tick habit [--date YYYY-MM-DD] add|toggle|rm <name...|id>"
}
func (c *HabitCmd) NeedsAuth() bool { return true }

func (c *HabitCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
}

func (c *HabitCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: habit action required (add, toggle, rm)")
		return exitcode.UserError
	}
	action, rest := args[0], strings.TrimSpace(strings.Join(args[1:], " "))
	if rest == "" {
		fmt.Fprintln(errOut, "error: habit name required")
		return exitcode.UserError
	}
	if refuseOffline(cfg, errOut) {
		return exitcode.UserError
	}

	switch action {
	case "add":
		if _, err := svc.CreateHabit(ctx, rest); err != nil {
			return reportErr(errOut, err)
		}
	case "toggle":
		date, err := habitDate(c.date, cfg.Clock())
		if err != nil {
			return reportErr(errOut, err)
		}
		h, err := findHabit(ctx, svc, rest)
		if err != nil {
			return reportErr(errOut, err)
		}
		if _, err := svc.ToggleHabit(ctx, h.ID, date); err != nil {
			return reportErr(errOut, err)
		}
	case "rm":
		h, err := findHabit(ctx, svc, rest)
		if err != nil {
			return reportErr(errOut, err)
		}
		if err := svc.DeleteHabit(ctx, h.ID); err != nil {
			return reportErr(errOut, err)
		}
	default:
		fmt.Fprintf(errOut, "error: unknown habit action: %s\n", action)
		return exitcode.UserError
	}
	newFetcher(cfg).Invalidate()
	return ok(cfg, out)
}

// habitDate validates the --date value. Empty means today; future days
// cannot be toggled.
func habitDate(s string, now time.Time) (string, error) {
	today := view.StartOfDay(now)
	if s == "" {
		return today.Format(service.DateLayout), nil
	}
	d, err := time.ParseInLocation(service.DateLayout, s, now.Location())
	if err != nil {
		return "", userErrorf("invalid date: %s (use YYYY-MM-DD)", s)
	}
	if d.After(today) {
		return "", userErrorf("cannot toggle a future day: %s", s)
	}
	return d.Format(service.DateLayout), nil
}

// findHabit matches ref against habit ids, then case-insensitive names.
func findHabit(ctx context.Context, svc service.Service, ref string) (service.Habit, error) {
	habits, err := svc.Habits(ctx)
	if err != nil {
		return service.Habit{}, err
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, h := range habits {
			if h.ID == id {
				return h, nil
			}
		}
	}
	var matches []service.Habit
	for _, h := range habits {
		if strings.EqualFold(strings.TrimSpace(h.Name), ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return service.Habit{}, userErrorf("habit not found: %s", ref)
	case 1:
		return matches[0], nil
	}
	return service.Habit{}, userErrorf("ambiguous habit name: %s", ref)
}
