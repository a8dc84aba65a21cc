// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"tick/internal/focus"
	"tick/internal/realtime"
	"tick/internal/service"
	"tick/internal/view"
)

const (
	// ListSeparator is the separator line around view titles.
	ListSeparator = "------------"
)

var (
	titleStyle   = color.New(color.Bold)
	overdueStyle = color.New(color.FgRed, color.Bold)
	todayStyle   = color.New(color.FgGreen, color.Bold)
	groupStyle   = color.New(color.Bold, color.Underline)
	faintStyle   = color.New(color.Faint)
	doneStyle    = color.New(color.Faint, color.CrossedOut)
)

// FormatTitle prints a view heading between separator lines.
func FormatTitle(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	titleStyle.Fprintln(w, normalizeListTitle(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatTask formats a numbered task line.
// Format: "{N:>4}  [ ] {TITLE}[ !!!]\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	title := normalizeTitle(task.Title)
	if task.Completed() {
		title = doneStyle.Sprint(title)
	}
	fmt.Fprintf(w, "%4d  %s %s%s\n", num, checkbox(task.Status), title, priorityMark(task.Priority))
}

// FormatTaskID formats a task line keyed by backend id instead of position.
// Format: "#{ID}  [ ] {TITLE}[ !!!]\n"
func FormatTaskID(w io.Writer, task service.Task) {
	title := normalizeTitle(task.Title)
	if task.Completed() {
		title = doneStyle.Sprint(title)
	}
	fmt.Fprintf(w, "#%s  %s %s%s\n", task.ID, checkbox(task.Status), title, priorityMark(task.Priority))
}

// FormatGroupHeader prints a group label with its task count.
func FormatGroupHeader(w io.Writer, g view.Group) {
	style := groupStyle
	switch g.Kind {
	case view.BucketOverdue:
		style = overdueStyle
	case view.BucketToday:
		style = todayStyle
	}
	fmt.Fprintf(w, "%s %s\n", style.Sprint(g.Label()), faintStyle.Sprintf("(%d)", len(g.Tasks)))
}

// FormatGroupedView prints every group with continuous task numbering
// starting at 1. The single group of ungrouped views has no header.
// Returns the number of tasks printed.
func FormatGroupedView(w io.Writer, gv view.GroupedView) int {
	n := 0
	for i, g := range gv {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if g.Kind != view.BucketAll {
			FormatGroupHeader(w, g)
		}
		for _, t := range g.Tasks {
			n++
			FormatTask(w, n, t)
		}
	}
	return n
}

// FormatMatrix prints the four quadrants in display order, numbering tasks
// continuously across them.
func FormatMatrix(w io.Writer, m view.MatrixQuadrants) {
	n := 0
	for i, q := range view.Quadrants {
		if i > 0 {
			fmt.Fprintln(w)
		}
		tasks := m.Get(q)
		fmt.Fprintf(w, "%s  %s %s\n", groupStyle.Sprint(q.Title()), q.Subtitle(), faintStyle.Sprintf("(%d)", len(tasks)))
		if len(tasks) == 0 {
			faintStyle.Fprintln(w, "      none")
			continue
		}
		for _, t := range tasks {
			n++
			FormatTask(w, n, t)
		}
	}
}

// FormatStale prints the notice shown above data served from the cache.
func FormatStale(w io.Writer, storedAt time.Time) {
	faintStyle.Fprintf(w, "(cached %s)\n", storedAt.Format("2006-01-02 15:04"))
}

// FormatFocus prints one status line of a focus session.
func FormatFocus(w io.Writer, st focus.State) {
	status := "paused"
	switch {
	case st.Completed():
		status = "done"
	case st.Running:
		status = "running"
	}
	elapsed := int((1 - st.Progress()) * 100)
	fmt.Fprintf(w, "%-11s  %s  %3d%%  %s\n", st.Mode.Label(), st.Clock(), elapsed, status)
}

// FormatEvent prints a pushed task change.
func FormatEvent(w io.Writer, ev realtime.Event) {
	fmt.Fprintf(w, "%-6s  #%s  %s\n", ev.Action, ev.Task.ID, normalizeTitle(ev.Task.Title))
}

// FormatUser prints the signed-in account.
func FormatUser(w io.Writer, u service.User) {
	if u.Name != "" {
		fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
	} else {
		fmt.Fprintln(w, u.Email)
	}
	if u.Timezone != "" {
		fmt.Fprintf(w, "timezone: %s\n", u.Timezone)
	}
}

func checkbox(s service.Status) string {
	switch s {
	case service.StatusCompleted:
		return "[x]"
	case service.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func priorityMark(p service.Priority) string {
	switch p {
	case service.PriorityHigh:
		return " " + overdueStyle.Sprint("!!!")
	case service.PriorityMedium:
		return " !!"
	case service.PriorityLow:
		return " !"
	default:
		return ""
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
