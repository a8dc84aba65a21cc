package output

import (
	"fmt"
	"io"

	"github.com/gosuri/uitable"

	"tick/internal/service"
	"tick/internal/view"
)

// FormatLists prints task lists as a table: ID, NAME, TASKS.
func FormatLists(w io.Writer, lists []service.TaskList) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "NAME", "TASKS")
	for _, l := range lists {
		tbl.AddRow(l.ID, normalizeListTitle(l.Name), l.TaskCount)
	}
	fmt.Fprintln(w, tbl)
}

// FormatHabits prints the week rows of every habit followed by the summary.
// Day cells are "x" done, "." open and "-" not reached yet.
func FormatHabits(w io.Writer, rows []view.HabitRow, stats view.HabitStats) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "HABIT", "M", "T", "W", "T", "F", "S", "S", "STREAK", "TOTAL")
	for _, r := range rows {
		cells := []interface{}{r.Habit.ID, normalizeListTitle(r.Habit.Name)}
		for _, d := range r.Days {
			cells = append(cells, habitCell(d))
		}
		cells = append(cells, r.CurrentStreak, r.TotalCompletions)
		tbl.AddRow(cells...)
	}
	fmt.Fprintln(w, tbl)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d habits, %d done today, best streak %d, %d completions\n",
		stats.Habits, stats.CompletedToday, stats.BestStreak, stats.TotalCompletions)
}

func habitCell(d view.HabitDay) string {
	switch {
	case d.Completed:
		return "x"
	case d.Future:
		return "-"
	default:
		return "."
	}
}
