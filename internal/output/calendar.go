package output

import (
	"fmt"
	"io"
	"strings"

	"tick/internal/view"
)

// calendarWidth is the width of one week row, e.g. "11 12 13 14 15 16 17".
const calendarWidth = len("11 12 13 14 15 16 17")

// FormatCalendar prints a month grid followed by the agenda of the days
// that have tasks. Days with open tasks are marked with '*'.
func FormatCalendar(w io.Writer, grid view.MonthGrid) {
	title := grid.Month.Format("January 2006")
	mid := (calendarWidth - len(title)) / 2
	if mid < 0 {
		mid = 0
	}
	titleStyle.Fprintf(w, "%s%s\n", strings.Repeat(" ", mid), title)
	fmt.Fprintln(w, "Su Mo Tu We Th Fr Sa")

	for _, week := range grid.Weeks {
		fmt.Fprintln(w, strings.TrimRight(weekLine(week), " "))
	}

	printed := false
	for _, week := range grid.Weeks {
		for _, d := range week {
			if !d.InMonth || len(d.Tasks) == 0 {
				continue
			}
			fmt.Fprintln(w)
			header := d.Date.Format("Mon Jan 2")
			if d.IsToday {
				header = todayStyle.Sprint(header + " (today)")
			} else {
				header = groupStyle.Sprint(header)
			}
			fmt.Fprintln(w, header)
			for _, t := range d.Tasks {
				title := normalizeTitle(t.Title)
				if t.Completed() {
					title = doneStyle.Sprint(title)
				}
				fmt.Fprintf(w, "      %s %s%s\n", checkbox(t.Status), title, priorityMark(t.Priority))
			}
			printed = true
		}
	}
	if !printed {
		fmt.Fprintln(w)
		faintStyle.Fprintln(w, "no tasks this month")
	}
}

// weekLine renders one week. A day with open tasks is followed by '*' in
// place of the separating space.
func weekLine(week [7]view.Day) string {
	var b strings.Builder
	for i, d := range week {
		b.WriteString(dayCell(d))
		if d.InMonth && hasOpen(d) {
			b.WriteByte('*')
		} else if i < len(week)-1 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func dayCell(d view.Day) string {
	if !d.InMonth {
		return "  "
	}
	cell := fmt.Sprintf("%2d", d.Date.Day())
	switch {
	case d.IsToday:
		return todayStyle.Sprint(cell)
	case hasOpen(d):
		return titleStyle.Sprint(cell)
	}
	return cell
}

func hasOpen(d view.Day) bool {
	for _, t := range d.Tasks {
		if !t.Completed() {
			return true
		}
	}
	return false
}
