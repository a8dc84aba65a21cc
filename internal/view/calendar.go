package view

import (
	"time"

	"tick/internal/service"
)

// Day is one cell of the month grid.
type Day struct {
	Date    time.Time
	InMonth bool
	IsToday bool
	Tasks   []service.Task
}

// MonthGrid is a month laid out in Sunday-first weeks, padded with the
// trailing and leading days of the neighbouring months.
type MonthGrid struct {
	Month time.Time // first day of the month, local midnight
	Weeks [][7]Day
}

// BuildMonth lays out the month containing month. Tasks are placed on the
// calendar day of their due date in now's location; completed tasks are
// kept so they can be struck through.
func BuildMonth(tasks []service.Task, month, now time.Time) MonthGrid {
	loc := now.Location()
	y, m, _ := month.In(loc).Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	byDay := make(map[string][]service.Task)
	for _, t := range tasks {
		due, ok := t.DueIn(loc)
		if !ok {
			continue
		}
		k := due.Format(service.DateLayout)
		byDay[k] = append(byDay[k], t)
	}

	today := StartOfDay(now)
	grid := MonthGrid{Month: first}
	var week [7]Day
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		week[i] = Day{
			Date:    d,
			InMonth: d.Month() == m,
			IsToday: d.Equal(today),
			Tasks:   byDay[d.Format(service.DateLayout)],
		}
		i++
		if i == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = [7]Day{}
			i = 0
		}
	}
	return grid
}
