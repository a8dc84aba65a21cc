package view

import (
	"time"

	"tick/internal/service"
)

// HabitDay is one day of a habit's week row.
type HabitDay struct {
	Date      time.Time
	Completed bool
	Future    bool // days after today cannot be toggled
}

// HabitRow is a habit with its Monday-first week and stats.
type HabitRow struct {
	Habit            service.Habit
	Days             [7]HabitDay
	TotalCompletions int
	CurrentStreak    int
}

// WeekStart returns local midnight of the Monday of now's week.
func WeekStart(now time.Time) time.Time {
	today := StartOfDay(now)
	offset := (int(today.Weekday()) + 6) % 7
	return today.AddDate(0, 0, -offset)
}

// HabitWeek builds the row for h in the week containing now.
func HabitWeek(h service.Habit, now time.Time) HabitRow {
	done := make(map[string]bool, len(h.CompletedDates))
	for _, d := range h.CompletedDates {
		done[d] = true
	}

	today := StartOfDay(now)
	row := HabitRow{Habit: h, TotalCompletions: len(h.CompletedDates)}
	start := WeekStart(now)
	for i := range row.Days {
		d := start.AddDate(0, 0, i)
		row.Days[i] = HabitDay{
			Date:      d,
			Completed: done[d.Format(service.DateLayout)],
			Future:    d.After(today),
		}
	}
	row.CurrentStreak = streak(done, today)
	return row
}

// streak counts consecutive completed days ending today, or ending
// yesterday when today is not completed yet.
func streak(done map[string]bool, today time.Time) int {
	d := today
	if !done[d.Format(service.DateLayout)] {
		d = d.AddDate(0, 0, -1)
	}
	n := 0
	for done[d.Format(service.DateLayout)] {
		n++
		d = d.AddDate(0, 0, -1)
	}
	return n
}

// HabitStats aggregates rows for the summary line.
type HabitStats struct {
	Habits           int
	TotalCompletions int
	CompletedToday   int
	BestStreak       int
}

// Summarize computes HabitStats over rows relative to now.
func Summarize(rows []HabitRow, now time.Time) HabitStats {
	today := StartOfDay(now)
	s := HabitStats{Habits: len(rows)}
	for _, r := range rows {
		s.TotalCompletions += r.TotalCompletions
		if r.CurrentStreak > s.BestStreak {
			s.BestStreak = r.CurrentStreak
		}
		for _, d := range r.Days {
			if d.Date.Equal(today) && d.Completed {
				s.CompletedToday++
			}
		}
	}
	return s
}
