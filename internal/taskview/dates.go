// Package taskview holds the in-memory classification, grouping and sorting
// applied to fetched tasks before they are rendered. Every function takes the
// reference time explicitly.
package taskview

import (
	"fmt"
	"math"
	"time"
)

// startOfDay truncates t to midnight in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dayDiff returns the number of calendar days from a to b in loc.
func dayDiff(a, b time.Time, loc *time.Location) int {
	from := startOfDay(a, loc)
	to := startOfDay(b, loc)
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// startOfWeek returns the Sunday that starts t's week.
func startOfWeek(t time.Time, loc *time.Location) time.Time {
	day := startOfDay(t, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func startOfMonth(t time.Time, loc *time.Location) time.Time {
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

// IsToday reports whether t falls on now's calendar day.
func IsToday(t, now time.Time) bool {
	return dayDiff(now, t, now.Location()) == 0
}

// IsOverdue reports whether due is strictly in the past and not today.
func IsOverdue(due, now time.Time) bool {
	return due.Before(now) && !IsToday(due, now)
}

// FormatDueDate renders a due date relative to now.
func FormatDueDate(due, now time.Time) string {
	loc := now.Location()
	diff := dayDiff(now, due, loc)

	switch {
	case diff == -1:
		return "Overdue"
	case diff < -1:
		return fmt.Sprintf("%d days overdue", -diff)
	case diff == 0:
		return "Today"
	case diff == 1:
		return "Tomorrow"
	}

	local := due.In(loc)
	if local.Year() != now.Year() {
		return local.Format("Jan 2, 2006")
	}
	return local.Format("Jan 2")
}
