// Package schedule computes the next occurrence of repeatable tasks.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/tracker-api/internal/models"
)

var (
	ErrUnknownFrequency  = errors.New("unknown repeat frequency")
	ErrMissingCustomDays = errors.New("custom frequency requires a positive day count")
)

// Rule describes how a repeatable task recurs.
type Rule struct {
	Frequency models.RepeatFrequency
	// Interval multiplies the frequency step; values below 1 mean 1.
	Interval int
	// CustomDays is the day step for RepeatCustom.
	CustomDays int
}

// RuleFor builds the recurrence rule stored on a task.
func RuleFor(task *models.Task) (Rule, error) {
	if task.RepeatFrequency == nil {
		return Rule{}, ErrUnknownFrequency
	}
	rule := Rule{Frequency: *task.RepeatFrequency, Interval: 1}
	if task.RepeatInterval != nil {
		rule.Interval = *task.RepeatInterval
	}
	if task.RepeatCustomDays != nil {
		rule.CustomDays = *task.RepeatCustomDays
	}
	return rule, nil
}

// Next returns the occurrence following current. Calendar-month and
// calendar-year steps use time.AddDate normalization, so Jan 31 plus one
// month lands in early March.
func (r Rule) Next(current time.Time) (time.Time, error) {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	switch r.Frequency {
	case models.RepeatDaily:
		return current.AddDate(0, 0, interval), nil
	case models.RepeatWeekly:
		return current.AddDate(0, 0, 7*interval), nil
	case models.RepeatBiweekly:
		return current.AddDate(0, 0, 14*interval), nil
	case models.RepeatMonthly:
		return current.AddDate(0, interval, 0), nil
	case models.RepeatYearly:
		return current.AddDate(interval, 0, 0), nil
	case models.RepeatCustom:
		if r.CustomDays < 1 {
			return time.Time{}, ErrMissingCustomDays
		}
		return current.AddDate(0, 0, r.CustomDays*interval), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, r.Frequency)
	}
}

// NextOccurrence is shorthand for Rule{Frequency: freq, Interval: interval}.Next(current).
func NextOccurrence(current time.Time, freq models.RepeatFrequency, interval int) (time.Time, error) {
	return Rule{Frequency: freq, Interval: interval}.Next(current)
}
