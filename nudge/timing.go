package nudge

import (
	"math"
	"time"
)

// ClassifyTiming places daysSince relative to the category window moved by
// shift days.
func ClassifyTiming(daysSince int, category InteractionType, shift int) TimingState {
	w := ShiftedWindow(category, shift)
	if daysSince < w.Min {
		return TimingTooEarly
	}
	if daysSince > w.Max {
		return TimingLate
	}
	return TimingOptimal
}

// DaysSince is the calendar-day difference between today and last, using UTC
// dates. It is negative when last is after today.
func DaysSince(today, last time.Time) int {
	hours := civilDay(today).Sub(civilDay(last)).Hours()
	return int(math.Round(hours / 24))
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
