package util

import (
	"strings"
	"time"
)

const layout = "2006-01-02"

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func DateLte(t1, t2 time.Time) bool {
	return t1.Before(t2) || t1.Format(layout) == t2.Format(layout)
}

// ParseDate accepts either a plain date or an RFC3339 timestamp and returns
// the day at UTC midnight.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(layout, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), true
	}
	if len(value) > len(layout) {
		if t, err := time.Parse(layout, value[:len(layout)]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PeriodRange maps a lookback period label ("1mo", "1y", ...) onto a concrete
// [start, end] window ending now. Unknown labels default to one year.
func PeriodRange(period string, now time.Time) (time.Time, time.Time) {
	end := NewDate(now.Year(), int(now.Month()), now.Day())
	var start time.Time
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "1mo":
		start = end.AddDate(0, -1, 0)
	case "3mo":
		start = end.AddDate(0, -3, 0)
	case "6mo":
		start = end.AddDate(0, -6, 0)
	case "2y":
		start = end.AddDate(-2, 0, 0)
	case "5y":
		start = end.AddDate(-5, 0, 0)
	case "ytd":
		start = NewDate(now.Year(), 1, 1)
	case "max":
		start = end.AddDate(-10, 0, 0)
	default:
		start = end.AddDate(-1, 0, 0)
	}
	return start, end
}
