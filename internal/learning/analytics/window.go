package analytics

import (
	"strings"
	"time"
)

type Range string

const (
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

// ParseRange falls back to week for anything it does not recognise.
func ParseRange(s string) Range {
	switch Range(strings.ToLower(strings.TrimSpace(s))) {
	case RangeDay:
		return RangeDay
	case RangeMonth:
		return RangeMonth
	case RangeYear:
		return RangeYear
	default:
		return RangeWeek
	}
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

type Windows struct {
	Current  Window
	Previous Window
}

// WindowsFor computes the current and comparison windows in now's location.
// The current window ends at now; the previous window is the whole preceding
// period.
func WindowsFor(r Range, now time.Time) Windows {
	start := PeriodStart(r, now)
	var prevStart time.Time
	switch r {
	case RangeDay:
		prevStart = start.AddDate(0, 0, -1)
	case RangeMonth:
		prevStart = start.AddDate(0, -1, 0)
	case RangeYear:
		prevStart = start.AddDate(-1, 0, 0)
	default:
		prevStart = start.AddDate(0, 0, -7)
	}
	return Windows{
		Current:  Window{Start: start, End: now},
		Previous: Window{Start: prevStart, End: start},
	}
}

// PeriodStart is midnight today, the most recent Monday, the 1st of the month
// or Jan 1, depending on r.
func PeriodStart(r Range, now time.Time) time.Time {
	loc := now.Location()
	y, m, d := now.Date()
	switch r {
	case RangeDay:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case RangeMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case RangeYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		offset := (int(now.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	}
}

// Buckets returns the chart buckets of the period containing now: 24 hours,
// 7 days, every day of the month, or 12 months.
func Buckets(r Range, now time.Time) []Window {
	start := PeriodStart(r, now)
	var (
		n    int
		step func(time.Time, int) time.Time
	)
	switch r {
	case RangeDay:
		n = 24
		step = func(t time.Time, i int) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), i, 0, 0, 0, t.Location())
		}
	case RangeMonth:
		n = DaysIn(now.Year(), now.Month())
		step = func(t time.Time, i int) time.Time { return t.AddDate(0, 0, i) }
	case RangeYear:
		n = 12
		step = func(t time.Time, i int) time.Time { return t.AddDate(0, i, 0) }
	default:
		n = 7
		step = func(t time.Time, i int) time.Time { return t.AddDate(0, 0, i) }
	}
	out := make([]Window, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Window{Start: step(start, i), End: step(start, i+1)})
	}
	return out
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
