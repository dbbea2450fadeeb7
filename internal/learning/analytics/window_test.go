package analytics

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestParseRangeFallsBackToWeek(t *testing.T) {
	cases := map[string]Range{
		"day": RangeDay, "week": RangeWeek, "month": RangeMonth, "year": RangeYear,
		" Month ": RangeMonth, "": RangeWeek, "decade": RangeWeek,
	}
	for in, want := range cases {
		if got := ParseRange(in); got != want {
			t.Fatalf("ParseRange(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMonthWindowInJanuaryUsesPreviousDecember(t *testing.T) {
	now := date(2024, time.January, 15, 10)
	w := WindowsFor(RangeMonth, now)
	if !w.Current.Start.Equal(date(2024, time.January, 1, 0)) || !w.Current.End.Equal(now) {
		t.Fatalf("current: %+v", w.Current)
	}
	if !w.Previous.Start.Equal(date(2023, time.December, 1, 0)) || !w.Previous.End.Equal(date(2024, time.January, 1, 0)) {
		t.Fatalf("previous: %+v", w.Previous)
	}
}

func TestWindows(t *testing.T) {
	// Thursday
	now := date(2024, time.March, 14, 16)
	cases := []struct {
		r                         Range
		start, prevStart, prevEnd time.Time
	}{
		{RangeDay, date(2024, 3, 14, 0), date(2024, 3, 13, 0), date(2024, 3, 14, 0)},
		{RangeWeek, date(2024, 3, 11, 0), date(2024, 3, 4, 0), date(2024, 3, 11, 0)},
		{RangeMonth, date(2024, 3, 1, 0), date(2024, 2, 1, 0), date(2024, 3, 1, 0)},
		{RangeYear, date(2024, 1, 1, 0), date(2023, 1, 1, 0), date(2024, 1, 1, 0)},
	}
	for _, tc := range cases {
		w := WindowsFor(tc.r, now)
		if !w.Current.Start.Equal(tc.start) || !w.Current.End.Equal(now) {
			t.Fatalf("%s current: %+v", tc.r, w.Current)
		}
		if !w.Previous.Start.Equal(tc.prevStart) || !w.Previous.End.Equal(tc.prevEnd) {
			t.Fatalf("%s previous: %+v", tc.r, w.Previous)
		}
	}
}

func TestWeekStartsOnMondayFromSunday(t *testing.T) {
	sunday := date(2024, time.March, 17, 23)
	if got := PeriodStart(RangeWeek, sunday); !got.Equal(date(2024, 3, 11, 0)) {
		t.Fatalf("got %v", got)
	}
	monday := date(2024, time.March, 18, 0)
	if got := PeriodStart(RangeWeek, monday); !got.Equal(monday) {
		t.Fatalf("got %v", got)
	}
}

func TestBucketCounts(t *testing.T) {
	cases := []struct {
		r    Range
		now  time.Time
		want int
	}{
		{RangeDay, date(2024, 3, 14, 16), 24},
		{RangeWeek, date(2024, 3, 14, 16), 7},
		{RangeMonth, date(2024, 2, 10, 9), 29},
		{RangeMonth, date(2023, 2, 10, 9), 28},
		{RangeMonth, date(2024, 12, 31, 9), 31},
		{RangeYear, date(2024, 6, 1, 0), 12},
	}
	for _, tc := range cases {
		b := Buckets(tc.r, tc.now)
		if len(b) != tc.want {
			t.Fatalf("%s %v: got %d buckets want %d", tc.r, tc.now, len(b), tc.want)
		}
		for i := 1; i < len(b); i++ {
			if !b[i].Start.Equal(b[i-1].End) {
				t.Fatalf("%s: gap between bucket %d and %d", tc.r, i-1, i)
			}
		}
	}
}

func TestYearBucketsEndAtNextJanuary(t *testing.T) {
	b := Buckets(RangeYear, date(2024, 6, 1, 0))
	if !b[11].Start.Equal(date(2024, 12, 1, 0)) || !b[11].End.Equal(date(2025, 1, 1, 0)) {
		t.Fatalf("last bucket: %+v", b[11])
	}
}
