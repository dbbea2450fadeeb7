package analytics

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

type SeriesPoint struct {
	Date  string    `json:"date"`
	Start time.Time `json:"start"`
	Value float64   `json:"value"`
}

type Series struct {
	Label string        `json:"label"`
	Data  []SeriesPoint `json:"data"`
}

// TimeSpentSeries sums time spent, in minutes, per bucket of the period that
// contains now. Events without time spent are ignored.
func TimeSpentSeries(r Range, now time.Time, events []*types.ActivityEvent) Series {
	buckets := Buckets(r, now)
	sums := make([]int, len(buckets))
	for _, e := range events {
		if e == nil || e.TimeSpent == nil {
			continue
		}
		ts := e.Timestamp.In(now.Location())
		if i := bucketIndex(buckets, ts); i >= 0 {
			sums[i] += *e.TimeSpent
		}
	}
	points := make([]SeriesPoint, 0, len(buckets))
	for i, b := range buckets {
		points = append(points, SeriesPoint{
			Date:  b.Start.Format(time.DateOnly),
			Start: b.Start,
			Value: float64(sums[i]) / 60,
		})
	}
	return Series{Label: LabelTimeSeries, Data: points}
}

func bucketIndex(buckets []Window, t time.Time) int {
	lo, hi := 0, len(buckets)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case t.Before(buckets[mid].Start):
			hi = mid - 1
		case !t.Before(buckets[mid].End):
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

// LessonIDs returns the distinct lesson ids referenced by events, in first
// seen order.
func LessonIDs(events []*types.ActivityEvent) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, e := range events {
		if e == nil || e.LessonID == nil || *e.LessonID == uuid.Nil || seen[*e.LessonID] {
			continue
		}
		seen[*e.LessonID] = true
		out = append(out, *e.LessonID)
	}
	return out
}

// SubjectBreakdown accumulates minutes per subject. Events whose lesson is
// missing from subjects are skipped.
func SubjectBreakdown(events []*types.ActivityEvent, subjects map[uuid.UUID]string) map[string]float64 {
	out := map[string]float64{}
	for _, e := range events {
		if e == nil || e.LessonID == nil {
			continue
		}
		subject, ok := subjects[*e.LessonID]
		if !ok || subject == "" {
			continue
		}
		minutes := 0.0
		if e.TimeSpent != nil {
			minutes = float64(*e.TimeSpent) / 60
		}
		out[subject] += minutes
	}
	return out
}

// StreakDays counts consecutive days with activity ending on today's date.
func StreakDays(events []*types.ActivityEvent, today time.Time) int {
	loc := today.Location()
	days := map[string]struct{}{}
	for _, e := range events {
		if e != nil {
			days[e.Timestamp.In(loc).Format(time.DateOnly)] = struct{}{}
		}
	}
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	streak := 0
	for {
		if _, ok := days[day.Format(time.DateOnly)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}
