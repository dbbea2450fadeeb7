package analytics

import (
	"math"
	"time"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"

	LabelTimeSpent        = "Time Spent"
	LabelLessonsCompleted = "Lessons Completed"
	LabelAverageScore     = "Average Score"
	LabelActiveDays       = "Active Days"
	LabelTimeSeries       = "Time Spent (minutes)"
)

// Metric is one dashboard tile. PreviousValue is the prior window's figure in
// the same unit as Value.
type Metric struct {
	Label           string  `json:"label"`
	Value           float64 `json:"value"`
	PreviousValue   float64 `json:"previous_value"`
	Unit            string  `json:"unit"`
	Change          float64 `json:"change"`
	ChangeDirection string  `json:"change_direction"`
}

// PeriodStats are the raw per-window figures the metrics compare.
type PeriodStats struct {
	TimeSpentSeconds int
	LessonsCompleted int
	ScoreSum         float64
	ScoreCount       int
	ActiveDays       int
}

func (s PeriodStats) AverageScore() float64 {
	if s.ScoreCount == 0 {
		return 0
	}
	return s.ScoreSum / float64(s.ScoreCount)
}

// Summarize folds events into PeriodStats. Dates for active days are taken in
// loc.
func Summarize(events []*types.ActivityEvent, loc *time.Location) PeriodStats {
	if loc == nil {
		loc = time.Local
	}
	var s PeriodStats
	days := map[string]struct{}{}
	for _, e := range events {
		if e == nil {
			continue
		}
		if e.TimeSpent != nil {
			s.TimeSpentSeconds += *e.TimeSpent
		}
		if e.Type == types.ActivityLessonCompletion {
			s.LessonsCompleted++
		}
		if e.Score != nil {
			s.ScoreSum += *e.Score
			s.ScoreCount++
		}
		days[e.Timestamp.In(loc).Format(time.DateOnly)] = struct{}{}
	}
	s.ActiveDays = len(days)
	return s
}

// PercentChange is (cur-prev)/prev*100, or 0 when prev is not positive.
func PercentChange(cur, prev float64) (float64, string) {
	if prev <= 0 {
		return 0, DirectionFlat
	}
	change := (cur - prev) / prev * 100
	switch {
	case change > 0:
		return change, DirectionUp
	case change < 0:
		return change, DirectionDown
	default:
		return 0, DirectionFlat
	}
}

// Metrics builds the four dashboard metrics in display order.
func Metrics(cur, prev PeriodStats) []Metric {
	build := func(label, unit string, shown, shownPrev, c, p float64) Metric {
		change, dir := PercentChange(c, p)
		return Metric{Label: label, Value: shown, PreviousValue: shownPrev, Unit: unit, Change: change, ChangeDirection: dir}
	}
	minutes := func(sec int) float64 { return math.Ceil(float64(sec) / 60) }
	round1 := func(v float64) float64 { return math.Round(v*10) / 10 }
	avg, prevAvg := cur.AverageScore(), prev.AverageScore()
	return []Metric{
		build(LabelTimeSpent, "min", minutes(cur.TimeSpentSeconds), minutes(prev.TimeSpentSeconds),
			float64(cur.TimeSpentSeconds), float64(prev.TimeSpentSeconds)),
		build(LabelLessonsCompleted, "", float64(cur.LessonsCompleted), float64(prev.LessonsCompleted),
			float64(cur.LessonsCompleted), float64(prev.LessonsCompleted)),
		build(LabelAverageScore, "%", round1(avg), round1(prevAvg),
			avg, prevAvg),
		build(LabelActiveDays, "days", float64(cur.ActiveDays), float64(prev.ActiveDays),
			float64(cur.ActiveDays), float64(prev.ActiveDays)),
	}
}
