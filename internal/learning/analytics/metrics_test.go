package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

func event(typ string, ts time.Time, timeSpent int, score *float64) *types.ActivityEvent {
	var spent *int
	if timeSpent > 0 {
		v := timeSpent
		spent = &v
	}
	return types.NewActivityEvent(uuid.Nil, typ, ts, nil, spent, score, nil)
}

func score(v float64) *float64 { return &v }

func metricByLabel(t *testing.T, ms []Metric, label string) Metric {
	t.Helper()
	for _, m := range ms {
		if m.Label == label {
			return m
		}
	}
	t.Fatalf("metric %q missing", label)
	return Metric{}
}

func TestWeekLessonsCompletedScenario(t *testing.T) {
	now := date(2024, time.March, 14, 16)
	w := WindowsFor(RangeWeek, now)
	cur := []*types.ActivityEvent{
		event(types.ActivityLessonCompletion, w.Current.Start.Add(2*time.Hour), 0, nil),
		event(types.ActivityLessonCompletion, w.Current.Start.Add(26*time.Hour), 0, nil),
		event(types.ActivityLessonCompletion, w.Current.Start.Add(50*time.Hour), 0, nil),
		event(types.ActivityQuestionAsked, w.Current.Start.Add(3*time.Hour), 0, nil),
		event(types.ActivityQuestionAsked, w.Current.Start.Add(4*time.Hour), 0, nil),
	}
	prev := []*types.ActivityEvent{
		event(types.ActivityLessonCompletion, w.Previous.Start.Add(time.Hour), 0, nil),
	}
	ms := Metrics(Summarize(cur, time.UTC), Summarize(prev, time.UTC))
	m := metricByLabel(t, ms, LabelLessonsCompleted)
	if m.Value != 3 || m.PreviousValue != 1 || m.Change != 200.0 || m.ChangeDirection != DirectionUp {
		t.Fatalf("unexpected metric: %+v", m)
	}
}

func TestPercentChangeBoundaries(t *testing.T) {
	cases := []struct {
		cur, prev float64
		change    float64
		dir       string
	}{
		{5, 0, 0, DirectionFlat},
		{0, 0, 0, DirectionFlat},
		{2, 4, -50, DirectionDown},
		{4, 4, 0, DirectionFlat},
		{6, 4, 50, DirectionUp},
	}
	for _, tc := range cases {
		c, d := PercentChange(tc.cur, tc.prev)
		if c != tc.change || d != tc.dir {
			t.Fatalf("PercentChange(%v,%v) = %v,%s", tc.cur, tc.prev, c, d)
		}
	}
}

func TestMetricsOrderUnitsAndRounding(t *testing.T) {
	base := date(2024, time.March, 11, 9)
	cur := []*types.ActivityEvent{
		event(types.ActivityProgressUpdate, base, 61, nil),
		event(types.ActivityLessonCompletion, base.Add(24*time.Hour), 30, score(80)),
		event(types.ActivityLessonCompletion, base.Add(24*time.Hour+time.Minute), 0, score(85.5)),
		event(types.ActivityLessonCompletion, base.Add(48*time.Hour), 0, score(90)),
	}
	ms := Metrics(Summarize(cur, time.UTC), PeriodStats{})
	wantLabels := []string{LabelTimeSpent, LabelLessonsCompleted, LabelAverageScore, LabelActiveDays}
	wantUnits := []string{"min", "", "%", "days"}
	for i := range ms {
		if ms[i].Label != wantLabels[i] || ms[i].Unit != wantUnits[i] {
			t.Fatalf("metric %d: %+v", i, ms[i])
		}
		if ms[i].ChangeDirection != DirectionFlat || ms[i].Change != 0 {
			t.Fatalf("metric %d should be flat against an empty period: %+v", i, ms[i])
		}
	}
	if ms[0].Value != 2 {
		t.Fatalf("91 seconds should ceil to 2 minutes, got %v", ms[0].Value)
	}
	if ms[2].Value != 85.2 {
		t.Fatalf("average score: got %v", ms[2].Value)
	}
	if ms[3].Value != 3 {
		t.Fatalf("active days: got %v", ms[3].Value)
	}
}

func TestAverageScoreIgnoresEventsWithoutScore(t *testing.T) {
	s := Summarize([]*types.ActivityEvent{
		event(types.ActivityLessonCompletion, date(2024, 1, 1, 0), 0, score(50)),
		event(types.ActivityProgressUpdate, date(2024, 1, 1, 1), 10, nil),
	}, time.UTC)
	if math.Abs(s.AverageScore()-50) > 1e-9 {
		t.Fatalf("got %v", s.AverageScore())
	}
	if (PeriodStats{}).AverageScore() != 0 {
		t.Fatalf("empty average should be 0")
	}
}

func TestActiveDaysUseLocation(t *testing.T) {
	east := time.FixedZone("UTC+3", 3*3600)
	events := []*types.ActivityEvent{
		event(types.ActivityProgressUpdate, date(2024, 1, 1, 22), 0, nil),
		event(types.ActivityProgressUpdate, date(2024, 1, 1, 20), 0, nil),
	}
	if got := Summarize(events, time.UTC).ActiveDays; got != 1 {
		t.Fatalf("utc: got %d", got)
	}
	if got := Summarize(events, east).ActiveDays; got != 2 {
		t.Fatalf("utc+3: got %d", got)
	}
}
