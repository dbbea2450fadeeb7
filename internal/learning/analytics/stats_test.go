package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

func TestSortAndPageCompleted(t *testing.T) {
	d1, d2 := date(2024, 1, 1, 0), date(2024, 2, 1, 0)
	recs := []types.CompletedLessonRecord{
		{LessonID: uuid.New(), CompletionDate: &d1},
		{LessonID: uuid.New()},
		{LessonID: uuid.New(), CompletionDate: &d2},
	}
	sorted := SortCompleted(recs)
	if sorted[0].LessonID != recs[2].LessonID || sorted[1].LessonID != recs[0].LessonID || sorted[2].LessonID != recs[1].LessonID {
		t.Fatalf("unexpected order")
	}
	if recs[0].CompletionDate != &d1 {
		t.Fatalf("input was modified")
	}
	if got := Page(sorted, 1, 1); len(got) != 1 || got[0].LessonID != recs[0].LessonID {
		t.Fatalf("page: %+v", got)
	}
	if got := Page(sorted, 10, 5); len(got) != 0 {
		t.Fatalf("expected empty page")
	}
}

func TestCompletionStats(t *testing.T) {
	math1 := &types.Lesson{ID: uuid.New(), Subject: "Mathematics", Difficulty: "beginner"}
	math2 := &types.Lesson{ID: uuid.New(), Subject: "Mathematics", Difficulty: "advanced"}
	phys := &types.Lesson{ID: uuid.New(), Subject: "Physics", Difficulty: "intermediate"}
	gone := uuid.New()
	now := date(2024, 3, 14, 18)
	s80, s90 := 80.0, 90.0

	st := &types.ProgressState{
		CompletedLessons: []types.CompletedLessonRecord{
			{LessonID: math1.ID, Completed: true, Score: &s80, TimeSpent: 100},
			{LessonID: math2.ID, Completed: true, TimeSpent: 50},
			{LessonID: phys.ID, Completed: true, Score: &s90, TimeSpent: 10},
			{LessonID: gone, Completed: true, TimeSpent: 5},
		},
		TotalTimeSpent: 165,
		LastActive:     &now,
	}
	got := CompletionStatsFor(StatsInput{
		State:          st,
		Lessons:        map[uuid.UUID]*types.Lesson{math1.ID: math1, math2.ID: math2, phys.ID: phys},
		CatalogTotal:   8,
		SubjectTotals:  map[string]int64{"Mathematics": 4, "Physics": 1},
		RecentActivity: []*types.ActivityEvent{event(types.ActivityProgressUpdate, date(2024, 3, 14, 9), 0, nil)},
		Achievements:   2,
		Now:            now,
	})

	if got.TotalLessonsCompleted != 4 || got.TotalLessonsAvailable != 8 || got.OverallCompletionRate != 50 {
		t.Fatalf("totals: %+v", got)
	}
	if got.AverageScore == nil || math.Abs(*got.AverageScore-85) > 1e-9 {
		t.Fatalf("average score: %v", got.AverageScore)
	}
	if len(got.Subjects) != 2 || got.Subjects[0].Subject != "Mathematics" {
		t.Fatalf("subjects: %+v", got.Subjects)
	}
	m := got.Subjects[0]
	if m.LessonsCompleted != 2 || m.TotalLessons != 4 || m.CompletionRate != 50 || m.TotalTimeSpent != 150 || *m.AverageScore != 80 {
		t.Fatalf("math subject: %+v", m)
	}
	if got.DifficultyDistribution["beginner"] != 1 || got.DifficultyDistribution["advanced"] != 1 || got.DifficultyDistribution["intermediate"] != 1 {
		t.Fatalf("difficulty: %v", got.DifficultyDistribution)
	}
	if got.StreakDays != 1 || got.AchievementsEarned != 2 || got.TotalTimeSpent != 165 {
		t.Fatalf("misc: %+v", got)
	}
}

func TestCompletionStatsWithoutProgress(t *testing.T) {
	got := CompletionStatsFor(StatsInput{CatalogTotal: 10, Now: time.Now()})
	if got.TotalLessonsCompleted != 0 || got.AverageScore != nil || got.Subjects == nil || got.DifficultyDistribution == nil {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestCompletedDetailsSkipsMissingLessons(t *testing.T) {
	l := &types.Lesson{ID: uuid.New(), Title: "Loops", Subject: "CS", Topic: "Control flow", Difficulty: "weird"}
	now := date(2024, 3, 14, 0)
	got := CompletedDetails([]types.CompletedLessonRecord{
		{LessonID: l.ID, TimeSpent: 10},
		{LessonID: uuid.New(), TimeSpent: 20},
	}, map[uuid.UUID]*types.Lesson{l.ID: l}, now)
	if len(got) != 1 {
		t.Fatalf("got %d details", len(got))
	}
	if got[0].Difficulty != types.DifficultyBeginner || !got[0].CompletionDate.Equal(now) || got[0].Topic != "Control flow" {
		t.Fatalf("detail: %+v", got[0])
	}
}

func TestBuildDashboard(t *testing.T) {
	now := date(2024, 3, 14, 16)
	lid := uuid.New()
	spent := 300
	cur := []*types.ActivityEvent{
		types.NewActivityEvent(uuid.Nil, types.ActivityProgressUpdate, date(2024, 3, 12, 10), &lid, &spent, nil, nil),
	}
	d := BuildDashboard(DashboardInput{
		Range:        RangeWeek,
		Now:          now,
		Current:      cur,
		Subjects:     map[uuid.UUID]string{lid: "Art"},
		Achievements: []*types.Achievement{{ID: uuid.New(), Name: "First steps"}},
	})
	if d.TimeRange != RangeWeek || len(d.Metrics) != 4 || len(d.TimeSeries) != 1 {
		t.Fatalf("dashboard: %+v", d)
	}
	if d.SubjectBreakdown["Art"] != 5 {
		t.Fatalf("breakdown: %v", d.SubjectBreakdown)
	}
	if len(d.RecentAchievements) != 1 || d.Recommendations == nil {
		t.Fatalf("merged lists: %+v / %+v", d.RecentAchievements, d.Recommendations)
	}
}
