package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

// StreakLookback bounds how far back streaks are computed.
const StreakLookback = 30 * 24 * time.Hour

type CompletedLessonDetail struct {
	LessonID       uuid.UUID `json:"lesson_id"`
	Title          string    `json:"title"`
	Subject        string    `json:"subject"`
	Topic          string    `json:"topic"`
	Difficulty     string    `json:"difficulty"`
	CompletionDate time.Time `json:"completion_date"`
	Score          *float64  `json:"score"`
	TimeSpent      int       `json:"time_spent"`
}

// SortCompleted orders records newest completion first; records without a
// date go last. The input is not modified.
func SortCompleted(records []types.CompletedLessonRecord) []types.CompletedLessonRecord {
	out := append([]types.CompletedLessonRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CompletionDate, out[j].CompletionDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}

func Page[T any](items []T, limit, skip int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// CompletedDetails joins records with their lessons, skipping records whose
// lesson is missing.
func CompletedDetails(records []types.CompletedLessonRecord, lessons map[uuid.UUID]*types.Lesson, now time.Time) []CompletedLessonDetail {
	out := make([]CompletedLessonDetail, 0, len(records))
	for _, r := range records {
		l, ok := lessons[r.LessonID]
		if !ok || l == nil {
			continue
		}
		when := now
		if r.CompletionDate != nil {
			when = *r.CompletionDate
		}
		title := l.Title
		if title == "" {
			title = r.Title
		}
		out = append(out, CompletedLessonDetail{
			LessonID:       r.LessonID,
			Title:          title,
			Subject:        l.Subject,
			Topic:          l.Topic,
			Difficulty:     l.NormalizedDifficulty(),
			CompletionDate: when,
			Score:          r.Score,
			TimeSpent:      r.TimeSpent,
		})
	}
	return out
}

type SubjectCompletion struct {
	Subject          string   `json:"subject"`
	LessonsCompleted int      `json:"lessons_completed"`
	TotalLessons     int64    `json:"total_lessons"`
	CompletionRate   float64  `json:"completion_rate"`
	AverageScore     *float64 `json:"average_score"`
	TotalTimeSpent   int      `json:"total_time_spent"`
}

type CompletionStats struct {
	TotalLessonsCompleted  int                 `json:"total_lessons_completed"`
	TotalLessonsAvailable  int64               `json:"total_lessons_available"`
	OverallCompletionRate  float64             `json:"overall_completion_rate"`
	TotalTimeSpent         int                 `json:"total_time_spent"`
	AverageScore           *float64            `json:"average_score"`
	Subjects               []SubjectCompletion `json:"subjects"`
	DifficultyDistribution map[string]int      `json:"difficulty_distribution"`
	LastActive             *time.Time          `json:"last_active"`
	StreakDays             int                 `json:"streak_days"`
	AchievementsEarned     int64               `json:"achievements_earned"`
}

// StatsInput is everything CompletionStatsFor reads.
type StatsInput struct {
	State          *types.ProgressState
	Lessons        map[uuid.UUID]*types.Lesson
	CatalogTotal   int64
	SubjectTotals  map[string]int64
	RecentActivity []*types.ActivityEvent
	Achievements   int64
	Now            time.Time
}

// EmptyCompletionStats is returned for learners without a progress document.
func EmptyCompletionStats() CompletionStats {
	return CompletionStats{
		Subjects:               []SubjectCompletion{},
		DifficultyDistribution: map[string]int{},
	}
}

func CompletionStatsFor(in StatsInput) CompletionStats {
	if in.State == nil {
		return EmptyCompletionStats()
	}
	st := in.State
	out := CompletionStats{
		TotalLessonsCompleted: len(st.CompletedLessons),
		TotalLessonsAvailable: in.CatalogTotal,
		TotalTimeSpent:        st.TotalTimeSpent,
		LastActive:            st.LastActive,
		AchievementsEarned:    in.Achievements,
		Subjects:              []SubjectCompletion{},
	}
	out.DifficultyDistribution = map[string]int{
		types.DifficultyBeginner:     0,
		types.DifficultyIntermediate: 0,
		types.DifficultyAdvanced:     0,
	}
	if in.CatalogTotal > 0 {
		out.OverallCompletionRate = float64(out.TotalLessonsCompleted) / float64(in.CatalogTotal) * 100
	}

	var scoreSum float64
	var scoreN int
	type acc struct {
		completed int
		time      int
		scoreSum  float64
		scoreN    int
	}
	bySubject := map[string]*acc{}
	var order []string
	for _, r := range st.CompletedLessons {
		if r.Score != nil {
			scoreSum += *r.Score
			scoreN++
		}
		l, ok := in.Lessons[r.LessonID]
		if !ok || l == nil {
			continue
		}
		out.DifficultyDistribution[l.NormalizedDifficulty()]++
		a := bySubject[l.Subject]
		if a == nil {
			a = &acc{}
			bySubject[l.Subject] = a
			order = append(order, l.Subject)
		}
		a.completed++
		a.time += r.TimeSpent
		if r.Score != nil {
			a.scoreSum += *r.Score
			a.scoreN++
		}
	}
	if scoreN > 0 {
		avg := scoreSum / float64(scoreN)
		out.AverageScore = &avg
	}
	for _, subject := range order {
		a := bySubject[subject]
		sc := SubjectCompletion{
			Subject:          subject,
			LessonsCompleted: a.completed,
			TotalLessons:     in.SubjectTotals[subject],
			TotalTimeSpent:   a.time,
		}
		if sc.TotalLessons > 0 {
			sc.CompletionRate = float64(a.completed) / float64(sc.TotalLessons) * 100
		}
		if a.scoreN > 0 {
			avg := a.scoreSum / float64(a.scoreN)
			sc.AverageScore = &avg
		}
		out.Subjects = append(out.Subjects, sc)
	}
	if st.LastActive != nil {
		out.StreakDays = StreakDays(in.RecentActivity, in.Now)
	}
	return out
}
