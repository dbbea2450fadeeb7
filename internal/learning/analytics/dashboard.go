// Package analytics derives dashboard figures from a learner's activity log
// and progress document. Everything here is pure; callers fetch the inputs.
package analytics

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

type AchievementView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
	Type        string    `json:"type"`
}

type RecommendationView struct {
	LessonID        uuid.UUID `json:"lesson_id"`
	Title           string    `json:"title"`
	Subject         string    `json:"subject"`
	Difficulty      string    `json:"difficulty"`
	DurationMinutes int       `json:"duration_minutes"`
}

type Dashboard struct {
	TimeRange          Range                `json:"time_range"`
	Metrics            []Metric             `json:"metrics"`
	TimeSeries         []Series             `json:"time_series"`
	SubjectBreakdown   map[string]float64   `json:"subject_breakdown"`
	RecentAchievements []AchievementView    `json:"recent_achievements"`
	Recommendations    []RecommendationView `json:"recommendations"`
}

// DashboardInput holds the already fetched data for one dashboard.
type DashboardInput struct {
	Range    Range
	Now      time.Time
	Current  []*types.ActivityEvent
	Previous []*types.ActivityEvent
	// Subjects maps lesson ids seen in Current to their subject.
	Subjects        map[uuid.UUID]string
	Achievements    []*types.Achievement
	Recommendations []RecommendationView
}

func BuildDashboard(in DashboardInput) Dashboard {
	loc := in.Now.Location()
	cur := Summarize(in.Current, loc)
	prev := Summarize(in.Previous, loc)

	recs := in.Recommendations
	if recs == nil {
		recs = []RecommendationView{}
	}
	return Dashboard{
		TimeRange:          in.Range,
		Metrics:            Metrics(cur, prev),
		TimeSeries:         []Series{TimeSpentSeries(in.Range, in.Now, in.Current)},
		SubjectBreakdown:   SubjectBreakdown(in.Current, in.Subjects),
		RecentAchievements: AchievementViews(in.Achievements),
		Recommendations:    recs,
	}
}

func AchievementViews(rows []*types.Achievement) []AchievementView {
	out := make([]AchievementView, 0, len(rows))
	for _, a := range rows {
		if a == nil {
			continue
		}
		out = append(out, AchievementView{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			EarnedAt:    a.EarnedAt,
			Type:        a.Type,
		})
	}
	return out
}
