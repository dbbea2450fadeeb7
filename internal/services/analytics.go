package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/data/repos"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/learning/analytics"
	"github.com/yungbote/tutor-backend/internal/learning/progress"
	"github.com/yungbote/tutor-backend/internal/learning/recommend"
	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/platform/workerpool"
	"github.com/yungbote/tutor-backend/internal/realtime"
)

const (
	dashboardAchievements    = 3
	dashboardRecommendations = 3
	DefaultPageLimit         = 20
	MaxPageLimit             = 100
)

// ActivityView is an activity entry enriched with its lesson's title.
type ActivityView struct {
	*types.ActivityEvent
	LessonTitle string `json:"lesson_title,omitempty"`
}

type LogActivityInput struct {
	Type      string         `json:"type"`
	LessonID  *uuid.UUID     `json:"lesson_id,omitempty"`
	TimeSpent *int           `json:"time_spent,omitempty"`
	Score     *float64       `json:"score,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

type AnalyticsService interface {
	Dashboard(ctx context.Context, userID uuid.UUID, timeRange string) (analytics.Dashboard, error)
	CompletedLessons(ctx context.Context, userID uuid.UUID, limit, skip int) ([]analytics.CompletedLessonDetail, error)
	CompletionStats(ctx context.Context, userID uuid.UUID) (analytics.CompletionStats, error)
	Activity(ctx context.Context, userID uuid.UUID, limit, skip int) ([]ActivityView, error)
	LogActivity(ctx context.Context, userID uuid.UUID, in LogActivityInput) (*types.ActivityEvent, error)
}

type analyticsService struct {
	log       *logger.Logger
	repos     repos.Set
	recs      RecommendationService
	pool      *workerpool.Pool
	metrics   *observability.Metrics
	publisher ActivityPublisher
	clock     Clock
}

func NewAnalyticsService(
	log *logger.Logger,
	rs repos.Set,
	recs RecommendationService,
	pool *workerpool.Pool,
	metrics *observability.Metrics,
	pub ActivityPublisher,
	clock Clock,
) AnalyticsService {
	return &analyticsService{
		log:       log.With("service", "AnalyticsService"),
		repos:     rs,
		recs:      recs,
		pool:      pool,
		metrics:   metrics,
		publisher: publisherOrNop(pub),
		clock:     clockOrDefault(clock),
	}
}

// ClampPage applies the default and bounds to limit and floors skip at 0.
func ClampPage(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

func (s *analyticsService) Dashboard(ctx context.Context, userID uuid.UUID, timeRange string) (analytics.Dashboard, error) {
	r := analytics.ParseRange(timeRange)
	now := s.clock()
	w := analytics.WindowsFor(r, now)

	var (
		current, previous []*types.ActivityEvent
		achievements      []*types.Achievement
		recs              []analytics.RecommendationView
	)
	g, _ := s.pool.Group(ctx)
	g.Go(func(ctx context.Context) error {
		evs, err := s.repos.Activity.ListByUserInRange(dbctx.New(ctx), userID, w.Current.Start, w.Current.End)
		current = evs
		return err
	})
	g.Go(func(ctx context.Context) error {
		evs, err := s.repos.Activity.ListByUserInRange(dbctx.New(ctx), userID, w.Previous.Start, w.Previous.End)
		previous = evs
		return err
	})
	g.Go(func(ctx context.Context) error {
		rows, err := s.repos.Achievements.ListRecentByUser(dbctx.New(ctx), userID, dashboardAchievements)
		if err != nil {
			s.log.Warn("dashboard achievements unavailable", "user_id", userID, "error", err)
			s.metrics.IncDegraded("dashboard.achievements")
			return nil
		}
		achievements = rows
		return nil
	})
	g.Go(func(ctx context.Context) error {
		recs = recommendationViews(s.recs.Recommend(ctx, userID, dashboardRecommendations))
		return nil
	})
	if err := g.Wait(); err != nil {
		return analytics.Dashboard{}, apperr.Storage("analytics.dashboard", err)
	}

	subjects := s.lessonSubjects(ctx, analytics.LessonIDs(current))
	return analytics.BuildDashboard(analytics.DashboardInput{
		Range:           r,
		Now:             now,
		Current:         current,
		Previous:        previous,
		Subjects:        subjects,
		Achievements:    achievements,
		Recommendations: recs,
	}), nil
}

func recommendationViews(results []recommend.Result) []analytics.RecommendationView {
	out := make([]analytics.RecommendationView, 0, len(results))
	for _, r := range results {
		out = append(out, analytics.RecommendationView{
			LessonID:        r.LessonID,
			Title:           r.Title,
			Subject:         r.Subject,
			Difficulty:      r.Difficulty,
			DurationMinutes: r.DurationMinutes,
		})
	}
	return out
}

func (s *analyticsService) lessonSubjects(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(ids))
	for id, l := range s.lessonsByID(ctx, ids, "dashboard.subject_breakdown") {
		out[id] = l.Subject
	}
	return out
}

// lessonsByID resolves ids in one batch read. When the batch fails each id is
// read on its own through the pool and missing ones are skipped.
func (s *analyticsService) lessonsByID(ctx context.Context, ids []uuid.UUID, path string) map[uuid.UUID]*types.Lesson {
	out := make(map[uuid.UUID]*types.Lesson, len(ids))
	if len(ids) == 0 {
		return out
	}
	lessons, err := s.repos.Lessons.GetByIDs(dbctx.New(ctx), ids)
	if err == nil {
		for _, l := range lessons {
			if l != nil {
				out[l.ID] = l
			}
		}
		if len(out) < len(ids) {
			s.metrics.IncDegraded(path)
		}
		return out
	}
	s.log.Debug("batch lesson read failed, falling back", "path", path, "error", err)

	found := make([]*types.Lesson, len(ids))
	g, _ := s.pool.Group(ctx)
	for i, id := range ids {
		g.Go(func(ctx context.Context) error {
			l, err := s.repos.Lessons.GetByID(dbctx.New(ctx), id)
			if err != nil {
				s.metrics.IncDegraded(path)
				return nil
			}
			found[i] = l
			return nil
		})
	}
	_ = g.Wait()
	for _, l := range found {
		if l != nil {
			out[l.ID] = l
		}
	}
	return out
}

func (s *analyticsService) state(ctx context.Context, userID uuid.UUID) (*types.ProgressState, error) {
	row, err := s.repos.Progress.GetByUserID(dbctx.New(ctx), userID)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st, err := row.Decode()
	if err != nil {
		return nil, apperr.Storage("progress.decode", err)
	}
	return st, nil
}

func (s *analyticsService) CompletedLessons(ctx context.Context, userID uuid.UUID, limit, skip int) ([]analytics.CompletedLessonDetail, error) {
	limit, skip = ClampPage(limit, skip)
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return []analytics.CompletedLessonDetail{}, nil
	}
	page := analytics.Page(analytics.SortCompleted(st.CompletedLessons), limit, skip)
	ids := make([]uuid.UUID, 0, len(page))
	for _, r := range page {
		ids = append(ids, r.LessonID)
	}
	lessons := s.lessonsByID(ctx, ids, "analytics.completed_lessons")
	return analytics.CompletedDetails(page, lessons, s.clock()), nil
}

func (s *analyticsService) CompletionStats(ctx context.Context, userID uuid.UUID) (analytics.CompletionStats, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return analytics.CompletionStats{}, err
	}
	if st == nil {
		return analytics.EmptyCompletionStats(), nil
	}
	now := s.clock()
	in := analytics.StatsInput{State: st, Now: now}

	ids := make([]uuid.UUID, 0, len(st.CompletedLessons))
	for _, r := range st.CompletedLessons {
		ids = append(ids, r.LessonID)
	}
	g, _ := s.pool.Group(ctx)
	g.Go(func(ctx context.Context) error {
		n, err := s.repos.Lessons.Count(dbctx.New(ctx))
		in.CatalogTotal = n
		return err
	})
	g.Go(func(ctx context.Context) error {
		m, err := s.repos.Lessons.CountBySubject(dbctx.New(ctx))
		in.SubjectTotals = m
		return err
	})
	g.Go(func(ctx context.Context) error {
		// End is exclusive; include events stamped at exactly now.
		evs, err := s.repos.Activity.ListByUserInRange(dbctx.New(ctx), userID, now.Add(-analytics.StreakLookback), now.Add(time.Second))
		in.RecentActivity = evs
		return err
	})
	g.Go(func(ctx context.Context) error {
		n, err := s.repos.Achievements.CountByUser(dbctx.New(ctx), userID)
		in.Achievements = n
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.CompletionStats{}, apperr.Storage("analytics.completion_stats", err)
	}
	in.Lessons = s.lessonsByID(ctx, ids, "analytics.completion_stats")
	return analytics.CompletionStatsFor(in), nil
}

func (s *analyticsService) Activity(ctx context.Context, userID uuid.UUID, limit, skip int) ([]ActivityView, error) {
	limit, skip = ClampPage(limit, skip)
	events, err := s.repos.Activity.ListByUser(dbctx.New(ctx), userID, limit, skip)
	if err != nil {
		return nil, err
	}
	lessons := s.lessonsByID(ctx, analytics.LessonIDs(events), "analytics.activity")
	out := make([]ActivityView, 0, len(events))
	for _, e := range events {
		v := ActivityView{ActivityEvent: e}
		if e.LessonID != nil {
			if l, ok := lessons[*e.LessonID]; ok {
				v.LessonTitle = l.Title
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// serverOwnedActivity lists event types only the progress, lesson and QA
// paths may write; dashboard totals are derived from them.
var serverOwnedActivity = map[string]bool{
	types.ActivityLessonCompletion: true,
	types.ActivityProgressUpdate:   true,
	types.ActivityLessonGenerated:  true,
	types.ActivityQuestionAsked:    true,
}

func (s *analyticsService) LogActivity(ctx context.Context, userID uuid.UUID, in LogActivityInput) (*types.ActivityEvent, error) {
	if userID == uuid.Nil {
		return nil, apperr.ErrUnauthorized
	}
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		return nil, apperr.Invalid("activity type is required")
	}
	if serverOwnedActivity[typ] {
		return nil, apperr.Invalid("activity type %q is recorded by the server", typ)
	}
	if in.TimeSpent != nil && *in.TimeSpent < 0 {
		return nil, apperr.Invalid("time_spent must not be negative")
	}
	if in.Score != nil && (math.IsNaN(*in.Score) || *in.Score < 0 || *in.Score > progress.MaxScore) {
		return nil, apperr.Invalid("score must be between 0 and %d", progress.MaxScore)
	}
	ev := types.NewActivityEvent(userID, typ, s.clock(), in.LessonID, in.TimeSpent, in.Score, in.Details)
	if err := s.repos.Activity.Create(dbctx.New(ctx), ev); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, userID, realtime.SSEEventActivityRecorded, ev)
	return ev, nil
}
