package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/data/repos"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/learning/recommend"
	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type RecommendationService interface {
	// Recommend never fails; any store error yields an empty list.
	Recommend(ctx context.Context, userID uuid.UUID, limit int) []recommend.Result
}

type recommendationService struct {
	log            *logger.Logger
	repos          repos.Set
	metrics        *observability.Metrics
	clock          Clock
	candidateLimit int
}

// NewRecommendationService scores at most candidateLimit of the newest
// catalog lessons; zero scans the whole catalog.
func NewRecommendationService(log *logger.Logger, rs repos.Set, metrics *observability.Metrics, clock Clock, candidateLimit int) RecommendationService {
	return &recommendationService{
		log:            log.With("service", "RecommendationService"),
		repos:          rs,
		metrics:        metrics,
		clock:          clockOrDefault(clock),
		candidateLimit: candidateLimit,
	}
}

func (s *recommendationService) Recommend(ctx context.Context, userID uuid.UUID, limit int) []recommend.Result {
	out, err := s.recommend(ctx, userID, limit)
	if err != nil {
		s.log.Warn("recommendations unavailable", "user_id", userID, "error", err)
		s.metrics.IncDegraded("recommendations")
		return []recommend.Result{}
	}
	return out
}

func (s *recommendationService) recommend(ctx context.Context, userID uuid.UUID, limit int) ([]recommend.Result, error) {
	dbc := dbctx.New(ctx)

	var prefs types.LearningPreferences
	u, err := s.repos.Users.GetByID(dbc, userID)
	switch {
	case err == nil:
		prefs = u.LearningPreferences()
	case apperr.IsNotFound(err):
	default:
		return nil, err
	}

	completed := map[uuid.UUID]struct{}{}
	row, err := s.repos.Progress.GetByUserID(dbc, userID)
	switch {
	case err == nil:
		st, derr := row.Decode()
		if derr != nil {
			return nil, apperr.Storage("progress.decode", derr)
		}
		completed = st.CompletedIDs()
	case apperr.IsNotFound(err):
	default:
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(completed))
	for id := range completed {
		ids = append(ids, id)
	}
	studied := recommend.TagUnion(s.completedLessons(dbc, ids))

	candidates, err := s.repos.Lessons.List(dbc, repos.LessonFilter{ExcludeIDs: ids, Limit: s.candidateLimit})
	if err != nil {
		return nil, err
	}
	return recommend.Rank(candidates, recommend.Input{
		Preferences: recommend.Preferences{
			Subjects:   prefs.PreferredSubjects,
			Difficulty: prefs.DifficultyPreference,
		},
		Completed:   completed,
		StudiedTags: studied,
		Now:         s.clock(),
	}, limit), nil
}

// completedLessons loads lessons for their tags. A failed batch read falls
// back to one read per id and skips the ones that fail.
func (s *recommendationService) completedLessons(dbc dbctx.Context, ids []uuid.UUID) []*types.Lesson {
	if len(ids) == 0 {
		return nil
	}
	lessons, err := s.repos.Lessons.GetByIDs(dbc, ids)
	if err == nil {
		return lessons
	}
	s.log.Debug("batch lesson read failed, falling back", "error", err)
	out := make([]*types.Lesson, 0, len(ids))
	for _, id := range ids {
		l, err := s.repos.Lessons.GetByID(dbc, id)
		if err != nil {
			s.metrics.IncDegraded("recommendations.completed_lesson")
			continue
		}
		out = append(out, l)
	}
	return out
}
