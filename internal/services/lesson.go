package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/data/repos"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/learning/analytics"
	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
)

const (
	DefaultLessonLimit = 10
	MaxLessonLimit     = 50
)

type LessonListFilter struct {
	Subject    string
	Difficulty string
	Limit      int
	Skip       int
}

// LessonProgressInfo is a learner's standing on one lesson.
type LessonProgressInfo struct {
	Progress     float64    `json:"progress"`
	TimeSpent    int        `json:"time_spent"`
	Completed    bool       `json:"completed"`
	Score        *float64   `json:"score,omitempty"`
	LastAccessed *time.Time `json:"last_accessed"`
}

type UserLesson struct {
	Lesson   *types.Lesson      `json:"lesson"`
	Progress LessonProgressInfo `json:"progress"`
}

type LessonService interface {
	List(ctx context.Context, f LessonListFilter) ([]*types.Lesson, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Lesson, error)
	// MyLessons lists the in-progress lesson, then completed ones when
	// includeCompleted is set. Learners without progress get the newest
	// catalog lessons as starting points.
	MyLessons(ctx context.Context, userID uuid.UUID, limit, skip int, includeCompleted bool) ([]UserLesson, error)
	Generate(ctx context.Context, userID uuid.UUID, req LessonRequest) (*types.Lesson, error)
	Seed(ctx context.Context, lessons []*types.Lesson) (int, error)
}

type lessonService struct {
	log       *logger.Logger
	repos     repos.Set
	content   ContentService
	metrics   *observability.Metrics
	publisher ActivityPublisher
	clock     Clock
}

func NewLessonService(log *logger.Logger, rs repos.Set, content ContentService, metrics *observability.Metrics, pub ActivityPublisher, clock Clock) LessonService {
	return &lessonService{
		log:       log.With("service", "LessonService"),
		repos:     rs,
		content:   content,
		metrics:   metrics,
		publisher: publisherOrNop(pub),
		clock:     clockOrDefault(clock),
	}
}

func clampLessonPage(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = DefaultLessonLimit
	}
	if limit > MaxLessonLimit {
		limit = MaxLessonLimit
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

func (s *lessonService) List(ctx context.Context, f LessonListFilter) ([]*types.Lesson, error) {
	limit, skip := clampLessonPage(f.Limit, f.Skip)
	filter := repos.LessonFilter{Subject: f.Subject, Limit: limit, Skip: skip}
	if f.Difficulty != "" {
		d, ok := types.NormalizeDifficulty(f.Difficulty)
		if !ok {
			return nil, apperr.Invalid("unknown difficulty %q", f.Difficulty)
		}
		filter.Difficulty = d
	}
	lessons, err := s.repos.Lessons.List(dbctx.New(ctx), filter)
	if err != nil {
		return nil, err
	}
	if lessons == nil {
		lessons = []*types.Lesson{}
	}
	return lessons, nil
}

func (s *lessonService) Get(ctx context.Context, id uuid.UUID) (*types.Lesson, error) {
	return s.repos.Lessons.GetByID(dbctx.New(ctx), id)
}

type lessonEntry struct {
	id   uuid.UUID
	info LessonProgressInfo
}

func (s *lessonService) MyLessons(ctx context.Context, userID uuid.UUID, limit, skip int, includeCompleted bool) ([]UserLesson, error) {
	limit, skip = clampLessonPage(limit, skip)
	dbc := dbctx.New(ctx)

	row, err := s.repos.Progress.GetByUserID(dbc, userID)
	if apperr.IsNotFound(err) {
		lessons, err := s.repos.Lessons.List(dbc, repos.LessonFilter{Limit: limit, Skip: skip})
		if err != nil {
			return nil, err
		}
		out := make([]UserLesson, 0, len(lessons))
		for _, l := range lessons {
			out = append(out, UserLesson{Lesson: l})
		}
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	st, err := row.Decode()
	if err != nil {
		return nil, apperr.Storage("progress.decode", err)
	}

	var entries []lessonEntry
	if cur := st.CurrentLesson; cur != nil {
		updated := cur.UpdatedAt
		entries = append(entries, lessonEntry{id: cur.LessonID, info: LessonProgressInfo{
			Progress:     cur.Progress,
			TimeSpent:    cur.TimeSpent,
			LastAccessed: &updated,
		}})
	}
	if includeCompleted {
		for _, rec := range analytics.SortCompleted(st.CompletedLessons) {
			entries = append(entries, lessonEntry{id: rec.LessonID, info: LessonProgressInfo{
				Progress:     1,
				TimeSpent:    rec.TimeSpent,
				Completed:    true,
				Score:        rec.Score,
				LastAccessed: rec.CompletionDate,
			}})
		}
	}
	entries = analytics.Page(entries, limit, skip)
	if len(entries) == 0 {
		return []UserLesson{}, nil
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}
	lessons, err := s.repos.Lessons.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Lesson, len(lessons))
	for _, l := range lessons {
		byID[l.ID] = l
	}
	out := make([]UserLesson, 0, len(entries))
	for _, e := range entries {
		l, ok := byID[e.id]
		if !ok {
			s.metrics.IncDegraded("lessons.my_lessons")
			continue
		}
		out = append(out, UserLesson{Lesson: l, Progress: e.info})
	}
	return out, nil
}

func (s *lessonService) Generate(ctx context.Context, userID uuid.UUID, req LessonRequest) (*types.Lesson, error) {
	if userID == uuid.Nil {
		return nil, apperr.ErrUnauthorized
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	gen, err := s.content.GenerateLesson(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	createdBy := userID
	lesson := &types.Lesson{
		ID:              uuid.New(),
		Subject:         req.Subject,
		Topic:           req.Topic,
		Title:           gen.Title,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
		Summary:         gen.Summary,
		Content:         types.JSONOrEmpty(gen.Content),
		Exercises:       types.JSONOrEmpty(gen.Exercises),
		Resources:       types.JSONOrEmpty(gen.Resources),
		CreatedBy:       &createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	lesson.SetTags(gen.Tags)

	dbc := dbctx.New(ctx)
	if _, err := s.repos.Lessons.Create(dbc, []*types.Lesson{lesson}); err != nil {
		return nil, err
	}

	lid := lesson.ID
	ev := types.NewActivityEvent(userID, types.ActivityLessonGenerated, now, &lid, nil, nil, map[string]any{
		"subject":    lesson.Subject,
		"topic":      lesson.Topic,
		"difficulty": lesson.Difficulty,
	})
	if err := s.repos.Activity.Create(dbc, ev); err != nil {
		s.log.Warn("lesson_generated event not recorded", "lesson_id", lesson.ID, "error", err)
		s.metrics.IncDegraded("lessons.generated_event")
	} else {
		s.publisher.Publish(ctx, userID, realtime.SSEEventLessonGenerated, ev)
	}
	s.log.Info("lesson generated", "lesson_id", lesson.ID, "subject", lesson.Subject, "difficulty", lesson.Difficulty)
	return lesson, nil
}

// Seed upserts catalog lessons by id.
func (s *lessonService) Seed(ctx context.Context, lessons []*types.Lesson) (int, error) {
	dbc := dbctx.New(ctx)
	now := s.clock()
	n := 0
	for _, l := range lessons {
		if l == nil {
			continue
		}
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		l.UpdatedAt = now
		if err := s.repos.Lessons.Upsert(dbc, l); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
