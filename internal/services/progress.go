package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	"github.com/yungbote/tutor-backend/internal/data/repos"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/learning/progress"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
)

// ProgressView is the API shape of a learner's progress document.
type ProgressView struct {
	UserID           uuid.UUID                     `json:"user_id"`
	CompletedLessons []types.CompletedLessonRecord `json:"completed_lessons"`
	CurrentLesson    *types.CurrentLessonRecord    `json:"current_lesson"`
	TotalTimeSpent   int                           `json:"total_time_spent"`
	LastActive       *time.Time                    `json:"last_active"`
	Version          int                           `json:"version"`
	Statistics       progress.Summary              `json:"statistics"`
}

func NewProgressView(userID uuid.UUID, st *types.ProgressState) ProgressView {
	if st == nil {
		st = &types.ProgressState{UserID: userID}
	}
	completed := st.CompletedLessons
	if completed == nil {
		completed = []types.CompletedLessonRecord{}
	}
	return ProgressView{
		UserID:           userID,
		CompletedLessons: completed,
		CurrentLesson:    st.CurrentLesson,
		TotalTimeSpent:   st.TotalTimeSpent,
		LastActive:       st.LastActive,
		Version:          st.Version,
		Statistics:       progress.Summarize(st),
	}
}

type ProgressService interface {
	// RecordProgress folds one lesson interaction into the caller's progress
	// document and appends the matching activity event.
	RecordProgress(ctx context.Context, userID, lessonID uuid.UUID, u progress.Update) (ProgressView, *types.ActivityEvent, error)
	GetProgress(ctx context.Context, userID uuid.UUID) (ProgressView, error)
	// State returns the decoded document, or nil when the user has none.
	State(ctx context.Context, userID uuid.UUID) (*types.ProgressState, error)
}

type progressService struct {
	log       *logger.Logger
	repos     repos.Set
	aggregate aggregates.ProgressAggregate
	publisher ActivityPublisher
	clock     Clock
}

func NewProgressService(log *logger.Logger, rs repos.Set, agg aggregates.ProgressAggregate, pub ActivityPublisher, clock Clock) ProgressService {
	return &progressService{
		log:       log.With("service", "ProgressService"),
		repos:     rs,
		aggregate: agg,
		publisher: publisherOrNop(pub),
		clock:     clockOrDefault(clock),
	}
}

func (s *progressService) RecordProgress(ctx context.Context, userID, lessonID uuid.UUID, u progress.Update) (ProgressView, *types.ActivityEvent, error) {
	if userID == uuid.Nil {
		return ProgressView{}, nil, apperr.ErrUnauthorized
	}
	if lessonID == uuid.Nil {
		return ProgressView{}, nil, apperr.Invalid("lesson id is required")
	}
	if err := u.Validate(); err != nil {
		return ProgressView{}, nil, err
	}
	lesson, err := s.repos.Lessons.GetByID(dbctx.New(ctx), lessonID)
	if err != nil {
		return ProgressView{}, nil, err
	}

	now := s.clock()
	st, events, err := s.aggregate.Record(ctx, userID, func(st *types.ProgressState) ([]*types.ActivityEvent, error) {
		out := progress.Apply(st, lessonID, lesson.Title, u, now)
		return []*types.ActivityEvent{progress.Event(userID, lessonID, u, out, now)}, nil
	})
	if err != nil {
		s.log.Warn("record progress failed", "user_id", userID, "lesson_id", lessonID, "error", err)
		return ProgressView{}, nil, err
	}

	var ev *types.ActivityEvent
	if len(events) > 0 {
		ev = events[0]
		s.publisher.Publish(ctx, userID, realtime.SSEEventActivityRecorded, ev)
	}
	return NewProgressView(userID, st), ev, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID uuid.UUID) (ProgressView, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return ProgressView{}, err
	}
	return NewProgressView(userID, st), nil
}

func (s *progressService) State(ctx context.Context, userID uuid.UUID) (*types.ProgressState, error) {
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
