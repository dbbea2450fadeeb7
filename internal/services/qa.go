package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/data/repos"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
)

const (
	MinQuestionLength = 5
	MaxQuestionLength = 1000
	MaxContextLength  = 2000
	DefaultQALimit    = 10
	MaxQALimit        = 100
)

type AskRequest struct {
	Question string     `json:"question" binding:"required"`
	Context  string     `json:"context,omitempty"`
	LessonID *uuid.UUID `json:"lesson_id,omitempty"`
}

func (r *AskRequest) Normalize() error {
	r.Question = strings.TrimSpace(r.Question)
	r.Context = strings.TrimSpace(r.Context)
	n := utf8.RuneCountInString(r.Question)
	if n < MinQuestionLength || n > MaxQuestionLength {
		return apperr.Invalid("question must be %d-%d characters", MinQuestionLength, MaxQuestionLength)
	}
	if utf8.RuneCountInString(r.Context) > MaxContextLength {
		return apperr.Invalid("context exceeds %d characters", MaxContextLength)
	}
	if r.LessonID != nil && *r.LessonID == uuid.Nil {
		r.LessonID = nil
	}
	return nil
}

type QAService interface {
	// Ask stores the question, answers it and returns the final item. A failed
	// generation leaves the item in the failed state and returns the error.
	Ask(ctx context.Context, userID uuid.UUID, req AskRequest) (*types.QAItem, error)
	History(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID, limit, skip int) ([]*types.QAItem, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.QAItem, error)
}

type qaService struct {
	log       *logger.Logger
	repos     repos.Set
	content   ContentService
	metrics   *observability.Metrics
	publisher ActivityPublisher
	clock     Clock
}

func NewQAService(log *logger.Logger, rs repos.Set, content ContentService, metrics *observability.Metrics, pub ActivityPublisher, clock Clock) QAService {
	return &qaService{
		log:       log.With("service", "QAService"),
		repos:     rs,
		content:   content,
		metrics:   metrics,
		publisher: publisherOrNop(pub),
		clock:     clockOrDefault(clock),
	}
}

func (s *qaService) Ask(ctx context.Context, userID uuid.UUID, req AskRequest) (*types.QAItem, error) {
	if userID == uuid.Nil {
		return nil, apperr.ErrUnauthorized
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)

	var sections []types.LessonSection
	if req.LessonID != nil {
		lesson, err := s.repos.Lessons.GetByID(dbc, *req.LessonID)
		if err != nil {
			return nil, err
		}
		sections = lesson.Sections()
	}

	now := s.clock()
	item := &types.QAItem{
		ID:        uuid.New(),
		UserID:    userID,
		LessonID:  req.LessonID,
		Question:  req.Question,
		Context:   req.Context,
		Status:    types.QAStatusPending,
		CreatedAt: now,
	}
	item.SetReferences(nil)
	if err := s.repos.QA.Create(dbc, item); err != nil {
		return nil, err
	}

	ev := types.NewActivityEvent(userID, types.ActivityQuestionAsked, now, req.LessonID, nil, nil, map[string]any{
		"question_id": item.ID.String(),
	})
	if err := s.repos.Activity.Create(dbc, ev); err != nil {
		s.log.Warn("question_asked event not recorded", "question_id", item.ID, "error", err)
		s.metrics.IncDegraded("qa.question_event")
	}

	ans, genErr := s.content.GenerateAnswer(ctx, AnswerRequest{
		Question: req.Question,
		Context:  req.Context,
		Sections: sections,
	})
	if genErr != nil {
		item.Status = types.QAStatusFailed
		if err := s.repos.QA.UpdateFields(dbctx.New(context.WithoutCancel(ctx)), item.ID, map[string]interface{}{
			"status": types.QAStatusFailed,
		}); err != nil {
			s.log.Warn("mark question failed", "question_id", item.ID, "error", err)
		}
		return nil, genErr
	}

	answeredAt := s.clock()
	item.Answer = ans.Answer
	item.SetReferences(ans.References)
	item.Status = types.QAStatusAnswered
	item.AnsweredAt = &answeredAt
	if err := s.repos.QA.UpdateFields(dbc, item.ID, map[string]interface{}{
		"answer":      item.Answer,
		"refs":        item.References,
		"status":      item.Status,
		"answered_at": answeredAt,
	}); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, userID, realtime.SSEEventQuestionAnswered, map[string]any{
		"question_id": item.ID,
		"lesson_id":   item.LessonID,
	})
	return item, nil
}

func (s *qaService) History(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID, limit, skip int) ([]*types.QAItem, error) {
	if limit <= 0 {
		limit = DefaultQALimit
	}
	if limit > MaxQALimit {
		limit = MaxQALimit
	}
	if skip < 0 {
		skip = 0
	}
	items, err := s.repos.QA.ListByUser(dbctx.New(ctx), userID, repos.QAFilter{LessonID: lessonID, Limit: limit, Skip: skip})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*types.QAItem{}
	}
	return items, nil
}

func (s *qaService) Get(ctx context.Context, userID, id uuid.UUID) (*types.QAItem, error) {
	return s.repos.QA.GetForUser(dbctx.New(ctx), userID, id)
}
