package learning

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// LessonFilter narrows catalog listings. Zero values mean "any".
type LessonFilter struct {
	Subject    string
	Difficulty string
	CreatedBy  *uuid.UUID
	ExcludeIDs []uuid.UUID
	Limit      int
	Skip       int
}

type LessonRepo interface {
	Create(dbc dbctx.Context, lessons []*types.Lesson) ([]*types.Lesson, error)
	Upsert(dbc dbctx.Context, lesson *types.Lesson) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error)
	// List returns lessons newest first.
	List(dbc dbctx.Context, f LessonFilter) ([]*types.Lesson, error)
	Count(dbc dbctx.Context) (int64, error)
	CountBySubject(dbc dbctx.Context) (map[string]int64, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(dbc dbctx.Context, lessons []*types.Lesson) ([]*types.Lesson, error) {
	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}
	for _, l := range lessons {
		if err := validateLesson(l); err != nil {
			return nil, err
		}
	}
	if err := dbc.DB(r.db).Create(&lessons).Error; err != nil {
		return nil, aggregates.MapError("lesson.create", err)
	}
	return lessons, nil
}

func (r *lessonRepo) Upsert(dbc dbctx.Context, lesson *types.Lesson) error {
	if lesson == nil {
		return nil
	}
	if err := validateLesson(lesson); err != nil {
		return err
	}
	err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"subject", "topic", "title", "difficulty", "duration_minutes", "summary",
				"tags", "content", "exercises", "resources", "updated_at",
			}),
		}).
		Create(lesson).Error
	return aggregates.MapError("lesson.upsert", err)
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, apperr.NotFound("lesson", "")
	}
	var row types.Lesson
	err := dbc.DB(r.db).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("lesson", id.String())
	}
	if err != nil {
		return nil, aggregates.MapError("lesson.get", err)
	}
	return &row, nil
}

func (r *lessonRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error) {
	var results []*types.Lesson
	if len(ids) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&results).Error; err != nil {
		return nil, aggregates.MapError("lesson.get_many", err)
	}
	return results, nil
}

func (r *lessonRepo) List(dbc dbctx.Context, f LessonFilter) ([]*types.Lesson, error) {
	q := dbc.DB(r.db).Model(&types.Lesson{})
	if s := strings.TrimSpace(f.Subject); s != "" {
		q = q.Where("subject = ?", s)
	}
	if d := strings.TrimSpace(f.Difficulty); d != "" {
		q = q.Where("difficulty = ?", strings.ToLower(d))
	}
	if f.CreatedBy != nil {
		q = q.Where("created_by = ?", *f.CreatedBy)
	}
	if len(f.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", f.ExcludeIDs)
	}
	q = q.Order("created_at DESC").Order("id ASC")
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var results []*types.Lesson
	if err := q.Find(&results).Error; err != nil {
		return nil, aggregates.MapError("lesson.list", err)
	}
	return results, nil
}

func (r *lessonRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Lesson{}).Count(&n).Error; err != nil {
		return 0, aggregates.MapError("lesson.count", err)
	}
	return n, nil
}

func (r *lessonRepo) CountBySubject(dbc dbctx.Context) (map[string]int64, error) {
	var rows []struct {
		Subject string
		N       int64
	}
	err := dbc.DB(r.db).Model(&types.Lesson{}).
		Select("subject, COUNT(*) AS n").
		Group("subject").
		Scan(&rows).Error
	if err != nil {
		return nil, aggregates.MapError("lesson.count_by_subject", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Subject] = row.N
	}
	return out, nil
}

func validateLesson(l *types.Lesson) error {
	if l == nil {
		return apperr.Invalid("lesson is nil")
	}
	d, ok := types.NormalizeDifficulty(l.Difficulty)
	if !ok {
		return apperr.Invalid("unknown difficulty %q", l.Difficulty)
	}
	l.Difficulty = d
	if strings.TrimSpace(l.Title) == "" {
		return apperr.Invalid("lesson title is required")
	}
	if l.DurationMinutes < 0 {
		l.DurationMinutes = 0
	}
	return nil
}
