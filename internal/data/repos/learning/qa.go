package learning

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type QAFilter struct {
	LessonID *uuid.UUID
	Limit    int
	Skip     int
}

type QARepo interface {
	Create(dbc dbctx.Context, item *types.QAItem) error
	// GetForUser returns the item only when it belongs to userID.
	GetForUser(dbc dbctx.Context, userID, id uuid.UUID) (*types.QAItem, error)
	// ListByUser returns items newest first.
	ListByUser(dbc dbctx.Context, userID uuid.UUID, f QAFilter) ([]*types.QAItem, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type qaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQARepo(db *gorm.DB, baseLog *logger.Logger) QARepo {
	return &qaRepo{db: db, log: baseLog.With("repo", "QARepo")}
}

func (r *qaRepo) Create(dbc dbctx.Context, item *types.QAItem) error {
	if item == nil {
		return apperr.Invalid("qa item is nil")
	}
	if len(item.References) == 0 {
		item.SetReferences(nil)
	}
	if err := dbc.DB(r.db).Create(item).Error; err != nil {
		return aggregates.MapError("qa.create", err)
	}
	return nil
}

func (r *qaRepo) GetForUser(dbc dbctx.Context, userID, id uuid.UUID) (*types.QAItem, error) {
	var row types.QAItem
	err := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("qa_item", id.String())
	}
	if err != nil {
		return nil, aggregates.MapError("qa.get", err)
	}
	return &row, nil
}

func (r *qaRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, f QAFilter) ([]*types.QAItem, error) {
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if f.LessonID != nil {
		q = q.Where("lesson_id = ?", *f.LessonID)
	}
	q = q.Order("created_at DESC")
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var results []*types.QAItem
	if err := q.Find(&results).Error; err != nil {
		return nil, aggregates.MapError("qa.list", err)
	}
	return results, nil
}

func (r *qaRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.QAItem{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return aggregates.MapError("qa.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("qa_item", id.String())
	}
	return nil
}
