package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// ProgressRepo stores one LearningProgress document per user. Writes are
// whole-document and guarded by the version column.
type ProgressRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.LearningProgress, error)
	// Create inserts the first document for a user with version 1. A concurrent
	// first insert surfaces as a conflict.
	Create(dbc dbctx.Context, row *types.LearningProgress) error
	// UpdateIfVersion writes row only when the stored version equals expected.
	// On success row.Version is advanced.
	UpdateIfVersion(dbc dbctx.Context, row *types.LearningProgress, expected int) (bool, error)
}

type progressRepo struct {
	db    *gorm.DB
	guard aggregates.CASGuard
	log   *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, guard: aggregates.NewCASGuard(db), log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.LearningProgress, error) {
	var row types.LearningProgress
	err := dbc.DB(r.db).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("learning_progress", userID.String())
	}
	if err != nil {
		return nil, aggregates.MapError("progress.get", err)
	}
	return &row, nil
}

func (r *progressRepo) Create(dbc dbctx.Context, row *types.LearningProgress) error {
	if row == nil || row.UserID == uuid.Nil {
		return apperr.Invalid("progress document requires user_id")
	}
	row.Version = 1
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return aggregates.MapError("progress.create", err)
	}
	return nil
}

func (r *progressRepo) UpdateIfVersion(dbc dbctx.Context, row *types.LearningProgress, expected int) (bool, error) {
	if row == nil || row.UserID == uuid.Nil {
		return false, apperr.Invalid("progress document requires user_id")
	}
	now := time.Now().UTC()
	ok, err := r.guard.UpdateByVersion(dbc, types.LearningProgress{}.TableName(), "user_id", row.UserID, expected, map[string]any{
		"completed_lessons": row.CompletedLessons,
		"current_lesson":    row.CurrentLesson,
		"total_time_spent":  row.TotalTimeSpent,
		"last_active":       row.LastActive,
		"updated_at":        now,
	})
	if err != nil {
		return false, aggregates.MapError("progress.update", err)
	}
	if ok {
		row.Version = expected + 1
		row.UpdatedAt = now
	}
	return ok, nil
}
