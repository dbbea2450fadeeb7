package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// ActivityRepo is the append-only activity log.
type ActivityRepo interface {
	Create(dbc dbctx.Context, events ...*types.ActivityEvent) error
	// ListByUserInRange returns events with start <= timestamp < end, oldest first.
	ListByUserInRange(dbc dbctx.Context, userID uuid.UUID, start, end time.Time) ([]*types.ActivityEvent, error)
	// ListByUser returns events newest first.
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, skip int) ([]*types.ActivityEvent, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) Create(dbc dbctx.Context, events ...*types.ActivityEvent) error {
	rows := make([]*types.ActivityEvent, 0, len(events))
	for _, e := range events {
		if e != nil {
			rows = append(rows, e)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return aggregates.MapError("activity.create", err)
	}
	return nil
}

func (r *activityRepo) ListByUserInRange(dbc dbctx.Context, userID uuid.UUID, start, end time.Time) ([]*types.ActivityEvent, error) {
	var results []*types.ActivityEvent
	err := dbc.DB(r.db).
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, start, end).
		Order("occurred_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, aggregates.MapError("activity.list_range", err)
	}
	return results, nil
}

func (r *activityRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, skip int) ([]*types.ActivityEvent, error) {
	q := dbc.DB(r.db).Where("user_id = ?", userID).Order("occurred_at DESC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.ActivityEvent
	if err := q.Find(&results).Error; err != nil {
		return nil, aggregates.MapError("activity.list", err)
	}
	return results, nil
}
