package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type AchievementRepo interface {
	Create(dbc dbctx.Context, rows ...*types.Achievement) error
	ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Achievement, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) Create(dbc dbctx.Context, rows ...*types.Achievement) error {
	if len(rows) == 0 {
		return nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return aggregates.MapError("achievement.create", err)
	}
	return nil
}

func (r *achievementRepo) ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Achievement, error) {
	q := dbc.DB(r.db).Where("user_id = ?", userID).Order("earned_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.Achievement
	if err := q.Find(&results).Error; err != nil {
		return nil, aggregates.MapError("achievement.list", err)
	}
	return results, nil
}

func (r *achievementRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Achievement{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, aggregates.MapError("achievement.count", err)
	}
	return n, nil
}
