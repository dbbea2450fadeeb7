package mongorepo

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	learningrepo "github.com/yungbote/tutor-backend/internal/data/repos/learning"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type achievementRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewAchievementRepo(db *mongo.Database, baseLog *logger.Logger) learningrepo.AchievementRepo {
	return &achievementRepo{coll: db.Collection(CollAchievements), log: baseLog.With("repo", "MongoAchievementRepo")}
}

func (r *achievementRepo) Create(dbc dbctx.Context, rows ...*types.Achievement) error {
	docs := make([]achievementDoc, 0, len(rows))
	for _, a := range rows {
		if a == nil {
			continue
		}
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.EarnedAt.IsZero() {
			a.EarnedAt = time.Now().UTC()
		}
		docs = append(docs, achievementDoc{
			ID:          a.ID.String(),
			UserID:      a.UserID.String(),
			Name:        a.Name,
			Description: a.Description,
			Type:        a.Type,
			EarnedAt:    a.EarnedAt,
		})
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := r.coll.InsertMany(dbc.Context(), docs); err != nil {
		return mapError("achievement.create", err)
	}
	return nil
}

func (r *achievementRepo) ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Achievement, error) {
	ctx := dbc.Context()
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID.String()}, findOptions(bson.D{{Key: "earned_at", Value: -1}}, limit, 0))
	if err != nil {
		return nil, mapError("achievement.list", err)
	}
	var docs []achievementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError("achievement.list", err)
	}
	out := make([]*types.Achievement, 0, len(docs))
	for _, d := range docs {
		a, err := d.toDomain()
		if err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *achievementRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	n, err := r.coll.CountDocuments(dbc.Context(), bson.M{"user_id": userID.String()})
	if err != nil {
		return 0, mapError("achievement.count", err)
	}
	return n, nil
}
