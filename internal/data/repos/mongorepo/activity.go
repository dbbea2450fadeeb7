package mongorepo

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	learningrepo "github.com/yungbote/tutor-backend/internal/data/repos/learning"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type activityRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewActivityRepo(db *mongo.Database, baseLog *logger.Logger) learningrepo.ActivityRepo {
	return &activityRepo{coll: db.Collection(CollActivity), log: baseLog.With("repo", "MongoActivityRepo")}
}

func (r *activityRepo) Create(dbc dbctx.Context, events ...*types.ActivityEvent) error {
	docs := make([]activityDoc, 0, len(events))
	for _, e := range events {
		if e != nil {
			docs = append(docs, toActivityDoc(e))
		}
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := r.coll.InsertMany(dbc.Context(), docs); err != nil {
		return mapError("activity.create", err)
	}
	return nil
}

func (r *activityRepo) ListByUserInRange(dbc dbctx.Context, userID uuid.UUID, start, end time.Time) ([]*types.ActivityEvent, error) {
	filter := bson.M{
		"user_id":   userID.String(),
		"timestamp": bson.M{"$gte": start, "$lt": end},
	}
	return r.find(dbc, "activity.list_range", filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
}

func (r *activityRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, skip int) ([]*types.ActivityEvent, error) {
	sort := bson.D{{Key: "timestamp", Value: -1}}
	return r.find(dbc, "activity.list", bson.M{"user_id": userID.String()}, findOptions(sort, limit, skip))
}

func (r *activityRepo) find(dbc dbctx.Context, op string, filter any, opts *options.FindOptionsBuilder) ([]*types.ActivityEvent, error) {
	ctx := dbc.Context()
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(op, err)
	}
	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError(op, err)
	}
	out := make([]*types.ActivityEvent, 0, len(docs))
	for _, d := range docs {
		e, err := d.toDomain()
		if err != nil {
			r.log.Warn("skipping undecodable activity event", "id", d.ID, "error", err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
