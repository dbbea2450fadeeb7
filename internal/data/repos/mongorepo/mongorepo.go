// Package mongorepo implements the learning stores on MongoDB. Each repo
// satisfies the same interface as its SQL counterpart; dbc.Tx is ignored.
package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

const (
	CollLessons      = "lessons"
	CollProgress     = "learning_progress"
	CollActivity     = "activity_events"
	CollAchievements = "achievements"
	CollQA           = "qa_items"
	CollUsers        = "users"
)

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict(op, err)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(op, "")
	}
	return aggregates.MapError(op, err)
}

// EnsureIndexes creates the secondary indexes every collection relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollLessons: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "subject", Value: 1}, {Key: "difficulty", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		CollActivity: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "type", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		CollAchievements: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "earned_at", Value: -1}}},
		},
		CollQA: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "lesson_id", Value: 1}}},
		},
		CollUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func findOptions(sort bson.D, limit, skip int) *options.FindOptionsBuilder {
	opts := options.Find().SetSort(sort)
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
