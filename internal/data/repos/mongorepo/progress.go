package mongorepo

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	learningrepo "github.com/yungbote/tutor-backend/internal/data/repos/learning"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// progressRepo keys documents by user id, so a concurrent first insert fails
// with a duplicate key and replaces are filtered on {_id, version}.
type progressRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewProgressRepo(db *mongo.Database, baseLog *logger.Logger) learningrepo.ProgressRepo {
	return &progressRepo{coll: db.Collection(CollProgress), log: baseLog.With("repo", "MongoProgressRepo")}
}

func (r *progressRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.LearningProgress, error) {
	var doc progressDoc
	err := r.coll.FindOne(dbc.Context(), bson.M{"_id": userID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("learning_progress", userID.String())
	}
	if err != nil {
		return nil, mapError("progress.get", err)
	}
	row, err := doc.toDomain()
	if err != nil {
		return nil, apperr.Storage("progress.decode", err)
	}
	row.UserID = userID
	return row, nil
}

func (r *progressRepo) Create(dbc dbctx.Context, row *types.LearningProgress) error {
	if row == nil || row.UserID == uuid.Nil {
		return apperr.Invalid("progress document requires user_id")
	}
	now := time.Now().UTC()
	row.Version = 1
	row.CreatedAt = now
	row.UpdatedAt = now
	doc, err := toProgressDoc(row)
	if err != nil {
		return apperr.Storage("progress.encode", err)
	}
	if _, err := r.coll.InsertOne(dbc.Context(), doc); err != nil {
		return mapError("progress.create", err)
	}
	return nil
}

func (r *progressRepo) UpdateIfVersion(dbc dbctx.Context, row *types.LearningProgress, expected int) (bool, error) {
	if row == nil || row.UserID == uuid.Nil {
		return false, apperr.Invalid("progress document requires user_id")
	}
	now := time.Now().UTC()
	next := *row
	next.Version = expected + 1
	next.UpdatedAt = now
	doc, err := toProgressDoc(&next)
	if err != nil {
		return false, apperr.Storage("progress.encode", err)
	}
	res, err := r.coll.ReplaceOne(dbc.Context(), bson.M{"_id": doc.UserID, "version": expected}, doc)
	if err != nil {
		return false, mapError("progress.update", err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}
	row.Version = next.Version
	row.UpdatedAt = now
	return true, nil
}
