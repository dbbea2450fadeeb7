package mongorepo

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	userrepo "github.com/yungbote/tutor-backend/internal/data/repos/user"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type userRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewUserRepo(db *mongo.Database, baseLog *logger.Logger) userrepo.UserRepo {
	return &userRepo{coll: db.Collection(CollUsers), log: baseLog.With("repo", "MongoUserRepo")}
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	var doc userDoc
	err := r.coll.FindOne(dbc.Context(), bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user", id.String())
	}
	if err != nil {
		return nil, mapError("user.get", err)
	}
	u, err := doc.toDomain()
	if err != nil {
		return nil, apperr.Storage("user.decode", err)
	}
	return u, nil
}

func (r *userRepo) EnsureUser(dbc dbctx.Context, u *types.User) (*types.User, error) {
	if u == nil || u.ID == uuid.Nil {
		return nil, apperr.Invalid("user id is required")
	}
	u.Email = strings.TrimSpace(u.Email)
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := r.coll.InsertOne(dbc.Context(), toUserDoc(u))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, mapError("user.ensure", err)
	}
	return r.GetByID(dbc, u.ID)
}

func (r *userRepo) Update(dbc dbctx.Context, u *types.User) error {
	if u == nil || u.ID == uuid.Nil {
		return apperr.Invalid("user id is required")
	}
	doc := toUserDoc(u)
	res, err := r.coll.UpdateOne(dbc.Context(), bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"display_name":     doc.DisplayName,
		"avatar_url":       doc.AvatarURL,
		"preferences_json": doc.PreferencesJSON,
		"updated_at":       time.Now().UTC(),
	}})
	if err != nil {
		return mapError("user.update", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user", u.ID.String())
	}
	return nil
}
