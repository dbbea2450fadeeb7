package mongorepo

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/datatypes"

	learningrepo "github.com/yungbote/tutor-backend/internal/data/repos/learning"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type qaRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewQARepo(db *mongo.Database, baseLog *logger.Logger) learningrepo.QARepo {
	return &qaRepo{coll: db.Collection(CollQA), log: baseLog.With("repo", "MongoQARepo")}
}

func (r *qaRepo) Create(dbc dbctx.Context, item *types.QAItem) error {
	if item == nil {
		return apperr.Invalid("qa item is nil")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(dbc.Context(), toQADoc(item)); err != nil {
		return mapError("qa.create", err)
	}
	return nil
}

func (r *qaRepo) GetForUser(dbc dbctx.Context, userID, id uuid.UUID) (*types.QAItem, error) {
	var doc qaDoc
	err := r.coll.FindOne(dbc.Context(), bson.M{"_id": id.String(), "user_id": userID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("qa_item", id.String())
	}
	if err != nil {
		return nil, mapError("qa.get", err)
	}
	out, err := doc.toDomain()
	if err != nil {
		return nil, apperr.Storage("qa.decode", err)
	}
	return out, nil
}

func (r *qaRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, f learningrepo.QAFilter) ([]*types.QAItem, error) {
	ctx := dbc.Context()
	filter := bson.M{"user_id": userID.String()}
	if f.LessonID != nil {
		filter["lesson_id"] = f.LessonID.String()
	}
	cur, err := r.coll.Find(ctx, filter, findOptions(bson.D{{Key: "created_at", Value: -1}}, f.Limit, f.Skip))
	if err != nil {
		return nil, mapError("qa.list", err)
	}
	var docs []qaDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError("qa.list", err)
	}
	out := make([]*types.QAItem, 0, len(docs))
	for _, d := range docs {
		q, err := d.toDomain()
		if err != nil {
			r.log.Warn("skipping undecodable qa item", "id", d.ID, "error", err)
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// UpdateFields accepts the SQL column names used by the gorm repo and
// translates them to document fields.
func (r *qaRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range updates {
		switch k {
		case "refs":
			set["references"] = referenceDocs(v)
		default:
			set[k] = v
		}
	}
	res, err := r.coll.UpdateOne(dbc.Context(), bson.M{"_id": id.String()}, bson.M{"$set": set})
	if err != nil {
		return mapError("qa.update", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("qa_item", id.String())
	}
	return nil
}

func referenceDocs(v any) []referenceDoc {
	var refs []types.Reference
	switch t := v.(type) {
	case []types.Reference:
		refs = t
	case datatypes.JSON:
		_ = json.Unmarshal(t, &refs)
	case []byte:
		_ = json.Unmarshal(t, &refs)
	}
	out := make([]referenceDoc, 0, len(refs))
	for _, r := range refs {
		out = append(out, referenceDoc{Title: r.Title, Source: r.Source, URL: r.URL})
	}
	return out
}
