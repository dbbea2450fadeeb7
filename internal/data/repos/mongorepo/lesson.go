package mongorepo

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	learningrepo "github.com/yungbote/tutor-backend/internal/data/repos/learning"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type lessonRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewLessonRepo(db *mongo.Database, baseLog *logger.Logger) learningrepo.LessonRepo {
	return &lessonRepo{coll: db.Collection(CollLessons), log: baseLog.With("repo", "MongoLessonRepo")}
}

func (r *lessonRepo) prepare(l *types.Lesson) error {
	if l == nil {
		return apperr.Invalid("lesson is nil")
	}
	d, ok := types.NormalizeDifficulty(l.Difficulty)
	if !ok {
		return apperr.Invalid("unknown difficulty %q", l.Difficulty)
	}
	l.Difficulty = d
	if strings.TrimSpace(l.Title) == "" {
		return apperr.Invalid("lesson title is required")
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
	return nil
}

func (r *lessonRepo) Create(dbc dbctx.Context, lessons []*types.Lesson) ([]*types.Lesson, error) {
	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}
	docs := make([]lessonDoc, 0, len(lessons))
	for _, l := range lessons {
		if err := r.prepare(l); err != nil {
			return nil, err
		}
		docs = append(docs, toLessonDoc(l))
	}
	if _, err := r.coll.InsertMany(dbc.Context(), docs); err != nil {
		return nil, mapError("lesson.create", err)
	}
	return lessons, nil
}

func (r *lessonRepo) Upsert(dbc dbctx.Context, lesson *types.Lesson) error {
	if lesson == nil {
		return nil
	}
	if err := r.prepare(lesson); err != nil {
		return err
	}
	lesson.UpdatedAt = time.Now().UTC()
	doc := toLessonDoc(lesson)
	_, err := r.coll.ReplaceOne(dbc.Context(), bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return mapError("lesson.upsert", err)
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, apperr.NotFound("lesson", "")
	}
	var doc lessonDoc
	err := r.coll.FindOne(dbc.Context(), bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("lesson", id.String())
	}
	if err != nil {
		return nil, mapError("lesson.get", err)
	}
	out, err := doc.toDomain()
	if err != nil {
		return nil, apperr.Storage("lesson.decode", err)
	}
	return out, nil
}

func (r *lessonRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error) {
	var results []*types.Lesson
	if len(ids) == 0 {
		return results, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}
	return r.find(dbc, "lesson.get_many", bson.M{"_id": bson.M{"$in": keys}}, options.Find())
}

func (r *lessonRepo) List(dbc dbctx.Context, f learningrepo.LessonFilter) ([]*types.Lesson, error) {
	filter := bson.M{}
	if s := strings.TrimSpace(f.Subject); s != "" {
		filter["subject"] = s
	}
	if d := strings.TrimSpace(f.Difficulty); d != "" {
		filter["difficulty"] = strings.ToLower(d)
	}
	if f.CreatedBy != nil {
		filter["created_by"] = f.CreatedBy.String()
	}
	if len(f.ExcludeIDs) > 0 {
		keys := make([]string, 0, len(f.ExcludeIDs))
		for _, id := range f.ExcludeIDs {
			keys = append(keys, id.String())
		}
		filter["_id"] = bson.M{"$nin": keys}
	}
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	return r.find(dbc, "lesson.list", filter, findOptions(sort, f.Limit, f.Skip))
}

func (r *lessonRepo) find(dbc dbctx.Context, op string, filter any, opts *options.FindOptionsBuilder) ([]*types.Lesson, error) {
	ctx := dbc.Context()
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(op, err)
	}
	var docs []lessonDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError(op, err)
	}
	results := make([]*types.Lesson, 0, len(docs))
	for _, d := range docs {
		l, err := d.toDomain()
		if err != nil {
			r.log.Warn("skipping undecodable lesson", "id", d.ID, "error", err)
			continue
		}
		results = append(results, l)
	}
	return results, nil
}

func (r *lessonRepo) Count(dbc dbctx.Context) (int64, error) {
	n, err := r.coll.CountDocuments(dbc.Context(), bson.M{})
	if err != nil {
		return 0, mapError("lesson.count", err)
	}
	return n, nil
}

func (r *lessonRepo) CountBySubject(dbc dbctx.Context) (map[string]int64, error) {
	ctx := dbc.Context()
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$subject"}, {Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapError("lesson.count_by_subject", err)
	}
	var rows []struct {
		Subject string `bson:"_id"`
		N       int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, mapError("lesson.count_by_subject", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Subject] = row.N
	}
	return out, nil
}
