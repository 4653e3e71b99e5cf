package repository

import (
	"context"
	"errors"
	"fmt"
	"quizbank_sync/internal/model"
	"quizbank_sync/internal/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuizRepository 五个题型集合的读写
type QuizRepository struct {
	DB *mongo.Database
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) collection(v model.Variant) (*mongo.Collection, error) {
	name := v.Collection()
	if name == "" {
		return nil, fmt.Errorf("%w: %q", util.ErrUnknownVariant, v)
	}
	return r.DB.Collection(name), nil
}

// InsertMany 无序插入。部分文档被拒绝时返回已写入条数、被拒绝的下标和非 nil 错误；
// 连接类错误包装为 util.ErrStoreUnavailable。
func (r *QuizRepository) InsertMany(ctx context.Context, v model.Variant, docs []interface{}) (int, []model.InsertFailure, error) {
	if len(docs) == 0 {
		return 0, nil, nil
	}
	coll, err := r.collection(v)
	if err != nil {
		return 0, nil, err
	}

	_, err = coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(docs), nil, nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
		failures := make([]model.InsertFailure, 0, len(bwe.WriteErrors))
		for _, we := range bwe.WriteErrors {
			failures = append(failures, model.InsertFailure{
				Index:   we.Index,
				Code:    we.Code,
				Message: we.Message,
			})
		}
		return len(docs) - len(failures), failures, err
	}
	return 0, nil, classify(err)
}

// FindIdentities 按 _id 升序读取去重所需字段
func (r *QuizRepository) FindIdentities(ctx context.Context, v model.Variant) ([]model.QuizIdentity, error) {
	coll, err := r.collection(v)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetProjection(model.IdentityProjection).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	var out []model.QuizIdentity
	if err := cursor.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// DeleteByIDs 一次性删除给定主键
func (r *QuizRepository) DeleteByIDs(ctx context.Context, v model.Variant, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	coll, err := r.collection(v)
	if err != nil {
		return 0, err
	}

	res, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, classify(err)
	}
	return res.DeletedCount, nil
}

// FindQuestions 读取标注任务需要的字段
func (r *QuizRepository) FindQuestions(ctx context.Context, v model.Variant, filter bson.M) ([]model.QuestionDoc, error) {
	coll, err := r.collection(v)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetProjection(bson.D{
		{Key: "_id", Value: 1},
		{Key: "question", Value: 1},
		{Key: "extractedYear", Value: 1},
		{Key: "source", Value: 1},
	})
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	var out []model.QuestionDoc
	if err := cursor.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// UpdateFields 通过 bulkWrite 批量执行 updateOne($set)
func (r *QuizRepository) UpdateFields(ctx context.Context, v model.Variant, updates []model.FieldUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	coll, err := r.collection(v)
	if err != nil {
		return 0, err
	}

	models := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.ID}).
			SetUpdate(bson.M{"$set": u.Set}))
	}

	res, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		if res != nil {
			return res.ModifiedCount, classify(err)
		}
		return 0, classify(err)
	}
	return res.ModifiedCount, nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %v", util.ErrStoreUnavailable, err)
	}
	return err
}
