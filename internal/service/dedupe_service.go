package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"quizbank_sync/internal/model"
	"quizbank_sync/internal/util"
	"quizbank_sync/pkg/logger"
	"quizbank_sync/pkg/monitoring"
	"quizbank_sync/pkg/tracing"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DedupeStore 去重需要的存储操作
type DedupeStore interface {
	FindIdentities(ctx context.Context, v model.Variant) ([]model.QuizIdentity, error)
	DeleteByIDs(ctx context.Context, v model.Variant, ids []primitive.ObjectID) (int64, error)
}

type DedupeService struct {
	store DedupeStore
}

func NewDedupeService(store DedupeStore) *DedupeService {
	return &DedupeService{store: store}
}

// Dedupe 删除集合中指纹重复的记录，保留 _id 最小的一条。可重复执行。
// A3、B 没有平铺的 question/options，直接标记为跳过。
func (s *DedupeService) Dedupe(ctx context.Context, v model.Variant) (model.DedupeResult, error) {
	res := model.DedupeResult{Variant: v}
	if v.Collection() == "" {
		return res, fmt.Errorf("%w: %q", util.ErrUnknownVariant, v)
	}
	if !v.Flat() {
		res.Skipped = true
		logger.Log.Info("dedupe skipped", zap.String("collection", v.Collection()))
		return res, nil
	}

	ctx, span := tracing.Start(ctx, "dedupe")
	span.SetAttributes(attribute.String("collection", v.Collection()))
	defer span.End()

	docs, err := s.store.FindIdentities(ctx, v)
	if err != nil {
		span.RecordError(err)
		return res, fmt.Errorf("scan %s: %w", v.Collection(), err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return bytes.Compare(docs[i].ID[:], docs[j].ID[:]) < 0
	})
	res.Scanned = len(docs)

	dups, err := Duplicates(docs)
	if err != nil {
		return res, fmt.Errorf("fingerprint %s: %w", v.Collection(), err)
	}
	if len(dups) == 0 {
		logger.Log.Info("no duplicates", zap.String("collection", v.Collection()), zap.Int("scanned", res.Scanned))
		return res, nil
	}

	ids := make([]primitive.ObjectID, len(dups))
	for i, d := range dups {
		ids[i] = d.ID
	}

	deleted, err := s.store.DeleteByIDs(ctx, v, ids)
	res.Deleted = deleted
	monitoring.DuplicatesDeleted.WithLabelValues(string(v)).Add(float64(deleted))
	if err != nil {
		span.RecordError(err)
		return res, fmt.Errorf("delete duplicates in %s: %w", v.Collection(), err)
	}
	if deleted != int64(len(ids)) {
		return res, fmt.Errorf("%w: %s expected %d, deleted %d", util.ErrDeleteMismatch, v.Collection(), len(ids), deleted)
	}

	logger.Log.Info("duplicates deleted",
		zap.String("collection", v.Collection()),
		zap.Int("scanned", res.Scanned),
		zap.Int64("deleted", deleted),
	)
	return res, nil
}

// DedupeAll 依次处理五个集合；存储不可用时停止
func (s *DedupeService) DedupeAll(ctx context.Context) ([]model.DedupeResult, error) {
	results := make([]model.DedupeResult, 0, len(model.Variants))
	var errs error
	for _, v := range model.Variants {
		res, err := s.Dedupe(ctx, v)
		results = append(results, res)
		if err != nil {
			logger.Log.Error("dedupe failed", zap.String("collection", v.Collection()), zap.Error(err))
			errs = multierr.Append(errs, err)
			if errors.Is(err, util.ErrStoreUnavailable) || ctx.Err() != nil {
				break
			}
		}
	}
	return results, errs
}
