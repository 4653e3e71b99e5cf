package service

import (
	"context"
	"fmt"
	"quizbank_sync/internal/model"
	"quizbank_sync/internal/util"
	"quizbank_sync/pkg/logger"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// AnnotateStore 标注任务需要的存储操作
type AnnotateStore interface {
	FindQuestions(ctx context.Context, v model.Variant, filter bson.M) ([]model.QuestionDoc, error)
	UpdateFields(ctx context.Context, v model.Variant, updates []model.FieldUpdate) (int64, error)
}

const (
	TaskExtractYear  = "extract-year"
	TaskTagSource    = "tag-source"
	TaskRenameSource = "rename-source"
)

// AnnotateService 对已入库的平铺题型（A1/A2/X）做批量字段标注
type AnnotateService struct {
	store AnnotateStore
	now   func() time.Time
}

func NewAnnotateService(store AnnotateStore) *AnnotateService {
	return &AnnotateService{store: store, now: time.Now}
}

// Run 按任务名分发
func (s *AnnotateService) Run(ctx context.Context, task string, v model.Variant, from, to string) (model.AnnotateResult, error) {
	switch task {
	case TaskExtractYear:
		return s.ExtractYear(ctx, v)
	case TaskTagSource:
		return s.TagSource(ctx, v)
	case TaskRenameSource:
		return s.RenameSource(ctx, v, from, to)
	}
	return model.AnnotateResult{Variant: v}, fmt.Errorf("unknown annotate task %q", task)
}

// ExtractYear 题干以四位年份开头的记录写入 extractedYear 和 processedAt
func (s *AnnotateService) ExtractYear(ctx context.Context, v model.Variant) (model.AnnotateResult, error) {
	res := model.AnnotateResult{Variant: v}
	if !v.Flat() {
		return res, fmt.Errorf("%w: %s", util.ErrFlatVariantOnly, v)
	}

	docs, err := s.store.FindQuestions(ctx, v, bson.M{"question": bson.M{"$regex": util.LeadingYearPattern}})
	if err != nil {
		return res, err
	}

	now := s.now()
	var updates []model.FieldUpdate
	for _, doc := range docs {
		year, ok := util.ParseLeadingYear(doc.Question)
		if !ok {
			continue
		}
		updates = append(updates, model.FieldUpdate{
			ID:  doc.ID,
			Set: bson.M{"extractedYear": year, "processedAt": now},
		})
	}
	return s.apply(ctx, TaskExtractYear, res, updates)
}

// TagSource 有 extractedYear 的记录标为真题，其余标为题库
func (s *AnnotateService) TagSource(ctx context.Context, v model.Variant) (model.AnnotateResult, error) {
	res := model.AnnotateResult{Variant: v}
	if !v.Flat() {
		return res, fmt.Errorf("%w: %s", util.ErrFlatVariantOnly, v)
	}

	docs, err := s.store.FindQuestions(ctx, v, bson.M{})
	if err != nil {
		return res, err
	}

	updates := make([]model.FieldUpdate, 0, len(docs))
	for _, doc := range docs {
		source := util.SourceQuestionBank
		if doc.ExtractedYear != nil && *doc.ExtractedYear != 0 {
			source = util.SourceRealExam
		}
		updates = append(updates, model.FieldUpdate{ID: doc.ID, Set: bson.M{"source": source}})
	}
	return s.apply(ctx, TaskTagSource, res, updates)
}

// RenameSource source 等于 from 的记录改为 to
func (s *AnnotateService) RenameSource(ctx context.Context, v model.Variant, from, to string) (model.AnnotateResult, error) {
	res := model.AnnotateResult{Variant: v}
	if !v.Flat() {
		return res, fmt.Errorf("%w: %s", util.ErrFlatVariantOnly, v)
	}
	if from == "" || to == "" {
		return res, fmt.Errorf("rename-source needs both from and to")
	}

	docs, err := s.store.FindQuestions(ctx, v, bson.M{"source": from})
	if err != nil {
		return res, err
	}

	var updates []model.FieldUpdate
	for _, doc := range docs {
		if doc.Source != from {
			continue
		}
		updates = append(updates, model.FieldUpdate{ID: doc.ID, Set: bson.M{"source": to}})
	}
	return s.apply(ctx, TaskRenameSource, res, updates)
}

func (s *AnnotateService) apply(ctx context.Context, task string, res model.AnnotateResult, updates []model.FieldUpdate) (model.AnnotateResult, error) {
	res.Matched = len(updates)
	if len(updates) == 0 {
		logger.Log.Info("nothing to annotate", zap.String("task", task), zap.String("collection", res.Variant.Collection()))
		return res, nil
	}

	modified, err := s.store.UpdateFields(ctx, res.Variant, updates)
	res.Modified = modified
	if err != nil {
		return res, fmt.Errorf("%s on %s: %w", task, res.Variant.Collection(), err)
	}

	logger.Log.Info("annotate finished",
		zap.String("task", task),
		zap.String("collection", res.Variant.Collection()),
		zap.Int("matched", res.Matched),
		zap.Int64("modified", modified),
	)
	return res, nil
}
