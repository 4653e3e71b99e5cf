package service

import (
	"context"
	"fmt"
	"quizbank_sync/internal/model"
	"quizbank_sync/pkg/monitoring"
	"quizbank_sync/pkg/tracing"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// QuizStore 批量写入需要的存储操作。
// 部分文档被拒绝时返回已写入条数、失败下标以及非 nil 错误。
type QuizStore interface {
	InsertMany(ctx context.Context, v model.Variant, docs []interface{}) (int, []model.InsertFailure, error)
}

// PersistError 至少一个题型写入失败；Err 由 multierr 合并各题型的错误
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return "persist batch: " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

type BulkWriter struct {
	store QuizStore
}

func NewBulkWriter(store QuizStore) *BulkWriter {
	return &BulkWriter{store: store}
}

// Persist 每个非空题型一次无序 InsertMany，各题型并发执行并等待全部结束。
// 已写入的记录不回滚；报告中包含每个题型的写入数和每条被拒绝记录对应的文件。
func (w *BulkWriter) Persist(ctx context.Context, batch *model.Batch) (*model.PersistReport, error) {
	report := &model.PersistReport{Inserted: make(map[model.Variant]int, len(model.Variants))}
	if batch == nil || batch.Len() == 0 {
		return report, nil
	}

	ctx, span := tracing.Start(ctx, "persist")
	span.SetAttributes(attribute.Int("records", batch.Len()))
	defer span.End()

	var (
		mu   sync.Mutex
		g    errgroup.Group
		errs error
	)
	for _, v := range model.Variants {
		bucket := batch.Bucket(v)
		if bucket == nil {
			continue
		}

		// 各题型的错误都要保留，goroutine 始终返回 nil，错误合并到 errs
		g.Go(func() error {
			docs := make([]interface{}, len(bucket.Quizzes))
			for i, q := range bucket.Quizzes {
				docs[i] = q
			}
			inserted, failures, err := w.store.InsertMany(ctx, v, docs)
			monitoring.RecordsInserted.WithLabelValues(string(v)).Add(float64(inserted))

			mu.Lock()
			defer mu.Unlock()
			report.Inserted[v] += inserted
			for _, f := range failures {
				rejected := model.RejectedDoc{Variant: v, Index: f.Index, Code: f.Code, Reason: f.Message}
				if f.Index >= 0 && f.Index < len(bucket.Files) {
					rejected.File = bucket.Files[f.Index]
				}
				report.Rejected = append(report.Rejected, rejected)
			}
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("insert into %s: %w", v.Collection(), err))
			}
			return nil
		})
	}
	_ = g.Wait()

	order := make(map[model.Variant]int, len(model.Variants))
	for i, v := range model.Variants {
		order[v] = i
	}
	sort.Slice(report.Rejected, func(i, j int) bool {
		a, b := report.Rejected[i], report.Rejected[j]
		if a.Variant != b.Variant {
			return order[a.Variant] < order[b.Variant]
		}
		return a.Index < b.Index
	})

	if errs != nil {
		span.RecordError(errs)
		return report, &PersistError{Err: errs}
	}
	return report, nil
}
