package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"quizbank_sync/internal/config"
	"quizbank_sync/internal/model"
	"quizbank_sync/internal/util"
	"quizbank_sync/pkg/logger"
	"quizbank_sync/pkg/monitoring"
	"quizbank_sync/pkg/tracing"
	"quizbank_sync/pkg/workerpool"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SyncService 把输入文件分块、转换并批量写入。
// 每个分块独占自己的累加器，结果按分块下标写入预分配的切片。
type SyncService struct {
	source    QuizSource
	converter *Converter
	writer    *BulkWriter
	ledger    FileLedger
	reporter  Reporter
	pool      *workerpool.Pool
	batchSize int
}

func NewSyncService(source QuizSource, writer *BulkWriter, ledger FileLedger, reporter Reporter, cfg *config.SyncConfig) *SyncService {
	if ledger == nil {
		ledger = NopLedger{}
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = util.DefaultBatchSize
	}
	return &SyncService{
		source:    source,
		converter: NewConverter(),
		writer:    writer,
		ledger:    ledger,
		reporter:  reporter,
		pool:      workerpool.New(cfg.Concurrency, cfg.MinInterval),
		batchSize: batchSize,
	}
}

// Chunk 只按位置切分，结果与输入顺序一致
func Chunk(names []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]string, 0, (len(names)+size-1)/size)
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		chunks = append(chunks, names[start:end:end])
	}
	return chunks
}

// Run 列出输入来源中的全部文件并同步
func (s *SyncService) Run(ctx context.Context) (*model.RunReport, error) {
	names, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list input files: %w", err)
	}
	logger.Log.Info("input files listed", zap.Int("count", len(names)))
	return s.RunFiles(ctx, names)
}

// RunFiles 同步给定的文件。
// 只有存储不可用会中止整个运行，此时返回已完成部分的报告和错误。
func (s *SyncService) RunFiles(ctx context.Context, names []string) (*model.RunReport, error) {
	report := model.NewRunReport(uuid.NewString())

	ctx, span := tracing.Start(ctx, "sync.run")
	span.SetAttributes(attribute.String("run_id", report.RunID), attribute.Int("files", len(names)))
	defer span.End()

	chunks := Chunk(names, s.batchSize)
	report.TotalFiles = len(names)
	report.Chunks = len(chunks)

	if s.reporter != nil {
		s.reporter.Start(len(names))
	}

	results := make([]*model.ChunkResult, len(chunks))
	err := s.pool.Run(ctx, len(chunks), func(ctx context.Context, i int) error {
		res, err := s.processChunk(ctx, i, chunks[i])
		results[i] = res
		return err
	})

	for _, res := range results {
		if res != nil {
			report.Merge(*res)
		}
	}
	report.FinishedAt = time.Now()

	if s.reporter != nil {
		s.reporter.Done(report)
	}
	if err != nil {
		span.RecordError(err)
		logger.Log.Error("sync aborted", zap.String("run_id", report.RunID), zap.Error(err))
		return report, err
	}
	return report, nil
}

func (s *SyncService) processChunk(ctx context.Context, index int, names []string) (*model.ChunkResult, error) {
	start := time.Now()
	monitoring.ChunksInFlight.Inc()
	defer func() {
		monitoring.ChunksInFlight.Dec()
		monitoring.ChunkDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, span := tracing.Start(ctx, "sync.chunk")
	span.SetAttributes(attribute.Int("chunk", index), attribute.Int("files", len(names)))
	defer span.End()

	res := &model.ChunkResult{Index: index, Outcomes: make([]model.FileOutcome, 0, len(names))}
	batch := model.NewBatch()
	pending := make(map[string]int, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		q, err := s.loadFile(ctx, name)
		if err != nil {
			status := model.OutcomeFailed
			if errors.Is(err, util.ErrUnsupportedMode) || errors.Is(err, util.ErrAlreadySynced) {
				status = model.OutcomeSkipped
			}
			s.record(res, model.FileOutcome{File: name, Status: status, Reason: err.Error()})
			continue
		}

		batch.Add(name, q)
		pending[name] = len(res.Outcomes)
		res.Outcomes = append(res.Outcomes, model.FileOutcome{File: name, Status: model.OutcomePersisted, Variant: q.QuizType()})
	}

	if batch.Len() == 0 {
		return res, nil
	}

	persist, err := s.writer.Persist(ctx, batch)
	s.settle(res, batch, pending, persist, err)

	var persisted []string
	for _, o := range res.Outcomes {
		if _, ok := pending[o.File]; ok {
			s.tick(o)
			if o.Status == model.OutcomePersisted {
				persisted = append(persisted, o.File)
			}
		}
	}
	if markErr := s.ledger.Mark(ctx, persisted...); markErr != nil {
		logger.Log.Warn("ledger update failed", zap.Int("chunk", index), zap.Error(markErr))
	}

	if errors.Is(err, util.ErrStoreUnavailable) {
		return res, err
	}
	if err != nil {
		logger.Log.Warn("chunk persisted with failures", zap.Int("chunk", index), zap.Error(err))
	}
	return res, nil
}

// settle 根据写入结果修正批次内文件的状态
func (s *SyncService) settle(res *model.ChunkResult, batch *model.Batch, pending map[string]int, persist *model.PersistReport, err error) {
	rejected := make(map[model.Variant]int)
	if persist != nil {
		for _, r := range persist.Rejected {
			rejected[r.Variant]++
			if i, ok := pending[r.File]; ok {
				res.Outcomes[i].Status = model.OutcomeRejected
				res.Outcomes[i].Reason = r.Reason
			}
		}
	}
	if err == nil {
		return
	}

	// 某个题型整体失败（没有逐条结果）时，该题型未被拒绝的文件都记为失败
	for _, v := range model.Variants {
		bucket := batch.Bucket(v)
		if bucket == nil {
			continue
		}
		inserted := 0
		if persist != nil {
			inserted = persist.Inserted[v]
		}
		if inserted+rejected[v] == len(bucket.Files) {
			continue
		}
		for _, file := range bucket.Files {
			i := pending[file]
			if res.Outcomes[i].Status == model.OutcomePersisted {
				res.Outcomes[i].Status = model.OutcomeFailed
				res.Outcomes[i].Reason = err.Error()
			}
		}
	}
}

func (s *SyncService) record(res *model.ChunkResult, o model.FileOutcome) {
	res.Outcomes = append(res.Outcomes, o)
	s.tick(o)
}

func (s *SyncService) tick(o model.FileOutcome) {
	monitoring.FilesProcessed.WithLabelValues(string(o.Status)).Inc()
	if s.reporter != nil {
		s.reporter.Tick(o)
	}
}

func (s *SyncService) loadFile(ctx context.Context, name string) (model.Quiz, error) {
	seen, err := s.ledger.Seen(ctx, name)
	if err != nil {
		logger.Log.Warn("ledger lookup failed", zap.String("file", name), zap.Error(err))
	} else if seen {
		return nil, util.ErrAlreadySynced
	}

	data, err := s.source.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var raw model.RawQuizRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return s.converter.Convert(&raw)
}
