package service

import (
	"os"
	"quizbank_sync/internal/model"
	"quizbank_sync/pkg/logger"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Reporter 接收进度和最终报告。Tick 会被多个 worker 并发调用。
type Reporter interface {
	Start(total int)
	Tick(outcome model.FileOutcome)
	Done(report *model.RunReport)
}

// ConsoleReporter stderr 进度条 + 结束时输出结构化日志
type ConsoleReporter struct {
	bar *progressbar.ProgressBar
}

func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

func (r *ConsoleReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("syncing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			os.Stderr.WriteString("\n")
		}),
	)
}

func (r *ConsoleReporter) Tick(outcome model.FileOutcome) {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

func (r *ConsoleReporter) Done(report *model.RunReport) {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	LogReport(report)
}

// LogReport 输出汇总，并逐条列出异常文件
func LogReport(report *model.RunReport) {
	if report == nil {
		return
	}

	fields := []zap.Field{
		zap.String("run_id", report.RunID),
		zap.Int("total", report.TotalFiles),
		zap.Int("chunks", report.Chunks),
		zap.Int("succeeded", report.SucceededTotal()),
		zap.Int("abnormal", len(report.AbnormalFiles)),
		zap.Int("skipped", len(report.SkippedFiles)),
		zap.Int("rejected", len(report.RejectedFiles)),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	}
	variants := make([]string, 0, len(report.Succeeded))
	for v := range report.Succeeded {
		variants = append(variants, string(v))
	}
	sort.Strings(variants)
	for _, v := range variants {
		fields = append(fields, zap.Int("succeeded_"+v, report.Succeeded[model.Variant(v)]))
	}
	logger.Log.Info("sync finished", fields...)

	for _, f := range report.AbnormalFiles {
		logger.Log.Warn("abnormal file", zap.String("file", f.File), zap.String("error", f.Error))
	}
	for _, f := range report.RejectedFiles {
		logger.Log.Warn("rejected by store", zap.String("file", f.File), zap.String("error", f.Error))
	}
	for _, f := range report.SkippedFiles {
		logger.Log.Debug("skipped file", zap.String("file", f.File), zap.String("reason", f.Error))
	}
}
