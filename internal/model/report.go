package model

import "time"

type OutcomeStatus string

const (
	OutcomePersisted OutcomeStatus = "persisted"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeRejected  OutcomeStatus = "rejected"
)

// FileOutcome 每个输入文件最终只有一个结果
type FileOutcome struct {
	File    string
	Status  OutcomeStatus
	Variant Variant
	Reason  string
}

// AbnormalFile 处理失败的文件及原因
type AbnormalFile struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// ChunkResult 单个分块的处理结果
type ChunkResult struct {
	Index    int
	Outcomes []FileOutcome
}

// RunReport 一次同步的汇总
type RunReport struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	TotalFiles    int
	Chunks        int
	Succeeded     map[Variant]int
	AbnormalFiles []AbnormalFile
	SkippedFiles  []AbnormalFile
	RejectedFiles []AbnormalFile
}

func NewRunReport(runID string) *RunReport {
	return &RunReport{
		RunID:     runID,
		StartedAt: time.Now(),
		Succeeded: make(map[Variant]int, len(Variants)),
	}
}

// SucceededTotal 所有题型写入成功的数量
func (r *RunReport) SucceededTotal() int {
	total := 0
	for _, n := range r.Succeeded {
		total += n
	}
	return total
}

// Merge 按分块下标顺序合并
func (r *RunReport) Merge(res ChunkResult) {
	for _, o := range res.Outcomes {
		switch o.Status {
		case OutcomePersisted:
			r.Succeeded[o.Variant]++
		case OutcomeSkipped:
			r.SkippedFiles = append(r.SkippedFiles, AbnormalFile{File: o.File, Error: o.Reason})
		case OutcomeFailed:
			r.AbnormalFiles = append(r.AbnormalFiles, AbnormalFile{File: o.File, Error: o.Reason})
		case OutcomeRejected:
			r.RejectedFiles = append(r.RejectedFiles, AbnormalFile{File: o.File, Error: o.Reason})
		}
	}
}

// DedupeResult 单个集合的去重结果
type DedupeResult struct {
	Variant Variant
	Scanned int
	Deleted int64
	Skipped bool
}

// AnnotateResult 批量标注的结果
type AnnotateResult struct {
	Variant  Variant
	Matched  int
	Modified int64
}
