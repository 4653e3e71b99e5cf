package model

import (
	"encoding/json"
	"time"
)

// SyncRun 每次同步的审计记录
type SyncRun struct {
	UUIDBase
	StartedAt  time.Time       `gorm:"not null" json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	TotalFiles int             `gorm:"default:0" json:"totalFiles"`
	Succeeded  int             `gorm:"default:0" json:"succeeded"`
	Skipped    int             `gorm:"default:0" json:"skipped"`
	Abnormal   int             `gorm:"default:0" json:"abnormal"`
	Rejected   int             `gorm:"default:0" json:"rejected"`
	Counts     json.RawMessage `gorm:"type:json" json:"counts"` // 各题型成功数
	Files      []SyncRunFile   `gorm:"foreignKey:RunID" json:"files,omitempty"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

const (
	RunFileAbnormal = "abnormal"
	RunFileSkipped  = "skipped"
	RunFileRejected = "rejected"
)

// SyncRunFile 未成功入库的文件明细
type SyncRunFile struct {
	BaseModel
	RunID  string `gorm:"index;type:varchar(36);not null" json:"runId"`
	Kind   string `gorm:"size:20;not null" json:"kind"` // abnormal, skipped, rejected
	File   string `gorm:"size:512;not null" json:"file"`
	Reason string `gorm:"type:text" json:"reason"`
}

func (SyncRunFile) TableName() string {
	return "sync_run_files"
}

// NewSyncRun 由运行报告生成审计记录
func NewSyncRun(r *RunReport) (*SyncRun, error) {
	counts := make(map[string]int, len(r.Succeeded))
	for v, n := range r.Succeeded {
		counts[string(v)] = n
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return nil, err
	}

	run := &SyncRun{
		UUIDBase:   UUIDBase{ID: r.RunID},
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		TotalFiles: r.TotalFiles,
		Succeeded:  r.SucceededTotal(),
		Skipped:    len(r.SkippedFiles),
		Abnormal:   len(r.AbnormalFiles),
		Rejected:   len(r.RejectedFiles),
		Counts:     raw,
	}
	appendFiles := func(kind string, files []AbnormalFile) {
		for _, f := range files {
			run.Files = append(run.Files, SyncRunFile{RunID: r.RunID, Kind: kind, File: f.File, Reason: f.Error})
		}
	}
	appendFiles(RunFileAbnormal, r.AbnormalFiles)
	appendFiles(RunFileSkipped, r.SkippedFiles)
	appendFiles(RunFileRejected, r.RejectedFiles)
	return run, nil
}
