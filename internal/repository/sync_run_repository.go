package repository

import (
	"quizbank_sync/internal/model"

	"gorm.io/gorm"
)

type SyncRunRepository struct {
	DB *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) *SyncRunRepository {
	return &SyncRunRepository{DB: db}
}

// Create 连同明细一起写入
func (r *SyncRunRepository) Create(run *model.SyncRun) error {
	return r.DB.Create(run).Error
}
