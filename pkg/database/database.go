package database

import (
	"fmt"
	"quizbank_sync/internal/config"
	"quizbank_sync/internal/model"
	"quizbank_sync/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB 连接同步审计库并迁移审计表
func InitDB(cfg *config.AuditConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Audit database connection established")

	if err := db.AutoMigrate(&model.SyncRun{}, &model.SyncRunFile{}); err != nil {
		return nil, err
	}

	return db, nil
}

// CloseDB 释放 gorm 底层连接池
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
