package database

import (
	"context"
	"fmt"
	"quizbank_sync/internal/config"
	"quizbank_sync/internal/util"
	"quizbank_sync/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// InitMongo 建立连接并 ping，失败时已经断开连接
func InitMongo(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStoreUnavailable, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %v", util.ErrStoreUnavailable, err)
	}

	logger.Log.Info("MongoDB connection established", zap.String("database", cfg.Database))
	return client, nil
}
