package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"quizbank_sync/internal/app"
	"quizbank_sync/internal/config"
	"quizbank_sync/internal/util"
	"quizbank_sync/pkg/logger"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件 config.yaml 所在目录")
	dedupeOnly := flag.Bool("dedupe", false, "只执行去重，不同步")
	watch := flag.Bool("watch", false, "同步完成后继续监听输入目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.DedupeOnly = *dedupeOnly
	cfg.Sync.Watch = cfg.Sync.Watch || *watch

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Error("quizbank sync failed", zap.Error(err))
		logger.Log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Log.Warn("Failed to release connections", zap.Error(err))
		}
	}()

	if cfg.DedupeOnly {
		results, err := application.RunDedupe(ctx)
		for _, r := range results {
			logger.Log.Info("dedupe result",
				zap.String("collection", r.Variant.Collection()),
				zap.Int("scanned", r.Scanned),
				zap.Int64("deleted", r.Deleted),
				zap.Bool("skipped", r.Skipped),
			)
		}
		return err
	}

	if _, err := application.RunSync(ctx); err != nil {
		return err
	}

	if cfg.Sync.Watch {
		if err := application.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	logger.Log.Info("done", zap.String("finished_at", time.Now().Format(util.TimeFormat)))
	return nil
}
