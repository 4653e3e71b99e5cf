package app

import (
	"context"
	"fmt"
	"quizbank_sync/internal/config"
	"quizbank_sync/internal/model"
	"quizbank_sync/internal/repository"
	"quizbank_sync/internal/service"
	"quizbank_sync/internal/util"
	"quizbank_sync/pkg/database"
	"quizbank_sync/pkg/dirwatcher"
	"quizbank_sync/pkg/logger"
	"quizbank_sync/pkg/monitoring"
	"quizbank_sync/pkg/tracing"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 持有所有外部连接，由 main 在任何退出路径上调用 Close 释放
type App struct {
	Config *config.Config
	Mongo  *mongo.Client
	DB     *gorm.DB      // 审计库，未启用时为 nil
	Redis  *redis.Client // 文件台账，未启用时为 nil

	tracer   *sdktrace.TracerProvider
	repos    *repositories
	services *services
}

type repositories struct {
	quiz    *repository.QuizRepository
	ledger  *repository.FileLedgerRepository
	syncRun *repository.SyncRunRepository
}

type services struct {
	sync     *service.SyncService
	dedupe   *service.DedupeService
	annotate *service.AnnotateService
}

func (a *App) initRepositories() *repositories {
	repos := &repositories{
		quiz: repository.NewQuizRepository(a.Mongo.Database(a.Config.Mongo.Database)),
	}
	if a.Redis != nil {
		repos.ledger = repository.NewFileLedgerRepository(a.Redis, a.Config.Redis.LedgerKey)
	}
	if a.DB != nil {
		repos.syncRun = repository.NewSyncRunRepository(a.DB)
	}
	return repos
}

func (a *App) initServices(repos *repositories, source service.QuizSource) *services {
	var ledger service.FileLedger = service.NewMemoryLedger()
	if repos.ledger != nil {
		ledger = repos.ledger
	}

	return &services{
		sync: service.NewSyncService(
			source,
			service.NewBulkWriter(repos.quiz),
			ledger,
			service.NewConsoleReporter(),
			&a.Config.Sync,
		),
		dedupe:   service.NewDedupeService(repos.quiz),
		annotate: service.NewAnnotateService(repos.quiz),
	}
}

// NewApp 建立连接并组装服务；任何一步失败都会释放已经建立的连接
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	client, err := database.InitMongo(ctx, &cfg.Mongo)
	if err != nil {
		return nil, err
	}
	app.Mongo = client

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		app.Redis = rdb
	}

	if cfg.Audit.Enabled {
		db, err := database.InitDB(&cfg.Audit)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init audit database: %w", err)
		}
		app.DB = db
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Warn("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	source, err := service.NewQuizSource(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.repos = app.initRepositories()
	app.services = app.initServices(app.repos, source)
	return app, nil
}

// RunSync 完整同步一次输入来源
func (a *App) RunSync(ctx context.Context) (*model.RunReport, error) {
	report, err := a.services.sync.Run(ctx)
	a.finishRun(report)
	return report, err
}

// RunDedupe 依次对五个集合去重
func (a *App) RunDedupe(ctx context.Context) ([]model.DedupeResult, error) {
	results, err := a.services.dedupe.DedupeAll(ctx)
	a.pushMetrics()
	return results, err
}

func (a *App) Annotate(ctx context.Context, task string, v model.Variant, from, to string) (model.AnnotateResult, error) {
	return a.services.annotate.Run(ctx, task, v, from, to)
}

// Watch 监听本地输入目录，新文件落盘后同步，直到 ctx 结束
func (a *App) Watch(ctx context.Context) error {
	if a.Config.Sync.Source != util.SourceLocal {
		return fmt.Errorf("%w: watch mode needs a local source, got %q", util.ErrUnsupportedSource, a.Config.Sync.Source)
	}

	if a.Redis == nil {
		logger.Log.Warn("Redis ledger disabled, already synced files are only tracked for this process")
	}
	logger.Log.Info("Watching input directory", zap.String("dir", a.Config.Sync.InputDir))
	return dirwatcher.WatchDir(ctx, a.Config.Sync.InputDir, util.WatchDebounce, util.IsQuizFile,
		func(ctx context.Context, names []string) {
			report, err := a.services.sync.RunFiles(ctx, names)
			a.finishRun(report)
			if err != nil {
				logger.Log.Error("Incremental sync failed", zap.Strings("files", names), zap.Error(err))
			}
		})
}

func (a *App) finishRun(report *model.RunReport) {
	if report != nil && a.repos.syncRun != nil {
		run, err := model.NewSyncRun(report)
		if err == nil {
			err = a.repos.syncRun.Create(run)
		}
		if err != nil {
			logger.Log.Error("Failed to save sync run", zap.String("run_id", report.RunID), zap.Error(err))
		}
	}
	a.pushMetrics()
}

func (a *App) pushMetrics() {
	if err := monitoring.Push(a.Config.Metrics.PushURL, a.Config.Metrics.Job); err != nil {
		logger.Log.Warn("Failed to push metrics", zap.Error(err))
	}
}

// Close 释放所有连接，可以重复调用
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs error
	if a.tracer != nil {
		errs = multierr.Append(errs, a.tracer.Shutdown(ctx))
		a.tracer = nil
	}
	if a.Redis != nil {
		errs = multierr.Append(errs, a.Redis.Close())
		a.Redis = nil
	}
	if a.DB != nil {
		errs = multierr.Append(errs, database.CloseDB(a.DB))
		a.DB = nil
	}
	if a.Mongo != nil {
		errs = multierr.Append(errs, a.Mongo.Disconnect(ctx))
		a.Mongo = nil
	}
	return errs
}
