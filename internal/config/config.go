package config

import (
	"errors"
	"fmt"
	"quizbank_sync/internal/util"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mongo   MongoConfig   `mapstructure:"mongo" yaml:"mongo"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Minio   MinioConfig   `mapstructure:"minio" yaml:"minio"`
	OSS     OSSConfig     `mapstructure:"oss" yaml:"oss"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Audit   AuditConfig   `mapstructure:"audit" yaml:"audit"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	DedupeOnly bool `mapstructure:"-" yaml:"-"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri" yaml:"uri"`
	Database       string        `mapstructure:"database" yaml:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

type SyncConfig struct {
	Source      string        `mapstructure:"source" yaml:"source"` // local, minio, oss
	InputDir    string        `mapstructure:"input_dir" yaml:"input_dir"`
	Prefix      string        `mapstructure:"prefix" yaml:"prefix"`
	BatchSize   int           `mapstructure:"batch_size" yaml:"batch_size"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	MinInterval time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	Watch       bool          `mapstructure:"watch" yaml:"watch"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

type OSSConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	Password  string `mapstructure:"password" yaml:"password"`
	DB        int    `mapstructure:"db" yaml:"db"`
	LedgerKey string `mapstructure:"ledger_key" yaml:"ledger_key"`
}

// AuditConfig 同步审计库（MySQL）
type AuditConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	DBName   string `mapstructure:"dbname" yaml:"dbname"`
	Charset  string `mapstructure:"charset" yaml:"charset"`
}

type MetricsConfig struct {
	PushURL string `mapstructure:"push_url" yaml:"push_url"`
	Job     string `mapstructure:"job" yaml:"job"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint" yaml:"collector_endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "QuizBank")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("sync.source", util.SourceLocal)
	v.SetDefault("sync.input_dir", "./tests_json_vault")
	v.SetDefault("sync.batch_size", util.DefaultBatchSize)
	v.SetDefault("sync.concurrency", util.DefaultConcurrency)
	v.SetDefault("sync.min_interval", util.DefaultMinInterval)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/sync.log")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.ledger_key", "quizbank:synced_files")

	v.SetDefault("audit.port", 3306)
	v.SetDefault("audit.charset", "utf8mb4")

	v.SetDefault("metrics.job", "quizbank_sync")
}

// Default 只包含默认值的配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// LoadConfig 读取 path 目录下的 config.yaml；文件不存在时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("QUIZ_SYNC")
	v.AutomaticEnv()

	setDefaults(v)

	// Mongo
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DATABASE")

	// Sync
	v.BindEnv("sync.source", "SYNC_SOURCE")
	v.BindEnv("sync.input_dir", "SYNC_INPUT_DIR")
	v.BindEnv("sync.batch_size", "SYNC_BATCH_SIZE")
	v.BindEnv("sync.concurrency", "SYNC_CONCURRENCY")
	v.BindEnv("sync.min_interval", "SYNC_MIN_INTERVAL")

	// MinIO / OSS
	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")
	v.BindEnv("oss.endpoint", "OSS_ENDPOINT")
	v.BindEnv("oss.access_key", "OSS_ACCESS_KEY")
	v.BindEnv("oss.secret_key", "OSS_SECRET_KEY")
	v.BindEnv("oss.bucket", "OSS_BUCKET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Audit
	v.BindEnv("audit.host", "AUDIT_DB_HOST")
	v.BindEnv("audit.user", "AUDIT_DB_USER")
	v.BindEnv("audit.password", "AUDIT_DB_PASSWORD")
	v.BindEnv("audit.dbname", "AUDIT_DB_NAME")

	// Tracing / Metrics
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")
	v.BindEnv("metrics.push_url", "METRICS_PUSH_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查同步参数
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo.uri is required")
	}
	if c.Mongo.Database == "" {
		return errors.New("mongo.database is required")
	}
	if c.Sync.BatchSize <= 0 {
		return fmt.Errorf("sync.batch_size must be positive, got %d", c.Sync.BatchSize)
	}
	if c.Sync.Concurrency <= 0 {
		return fmt.Errorf("sync.concurrency must be positive, got %d", c.Sync.Concurrency)
	}
	if c.Sync.MinInterval < 0 {
		return fmt.Errorf("sync.min_interval must not be negative, got %s", c.Sync.MinInterval)
	}
	switch c.Sync.Source {
	case util.SourceLocal:
		if c.Sync.InputDir == "" {
			return errors.New("sync.input_dir is required for local source")
		}
	case util.SourceMinio:
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			return errors.New("minio.endpoint and minio.bucket are required for minio source")
		}
	case util.SourceOSS:
		if c.OSS.Endpoint == "" || c.OSS.Bucket == "" {
			return errors.New("oss.endpoint and oss.bucket are required for oss source")
		}
	default:
		return fmt.Errorf("unknown sync.source %q", c.Sync.Source)
	}
	return nil
}
