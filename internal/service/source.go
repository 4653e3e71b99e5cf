package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"quizbank_sync/internal/config"
	"quizbank_sync/internal/util"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// QuizSource 输入文件来源：非递归列出 .json 文件并整体读取
type QuizSource interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// LocalSource 本地目录
type LocalSource struct {
	Dir string
}

func (s *LocalSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !util.IsQuizFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *LocalSource) Read(ctx context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Dir, name))
}

// MinioSource MinIO 桶内某个前缀下的对象
type MinioSource struct {
	Client *minio.Client
	Bucket string
	Prefix string
}

func NewMinioSource(cfg *config.MinioConfig, prefix string) (*MinioSource, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioSource{Client: client, Bucket: cfg.Bucket, Prefix: prefix}, nil
}

func (s *MinioSource) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range s.Client.ListObjects(ctx, s.Bucket, minio.ListObjectsOptions{Prefix: s.Prefix, Recursive: false}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasSuffix(obj.Key, "/") || !util.IsQuizFile(obj.Key) {
			continue
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

func (s *MinioSource) Read(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.Client.GetObject(ctx, s.Bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

// OSSSource 阿里云 OSS 桶内某个前缀下的对象
type OSSSource struct {
	Bucket *oss.Bucket
	Prefix string
}

func NewOSSSource(cfg *config.OSSConfig, prefix string) (*OSSSource, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, err
	}
	return &OSSSource{Bucket: bucket, Prefix: prefix}, nil
}

func (s *OSSSource) List(ctx context.Context) ([]string, error) {
	var names []string
	marker := ""
	for {
		res, err := s.Bucket.ListObjects(
			oss.Prefix(s.Prefix),
			oss.Delimiter("/"),
			oss.Marker(marker),
			oss.MaxKeys(1000),
			oss.WithContext(ctx),
		)
		if err != nil {
			return nil, err
		}
		for _, obj := range res.Objects {
			if util.IsQuizFile(obj.Key) {
				names = append(names, obj.Key)
			}
		}
		if !res.IsTruncated {
			return names, nil
		}
		marker = res.NextMarker
	}
}

func (s *OSSSource) Read(ctx context.Context, name string) ([]byte, error) {
	body, err := s.Bucket.GetObject(name, oss.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// NewQuizSource 根据 sync.source 选择输入来源
func NewQuizSource(cfg *config.Config) (QuizSource, error) {
	switch cfg.Sync.Source {
	case util.SourceLocal:
		return &LocalSource{Dir: cfg.Sync.InputDir}, nil
	case util.SourceMinio:
		return NewMinioSource(&cfg.Minio, cfg.Sync.Prefix)
	case util.SourceOSS:
		return NewOSSSource(&cfg.OSS, cfg.Sync.Prefix)
	}
	return nil, fmt.Errorf("%w: %q", util.ErrUnsupportedSource, cfg.Sync.Source)
}
