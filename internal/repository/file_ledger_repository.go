package repository

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// FileLedgerRepository 记录已经成功同步过的文件名（Redis Set）
type FileLedgerRepository struct {
	RDB *redis.Client
	Key string
}

func NewFileLedgerRepository(rdb *redis.Client, key string) *FileLedgerRepository {
	return &FileLedgerRepository{RDB: rdb, Key: key}
}

func (r *FileLedgerRepository) Seen(ctx context.Context, name string) (bool, error) {
	return r.RDB.SIsMember(ctx, r.Key, name).Result()
}

func (r *FileLedgerRepository) Mark(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	members := make([]interface{}, len(names))
	for i, n := range names {
		members[i] = n
	}
	return r.RDB.SAdd(ctx, r.Key, members...).Err()
}
