package service

import (
	"context"
	"sync"
)

// FileLedger 记录之前已经写入成功的文件
type FileLedger interface {
	Seen(ctx context.Context, name string) (bool, error)
	Mark(ctx context.Context, names ...string) error
}

// NopLedger 不记录任何文件
type NopLedger struct{}

func (NopLedger) Seen(ctx context.Context, name string) (bool, error) { return false, nil }
func (NopLedger) Mark(ctx context.Context, names ...string) error     { return nil }

// MemoryLedger 进程内台账，未启用 Redis 时保证 watch 模式不会重复写入同一文件
type MemoryLedger struct {
	mu     sync.RWMutex
	synced map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{synced: make(map[string]struct{})}
}

func (l *MemoryLedger) Seen(ctx context.Context, name string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.synced[name]
	return ok, nil
}

func (l *MemoryLedger) Mark(ctx context.Context, names ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range names {
		l.synced[n] = struct{}{}
	}
	return nil
}
