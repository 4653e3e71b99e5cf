package workerpool

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Task 处理第 i 个工作单元；返回错误会取消尚未开始的单元
type Task func(ctx context.Context, i int) error

// Pool 限制同时执行的单元数，并可限制两次派发之间的最小间隔
type Pool struct {
	limit       int
	minInterval time.Duration

	active atomic.Int64
	peak   atomic.Int64
}

func New(limit int, minInterval time.Duration) *Pool {
	if limit <= 0 {
		limit = 1
	}
	return &Pool{limit: limit, minInterval: minInterval}
}

func (p *Pool) Limit() int {
	return p.limit
}

// Peak 最近一次 Run 中同时执行的最大单元数
func (p *Pool) Peak() int {
	return int(p.peak.Load())
}

// Run 派发 n 个单元并等待全部结束。
// 并发满时派发阻塞；任一单元返回错误后停止派发，返回第一个错误。
func (p *Pool) Run(ctx context.Context, n int, task Task) error {
	p.peak.Store(0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	var limiter *rate.Limiter
	if p.minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(p.minInterval), 1)
	}

	for i := 0; i < n; i++ {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			p.enter()
			defer p.active.Add(-1)
			return task(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Pool) enter() {
	cur := p.active.Add(1)
	for {
		peak := p.peak.Load()
		if cur <= peak || p.peak.CompareAndSwap(peak, cur) {
			return
		}
	}
}
