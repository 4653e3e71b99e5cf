package dirwatcher

import (
	"context"
	"path/filepath"
	"quizbank_sync/pkg/logger"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler 收到一批防抖后的文件名（不含目录）
type Handler func(ctx context.Context, names []string)

// WatchDir 监听 dir 下新建或写入的文件，直到 ctx 结束。
// 同一防抖窗口内的文件合并成一次回调，回调在监听 goroutine 中同步执行。
func WatchDir(ctx context.Context, dir string, debounce time.Duration, match func(string) bool, handle Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := watcher.Add(absPath); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if match != nil && !match(name) {
				continue
			}
			// 防抖处理
			pending[name] = struct{}{}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			sort.Strings(names)
			pending = make(map[string]struct{})
			handle(ctx, names)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Input dir watcher error", zap.Error(err))
		}
	}
}
