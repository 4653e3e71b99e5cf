package dirwatcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatchDirBatchesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchDir(ctx, dir, 100*time.Millisecond,
			func(name string) bool { return strings.HasSuffix(name, ".json") },
			func(ctx context.Context, names []string) { got <- names },
		)
	}()

	// 等待 watcher 注册
	time.Sleep(100 * time.Millisecond)
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case names := <-got:
		if len(names) != 2 || names[0] != "a.json" || names[1] != "b.json" {
			t.Fatalf("names = %v, want [a.json b.json]", names)
		}
	case <-ctx.Done():
		t.Fatal("no batch delivered before timeout")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("WatchDir: %v", err)
	}
}

func TestWatchDirMissingDirectory(t *testing.T) {
	err := WatchDir(context.Background(), filepath.Join(t.TempDir(), "missing"), time.Millisecond, nil,
		func(context.Context, []string) {})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
