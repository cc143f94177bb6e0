package confloader

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/hostdeck-go/internal/telemetry/logger"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Watch("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_NotifyAllCallbacks(t *testing.T) {
	w := newTestWatcher(t)

	var mu sync.Mutex
	var got []string
	for i := 0; i < 3; i++ {
		w.OnChange(func(path string) {
			mu.Lock()
			got = append(got, path)
			mu.Unlock()
		})
	}

	w.notify("/etc/hostdeck/config.yaml")

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 {
		t.Fatalf("callbacks called %d times, want 3", len(got))
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("log:\n  level: warn\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w := newTestWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 10)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "config.yaml" {
			t.Errorf("changed path = %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Error("OnChange() callback was not triggered within timeout")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("server: x\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w := newTestWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 10)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "session.key"), []byte("ab"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		t.Errorf("unexpected change notification for %q", path)
	case <-time.After(300 * time.Millisecond):
	}
}
