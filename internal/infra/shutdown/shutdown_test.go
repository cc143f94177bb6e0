package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestNewHandler_DefaultTimeout(t *testing.T) {
	h := NewHandler(0)
	if h.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", h.timeout, DefaultTimeout)
	}
}

func TestHandler_Close_ReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)

	var order []string
	for _, name := range []string{"engine", "watcher", "store"} {
		name := name
		h.OnShutdown(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := []string{"store", "watcher", "engine"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done() not closed after Close()")
	}
}

func TestHandler_Close_JoinsErrorsAndRunsOnce(t *testing.T) {
	h := NewHandler(time.Second)

	errEngine := errors.New("engine busy")
	calls := 0
	h.OnClose("engine", func() error {
		calls++
		return errEngine
	})
	h.OnClose("ok", func() error { return nil })

	err := h.Close()
	if !errors.Is(err, errEngine) {
		t.Fatalf("Close() error = %v, want %v", err, errEngine)
	}
	if err2 := h.Close(); err2 != err {
		t.Errorf("second Close() = %v, want first result", err2)
	}
	if calls != 1 {
		t.Errorf("hook ran %d times, want 1", calls)
	}
}

func TestHandler_Close_HookSeesDeadline(t *testing.T) {
	h := NewHandler(50 * time.Millisecond)

	h.OnShutdown("slow", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("hook context has no deadline")
		}
		<-ctx.Done()
		return ctx.Err()
	})

	if err := h.Close(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Close() error = %v, want deadline exceeded", err)
	}
}

func TestHandler_WithSignals(t *testing.T) {
	h := NewHandler(time.Second)

	var mu sync.Mutex
	closed := false
	h.OnClose("store", func() error {
		mu.Lock()
		closed = true
		mu.Unlock()
		return nil
	})

	ctx, stop := h.WithSignals(context.Background())
	defer stop()

	time.Sleep(20 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hooks did not run after SIGTERM")
	}

	mu.Lock()
	defer mu.Unlock()
	if !closed {
		t.Error("store hook did not run")
	}
}

func TestHandler_WithSignals_StopWithoutSignal(t *testing.T) {
	h := NewHandler(time.Second)
	ctx, stop := h.WithSignals(context.Background())
	stop()

	<-ctx.Done()
	select {
	case <-h.Done():
		t.Error("hooks ran without a signal or Close()")
	case <-time.After(20 * time.Millisecond):
	}
}
