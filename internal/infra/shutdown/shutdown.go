package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultTimeout bounds the time hooks get to finish.
const DefaultTimeout = 5 * time.Second

type hook struct {
	name string
	fn   func(context.Context) error
}

// Handler runs cleanup hooks exactly once.
type Handler struct {
	timeout time.Duration

	mu    sync.Mutex
	hooks []hook

	once sync.Once
	err  error
	done chan struct{}
}

// NewHandler creates a handler. A non-positive timeout uses DefaultTimeout.
func NewHandler(timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handler{
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a named hook. Hooks run in reverse order of
// registration.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// OnClose registers a hook for an io.Closer-style function.
func (h *Handler) OnClose(name string, fn func() error) {
	h.OnShutdown(name, func(context.Context) error { return fn() })
}

// Close runs every hook and returns their joined errors. Later calls
// return the result of the first.
func (h *Handler) Close() error {
	h.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]hook, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i].fn(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
			}
		}
		h.err = errors.Join(errs...)
		close(h.done)
	})
	return h.err
}

// WithSignals returns a context cancelled on SIGINT or SIGTERM. The
// first signal also runs Close.
func (h *Handler) WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
			_ = h.Close()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// Done is closed once every hook has run.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
