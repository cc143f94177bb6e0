package memory

import (
	"context"
	"sync"

	"github.com/yndnr/hostdeck-go/internal/storage"
)

// Engine is a map-backed KVEngine.
type Engine struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ storage.KVEngine = (*Engine)(nil)

// New creates an empty engine.
func New() *Engine {
	return &Engine{data: make(map[string][]byte)}
}

// Get retrieves a copy of the value stored under key.
func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, storage.ErrClosed
	}
	v, ok := e.data[string(key)]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (e *Engine) Set(ctx context.Context, key, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return storage.ErrClosed
	}
	e.data[string(key)] = append([]byte(nil), value...)
	return nil
}

// Delete removes key.
func (e *Engine) Delete(ctx context.Context, key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return storage.ErrClosed
	}
	delete(e.data, string(key))
	return nil
}

// Close marks the engine closed. Data is kept so tests can inspect it.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Len returns the number of stored keys.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.data)
}
