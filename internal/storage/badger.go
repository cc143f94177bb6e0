package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// BadgerEngine implements KVEngine using Badger v3.
type BadgerEngine struct {
	db     *badger.DB
	cfg    KVConfig
	logger *slog.Logger

	closed    atomic.Bool
	lastGC    atomic.Int64 // Unix milliseconds
	gcRuns    atomic.Uint64
	closeOnce sync.Once

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerEngine opens a Badger-based KV engine.
func NewBadgerEngine(cfg KVConfig, logger *slog.Logger) (*BadgerEngine, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	engine := &BadgerEngine{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if cfg.GCInterval != "" && !cfg.InMemory {
		go engine.gcLoop()
	} else {
		close(engine.doneCh)
	}

	logger.Debug("badger engine opened", "dir", cfg.Dir, "in_memory", cfg.InMemory)
	return engine, nil
}

// Get retrieves a value by key.
func (e *BadgerEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a key-value pair.
func (e *BadgerEngine) Set(ctx context.Context, key, value []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes a key.
func (e *BadgerEngine) Delete(ctx context.Context, key []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// GC runs value log garbage collection until Badger reports nothing to rewrite.
// It returns the number of rewrite rounds performed.
func (e *BadgerEngine) GC(ctx context.Context) (int, error) {
	if e.closed.Load() {
		return 0, ErrClosed
	}

	rounds := 0
	for {
		if err := ctx.Err(); err != nil {
			return rounds, err
		}
		err := e.db.RunValueLogGC(e.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return rounds, fmt.Errorf("gc: %w", err)
		}
		rounds++
	}

	e.lastGC.Store(time.Now().UnixMilli())
	e.gcRuns.Add(1)
	return rounds, nil
}

// Size returns the LSM and value log sizes in bytes.
func (e *BadgerEngine) Size() (lsm, vlog int64) {
	return e.db.Size()
}

// Close gracefully shuts down the Badger engine.
func (e *BadgerEngine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.stopCh)
		<-e.doneCh

		if cerr := e.db.Close(); cerr != nil {
			err = fmt.Errorf("close db: %w", cerr)
		}
		e.logger.Debug("badger engine closed")
	})
	return err
}

// RegisterMetrics registers Badger size gauges with Prometheus.
// The gauges are evaluated on gather, so no background loop is needed.
func (e *BadgerEngine) RegisterMetrics(registry prometheus.Registerer) *BadgerEngine {
	registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "hostdeck",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes",
		}, func() float64 {
			lsm, _ := e.Size()
			return float64(lsm)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "hostdeck",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes",
		}, func() float64 {
			_, vlog := e.Size()
			return float64(vlog)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "hostdeck",
			Subsystem: "badger",
			Name:      "gc_runs_total",
			Help:      "Completed Badger value log GC passes",
		}, func() float64 {
			return float64(e.gcRuns.Load())
		}),
	)
	return e
}

// gcLoop runs periodic garbage collection.
func (e *BadgerEngine) gcLoop() {
	defer close(e.doneCh)

	interval, err := time.ParseDuration(e.cfg.GCInterval)
	if err != nil || interval <= 0 {
		e.logger.Error("invalid gc_interval, using default 10m", "value", e.cfg.GCInterval)
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if _, err := e.GC(ctx); err != nil {
				e.logger.Error("auto gc failed", "error", err)
			}
			cancel()
		case <-e.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
// Badger is chatty at info level, so its info output is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
