package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging surface used across the console.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config selects level, format and sink.
type Config struct {
	Level  string    `koanf:"level" yaml:"level"`
	Format string    `koanf:"format" yaml:"format"`
	Output io.Writer `koanf:"-" yaml:"-"`
}

// DefaultConfig logs warnings and errors as text on stderr, keeping
// stdout for command results.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "text", Output: os.Stderr}
}

// level is shared by every logger so a reload applies everywhere.
var level = new(slog.LevelVar)

// slogLogger adapts *slog.Logger; the level methods are promoted.
type slogLogger struct {
	*slog.Logger
}

func (l slogLogger) With(args ...any) Logger {
	return slogLogger{l.Logger.With(args...)}
}

// New builds a logger and sets the shared level from cfg.
func New(cfg Config) (Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		h = slog.NewJSONHandler(out, opts)
	case "", "text", "console":
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	level.Set(parseLevel(cfg.Level))
	return slogLogger{slog.New(h)}, nil
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return slogLogger{slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// SetLevel changes the level of every logger built by New.
func SetLevel(s string) {
	level.Set(parseLevel(s))
}

// Slog returns the *slog.Logger behind l, for libraries that take one.
func Slog(l Logger) *slog.Logger {
	if sl, ok := l.(slogLogger); ok {
		return sl.Logger
	}
	return slog.Default()
}

// parseLevel accepts slog level names plus "warning". Unknown names mean info.
func parseLevel(s string) slog.Level {
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

var fallback atomic.Pointer[slog.Logger]

func init() {
	l, _ := New(DefaultConfig())
	fallback.Store(l.(slogLogger).Logger)
}

// SetDefault replaces the logger returned by Default.
func SetDefault(l Logger) {
	if sl, ok := l.(slogLogger); ok {
		fallback.Store(sl.Logger)
	}
}

// Default returns the process-wide logger used by components built
// without one.
func Default() Logger {
	return slogLogger{fallback.Load()}
}
