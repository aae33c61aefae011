// Package rglog provides the root structured logger the driver builds once
// per process and the graph threads into every node.Instance as a named
// child. It adapts the teacher's atomic-pointer SetLogger/Logger pattern
// (hal/logger.go) from log/slog to go.uber.org/zap, the logging library
// used throughout the rest of the retrieval pack.
package rglog

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootPtr atomic.Pointer[zap.Logger]

func init() {
	rootPtr.Store(zap.NewNop())
}

// SetRoot installs l as the process-wide root logger. Passing nil restores
// the silent default. SetRoot is safe for concurrent use: the pointer is
// stored atomically so it can be swapped while other goroutines are
// logging through a previously-retrieved child.
func SetRoot(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	rootPtr.Store(l)
}

// Root returns the current process-wide root logger.
func Root() *zap.Logger {
	return rootPtr.Load()
}

// Level names accepted by New, matching zapcore's own level strings.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// New builds a root logger writing leveled, console-encoded output to
// stderr, the configuration cmd/rgctl installs via SetRoot at startup.
// json selects JSON encoding over the human-readable console encoder, for
// driver runs whose output feeds a log aggregator rather than a terminal.
func New(level string, json bool) (*zap.Logger, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("rglog: level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if !json {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zl)
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("rglog: build: %w", err)
	}
	return logger, nil
}
