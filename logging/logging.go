// Package logging wraps log/slog behind a single package-level logger,
// initialised once at process start and shared by every layer — catalog
// bootstrap, page allocation, and executor compensation all log through
// it rather than each owning their own *slog.Logger.
//
// Grounded on utkarsh5026-StoreMy's pkg/logging (global Logger +
// sync.Once lazy init, Config{Level, Format}, With-style context helpers)
// trimmed to the fields this module's layers actually attach: table,
// block_id, stmt.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	logger   *slog.Logger
	initOnce sync.Once
)

// Level mirrors slog's levels without forcing callers to import log/slog
// just to configure this package.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config selects verbosity and wire format for the process-wide logger.
type Config struct {
	Level Level
	JSON  bool // false = text handler
}

// Init sets up the global logger. Safe to call at most once per process;
// subsequent calls are no-ops.
func Init(cfg Config) {
	initOnce.Do(func() {
		logger = slog.New(handlerFor(cfg))
	})
}

func handlerFor(cfg Config) slog.Handler {
	var level slog.Level
	switch cfg.Level {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// Get returns the process-wide logger, initialising it with defaults
// (info level, text handler) if Init was never called.
func Get() *slog.Logger {
	initOnce.Do(func() {
		logger = slog.New(handlerFor(Config{Level: LevelInfo}))
	})
	return logger
}

// WithTable returns a logger annotated with the relation name being
// operated on — catalog bootstrap and the executor's per-table steps use
// this to keep log lines traceable to the statement that caused them.
func WithTable(table string) *slog.Logger {
	return Get().With(slog.String("table", table))
}

// WithBlock returns a logger annotated with the BlockID a page operation
// touched.
func WithBlock(blockID uint32) *slog.Logger {
	return Get().With(slog.Uint64("block_id", uint64(blockID)))
}

// WithStmt returns a logger annotated with the statement kind the
// executor is dispatching.
func WithStmt(kind string) *slog.Logger {
	return Get().With(slog.String("stmt", kind))
}
