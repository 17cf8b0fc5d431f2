// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/dusk/proc"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for dusk and the installed native
// implementation. By default, dusk produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by dusk:
//   - [slog.LevelDebug]: handle creation and release, submissions
//   - [slog.LevelInfo]: adapter discovery and device lifecycle
//   - [slog.LevelWarn]: device errors, mapped buffers released without Finish
//
// Example:
//
//	dusk.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	if n := current.Load(); n != nil {
		propagateLogger(n.table, l)
	}
}

// Logger returns the current logger used by dusk.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// propagateLogger passes l to a native implementation that accepts one.
func propagateLogger(t *proc.Table, l *slog.Logger) {
	if t.SetLogger != nil {
		t.SetLogger(l)
	}
}
