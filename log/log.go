// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides leveled structured logging on top of go-ethereum's slog based logger.
//
// Package level loggers are created with WithContext at init time, before the
// command line configures the root handler. They resolve the root logger on every
// call, so the handler set later by SetDefault is honored.
package log

import (
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

var levelNames = map[slog.Level]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelCrit:  "crit",
}

// Logger writes leveled key/value records.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

// WithContext returns a logger that prepends ctx to every record.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

// Root returns the root logger.
func Root() Logger {
	return ethlog.Root()
}

// SetDefault replaces the root logger.
func SetDefault(l ethlog.Logger) {
	ethlog.SetDefault(l)
}

// NewTerminalLogger creates a human readable logger. verbosity uses the
// legacy 0 (crit) .. 5 (trace) scale.
func NewTerminalLogger(w io.Writer, verbosity int, useColor bool) ethlog.Logger {
	return ethlog.NewLogger(ethlog.NewTerminalHandlerWithLevel(w, ethlog.FromLegacyLevel(verbosity), useColor))
}

// NewJSONLogger creates a logger emitting one JSON object per record.
func NewJSONLogger(w io.Writer, verbosity int) ethlog.Logger {
	return ethlog.NewLogger(ethlog.JSONHandlerWithLevel(w, ethlog.FromLegacyLevel(verbosity)))
}

// Discard returns a logger that drops everything.
func Discard() ethlog.Logger {
	return ethlog.NewLogger(ethlog.DiscardHandler())
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) with(ctx []any) []any {
	return append(l.ctx[:len(l.ctx):len(l.ctx)], ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, l.with(ctx)...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, l.with(ctx)...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, l.with(ctx)...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, l.with(ctx)...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { ethlog.Root().Error(msg, l.with(ctx)...) }

// LevelVar is the minimum level of a logger built by NewLeveledLogger.
// It can be changed while the logger is in use.
type LevelVar struct {
	glog  *ethlog.GlogHandler
	level atomic.Int64
}

func (v *LevelVar) Level() slog.Level {
	return slog.Level(v.level.Load())
}

func (v *LevelVar) Set(l slog.Level) {
	v.level.Store(int64(l))
	v.glog.Verbosity(l)
}

// NewLeveledLogger filters h, which should accept every level, by an adjustable
// level starting at the legacy verbosity.
func NewLeveledLogger(h slog.Handler, verbosity int) (ethlog.Logger, *LevelVar) {
	v := &LevelVar{glog: ethlog.NewGlogHandler(h)}
	v.Set(ethlog.FromLegacyLevel(verbosity))
	return ethlog.NewLogger(v.glog), v
}

// TerminalHandler returns a human readable handler accepting every level.
func TerminalHandler(w io.Writer, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandler(w, useColor)
}

// JSONHandler returns a JSON handler accepting every level.
func JSONHandler(w io.Writer) slog.Handler {
	return ethlog.JSONHandler(w)
}

// LevelName returns the lower case name of l.
func LevelName(l slog.Level) string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return strings.ToLower(l.String())
}

// ParseLevel parses one of trace, debug, info, warn, error or crit.
func ParseLevel(s string) (slog.Level, error) {
	for l, name := range levelNames {
		if name == strings.ToLower(strings.TrimSpace(s)) {
			return l, nil
		}
	}
	return 0, errors.Errorf("invalid level %q", s)
}
