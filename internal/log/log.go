// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// Package log provides the leveled, call-site-aware logger used throughout
// the debugger core. It is a small, dependency-light stand-in for the
// go-ethereum-family "log" package: a Logger interface, a set of context
// key/value pairs per call, and a terminal handler that reports the
// immediate caller via github.com/go-stack/stack.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-stack/stack"
)

// Level is the severity of a log record.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Logger is satisfied by every debugger component that emits diagnostics.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	// With returns a Logger that prepends ctx to every subsequent record,
	// mirroring the go-ethereum log.New(ctx...) convention.
	With(ctx ...any) Logger
}

// record is a single emitted log line.
type record struct {
	t     time.Time
	lvl   Level
	msg   string
	ctx   []any
	call  stack.Call
}

type logger struct {
	out    io.Writer
	mu     *sync.Mutex
	level  Level
	prefix []any
}

// New creates a Logger that writes human-readable lines to w, filtering out
// anything more verbose than level.
func New(w io.Writer, level Level) Logger {
	return &logger{out: w, mu: &sync.Mutex{}, level: level}
}

// Root is the default logger, writing to stderr at LevelInfo. Components
// that are not handed an explicit Logger fall back to Root.
var Root Logger = New(os.Stderr, LevelInfo)

func (l *logger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.prefix)+len(ctx))
	merged = append(merged, l.prefix...)
	merged = append(merged, ctx...)
	return &logger{out: l.out, mu: l.mu, level: l.level, prefix: merged}
}

func (l *logger) write(lvl Level, msg string, ctx []any) {
	if lvl > l.level {
		return
	}
	// Skip two frames (write, then {Trace,Debug,...}) to report the caller.
	call := stack.Caller(2)
	r := record{t: time.Now(), lvl: lvl, msg: msg, call: call}
	r.ctx = make([]any, 0, len(l.prefix)+len(ctx))
	r.ctx = append(r.ctx, l.prefix...)
	r.ctx = append(r.ctx, ctx...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s [%-5s] %-40s %s%s\n",
		r.t.Format("15:04:05.000"), r.lvl, r.msg, formatCtx(r.ctx), fmt.Sprintf(" (%n %s:%d)", r.call, r.call, r.call))
}

// formatCtx renders key/value pairs. Values that are not simple scalars are
// rendered with spew so struct/stack dumps (e.g. a StackItem tree) stay
// readable instead of printing a bare pointer or "%!v(PANIC)".
func formatCtx(ctx []any) string {
	if len(ctx) == 0 {
		return ""
	}
	out := ""
	for i := 0; i+1 < len(ctx); i += 2 {
		k := ctx[i]
		v := ctx[i+1]
		out += fmt.Sprintf("%v=%s ", k, formatValue(v))
	}
	return out
}

func formatValue(v any) string {
	switch v.(type) {
	case string, int, int64, uint64, uint32, bool, float64:
		return fmt.Sprintf("%v", v)
	default:
		return spew.Sprint(v)
	}
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }
