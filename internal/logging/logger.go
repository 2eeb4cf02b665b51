// Package logging provides structured logging for the chargeplan services.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry.
type Level int8

const (
	// DebugLevel entries are voluminous and usually disabled in production.
	DebugLevel Level = iota
	// InfoLevel is the default priority.
	InfoLevel
	// WarnLevel entries flag conditions worth attention but not review.
	WarnLevel
	// ErrorLevel entries are high priority failures.
	ErrorLevel
	// FatalLevel logs the entry and then exits the process.
	FatalLevel
)

// String returns the level's log marker.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", int8(l))
	}
}

// Format selects the wire shape of the emitted entries.
type Format int8

const (
	// JSONFormat emits one JSON object per line.
	JSONFormat Format = iota
	// TextFormat emits a line of timestamp, level, message and key=value pairs.
	TextFormat
)

// Logger is an active logging object. Loggers are cheap to derive: WithFields
// and friends return children sharing the parent's output.
type Logger struct {
	level  Level
	format Format
	mu     *sync.Mutex
	output io.Writer
	fields map[string]interface{}
}

// New creates a JSON Logger writing entries at or above level to output.
func New(level Level, output io.Writer) *Logger {
	return &Logger{
		level:  level,
		format: JSONFormat,
		mu:     &sync.Mutex{},
		output: output,
		fields: make(map[string]interface{}),
	}
}

// WithFields returns a child logger that adds the given fields to every entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &Logger{
		level:  l.level,
		format: l.format,
		mu:     l.mu,
		output: l.output,
		fields: merged,
	}
}

// WithField returns a child logger with one extra field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithError returns a child logger with the error field set.
func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err.Error())
}

// enabled reports whether entries at level pass the logger's threshold.
func (l *Logger) enabled(level Level) bool {
	return level >= l.level
}

// log writes one entry. The caller is resolved two frames up, at the
// Debug/Info/... call site.
func (l *Logger) log(level Level, msg string, fields map[string]interface{}) {
	if !l.enabled(level) {
		return
	}

	caller := "???"
	if _, file, line, ok := runtime.Caller(2); ok {
		parts := strings.Split(file, "/")
		if len(parts) > 2 {
			file = strings.Join(parts[len(parts)-2:], "/")
		}
		caller = fmt.Sprintf("%s:%d", file, line)
	}

	all := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}

	ts := time.Now().UTC().Format(time.RFC3339Nano)

	var line []byte
	switch l.format {
	case TextFormat:
		line = formatText(ts, level, msg, caller, all)
	default:
		line = formatJSON(ts, level, msg, caller, all)
	}

	l.mu.Lock()
	_, _ = l.output.Write(line)
	l.mu.Unlock()

	if level == FatalLevel {
		os.Exit(1)
	}
}

func formatJSON(ts string, level Level, msg, caller string, fields map[string]interface{}) []byte {
	entry := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["timestamp"] = ts
	entry["level"] = level.String()
	entry["message"] = msg
	entry["caller"] = caller

	data, err := json.Marshal(entry)
	if err != nil {
		// Unmarshalable field values fall back to the text shape.
		return formatText(ts, level, msg, caller, fields)
	}
	return append(data, '\n')
}

func formatText(ts string, level Level, msg, caller string, fields map[string]interface{}) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", ts, level, msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	fmt.Fprintf(&b, " caller=%s\n", caller)
	return []byte(b.String())
}

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(DebugLevel, msg, first(fields))
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(InfoLevel, msg, first(fields))
}

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(WarnLevel, msg, first(fields))
}

// Error logs a message at ErrorLevel.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(ErrorLevel, msg, first(fields))
}

// Fatal logs a message at FatalLevel and exits the process.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	l.log(FatalLevel, msg, first(fields))
}

func first(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// CtxLogger carries a Logger through a context.
type CtxLogger struct {
	*Logger
}

type ctxLoggerKey struct{}

// FromContext returns the logger stored in ctx, or a default stderr logger.
func FromContext(ctx context.Context) *CtxLogger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*CtxLogger); ok {
		return logger
	}
	return &CtxLogger{New(InfoLevel, os.Stderr)}
}

// WithContext returns a child context carrying the logger.
func (l *CtxLogger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, l)
}
