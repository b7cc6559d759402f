package observability

import (
	"fmt"
	"log"
	"os"
	"sort"
)

// standardLogger is a StandardLogger-style leveled logger writing to
// stderr, adapted from the teacher's pkg/observability.StandardLogger.
// Unlike the teacher, With() actually merges and retains fields instead
// of discarding them, since the §7 log contract depends on fields
// surviving across With() calls down the handler pipeline.
type standardLogger struct {
	prefix string
	level  LogLevel
	fields map[string]any
	out    *log.Logger
}

// NewLogger creates a logger at Info level writing to stderr.
func NewLogger(prefix string) Logger {
	return &standardLogger{
		prefix: prefix,
		level:  LogLevelInfo,
		out:    log.New(os.Stderr, "", 0),
	}
}

func (l *standardLogger) levelRank(level LogLevel) int {
	switch level {
	case LogLevelDebug:
		return 0
	case LogLevelInfo:
		return 1
	case LogLevelWarn:
		return 2
	case LogLevelError:
		return 3
	default:
		return 1
	}
}

func (l *standardLogger) enabled(level LogLevel) bool {
	return l.levelRank(level) >= l.levelRank(l.level)
}

func (l *standardLogger) Debug(msg string, fields map[string]any) {
	if l.enabled(LogLevelDebug) {
		l.log(LogLevelDebug, msg, fields)
	}
}

func (l *standardLogger) Info(msg string, fields map[string]any) {
	if l.enabled(LogLevelInfo) {
		l.log(LogLevelInfo, msg, fields)
	}
}

func (l *standardLogger) Warn(msg string, fields map[string]any) {
	if l.enabled(LogLevelWarn) {
		l.log(LogLevelWarn, msg, fields)
	}
}

func (l *standardLogger) Error(msg string, fields map[string]any) {
	l.log(LogLevelError, msg, fields)
}

func (l *standardLogger) WithPrefix(prefix string) Logger {
	return &standardLogger{prefix: prefix, level: l.level, fields: l.fields, out: l.out}
}

func (l *standardLogger) With(fields map[string]any) Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &standardLogger{prefix: l.prefix, level: l.level, fields: merged, out: l.out}
}

func (l *standardLogger) log(level LogLevel, msg string, fields map[string]any) {
	all := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	line := fmt.Sprintf("level=%s prefix=%s msg=%q", level, l.prefix, msg)
	for _, k := range keys {
		line += fmt.Sprintf(" %s=%v", k, all[k])
	}
	l.out.Print(line)
}
