// Package observability provides the gateway's leveled logger and metrics
// client, structurally identical to the teacher repo's pkg/observability
// package: a field-based Logger interface and a Prometheus-backed
// MetricsClient, both obtained once at the composition root and passed
// explicitly (spec §9, "Process-wide cache state → scoped acquisition").
package observability

import "time"

// LogLevel is the minimum severity a Logger will emit.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// Logger is a leveled, field-based logger. Fields are a flat map rather
// than a struct so call sites can attach the §7 log contract
// ({tenant, fingerprint, classification, elapsed_ms}) without every
// caller depending on a shared struct type.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)

	WithPrefix(prefix string) Logger
	With(fields map[string]any) Logger
}

// MetricsClient records the counters and histograms named in §4.8: request
// counts/errors by tenant and classification, cache hit/miss per tier, and
// latency histograms per classification.
type MetricsClient interface {
	IncrementCounter(name string, labels map[string]string)
	RecordHistogram(name string, value float64, labels map[string]string)
	RecordGauge(name string, value float64, labels map[string]string)
	RecordDuration(name string, d time.Duration, labels map[string]string)
	RecordCacheOperation(tier string, hit bool)
}
