package observability

import "time"

// NoopLogger discards everything; used in tests that don't assert on logs.
type NoopLogger struct{}

func (NoopLogger) Debug(string, map[string]any) {}
func (NoopLogger) Info(string, map[string]any)  {}
func (NoopLogger) Warn(string, map[string]any)  {}
func (NoopLogger) Error(string, map[string]any) {}
func (n NoopLogger) WithPrefix(string) Logger   { return n }
func (n NoopLogger) With(map[string]any) Logger { return n }

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) IncrementCounter(string, map[string]string)            {}
func (NoopMetrics) RecordHistogram(string, float64, map[string]string)    {}
func (NoopMetrics) RecordGauge(string, float64, map[string]string)        {}
func (NoopMetrics) RecordDuration(string, time.Duration, map[string]string) {}
func (NoopMetrics) RecordCacheOperation(string, bool)                     {}
