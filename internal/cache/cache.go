package cache

import (
	"context"
	"time"

	"github.com/S-Corkum/search-gateway/internal/model"
	"github.com/S-Corkum/search-gateway/internal/observability"
)

// Status describes where (if anywhere) a Get was satisfied from.
type Status int

const (
	StatusMiss Status = iota
	StatusHitL1
	StatusHitL2
	StatusStaleL1 // present in L1 but past TTL; Get reports such an entry as StatusMiss, and the fallback path reads it through GetStale
)

// TwoLevel is the read-through L1+L2 cache of §4.2: L1 is consulted first,
// L2 on L1 miss, with L1 populated on an L2 hit. All operations are
// best-effort — an L2 fault is recorded and treated as a miss, never
// failing the caller.
type TwoLevel struct {
	l1      *L1
	l2      *L2
	logger  observability.Logger
	metrics observability.MetricsClient
}

func NewTwoLevel(l1 *L1, l2 *L2, logger observability.Logger, metrics observability.MetricsClient) *TwoLevel {
	if logger == nil {
		logger = observability.NoopLogger{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &TwoLevel{l1: l1, l2: l2, logger: logger, metrics: metrics}
}

// Get performs the read-through lookup. It never returns a stale entry
// from this call; use GetStale explicitly in the dispatcher's fallback
// path.
func (c *TwoLevel) Get(ctx context.Context, key string) (model.Response, Status) {
	if resp, fresh, present := c.l1.Get(key); present && fresh {
		c.metrics.RecordCacheOperation("l1", true)
		return resp, StatusHitL1
	}
	c.metrics.RecordCacheOperation("l1", false)

	resp, hit, err := c.l2.Get(ctx, key)
	if err != nil {
		c.logger.Warn("l2 cache fault", map[string]any{"key": key, "error": err.Error()})
		c.metrics.RecordCacheOperation("l2", false)
		return model.Response{}, StatusMiss
	}
	if !hit {
		c.metrics.RecordCacheOperation("l2", false)
		return model.Response{}, StatusMiss
	}

	c.metrics.RecordCacheOperation("l2", true)
	c.l1.Set(key, resp, 0, estimateSize(resp))
	return resp, StatusHitL2
}

// GetStale returns an L1 entry even if it is past TTL, for the
// dispatcher's deadline-fallback path only (§4.6 step 1, §9 "Stale-on-
// error reads ... implementers must decide explicitly and document" — this
// gateway allows it, flagged for metrics, never surfaced in response
// metadata per §4.2).
func (c *TwoLevel) GetStale(key string) (model.Response, bool) {
	resp, fresh, present := c.l1.Get(key)
	if !present {
		return model.Response{}, false
	}
	if !fresh {
		c.metrics.IncrementCounter("cache_stale_reads_total", map[string]string{})
	}
	return resp, true
}

// Set writes L1 unconditionally and L2 when enabled; an L2 write failure
// is recorded and swallowed (§4.2).
func (c *TwoLevel) Set(ctx context.Context, key string, resp model.Response, l1TTL time.Duration, l2TTL time.Duration) {
	c.l1.Set(key, resp, l1TTL, estimateSize(resp))
	if err := c.l2.Set(ctx, key, resp, l2TTL); err != nil {
		c.logger.Warn("l2 cache write failed", map[string]any{"key": key, "error": err.Error()})
	}
}

func (c *TwoLevel) Delete(ctx context.Context, key string) {
	c.l1.Delete(key)
	if err := c.l2.Delete(ctx, key); err != nil {
		c.logger.Warn("l2 cache delete failed", map[string]any{"key": key, "error": err.Error()})
	}
}

func (c *TwoLevel) Clear(ctx context.Context) {
	c.l1.Clear()
	if err := c.l2.Clear(ctx); err != nil {
		c.logger.Warn("l2 cache clear failed", map[string]any{"error": err.Error()})
	}
}

func estimateSize(resp model.Response) int {
	return len(resp.Hits) * 256
}

// TTLPolicy picks the L1/L2 TTLs given a classification and result size,
// per the handler's policy (§4.2, §4.7 step 7): simple responses get the
// longest TTL, small result sets get longer TTL, everything else short.
func TTLPolicy(classification model.Classification, hitCount int, small, long, short time.Duration) (l1 time.Duration, l2Seconds time.Duration) {
	switch {
	case classification.Type == model.ClassSimple:
		return long, long
	case hitCount < 10:
		return small, small
	default:
		return short, short
	}
}
