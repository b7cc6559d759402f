// Package dispatch implements the deadline-bounded plan executor of §4.6.
// It turns a classifier decision into one or more engine adapter calls,
// merges hybrid results, and absorbs timeouts into a three-tier fallback
// that never surfaces as an HTTP error.
package dispatch

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/S-Corkum/search-gateway/internal/apierr"
	"github.com/S-Corkum/search-gateway/internal/cache"
	"github.com/S-Corkum/search-gateway/internal/engine"
	"github.com/S-Corkum/search-gateway/internal/model"
	"github.com/S-Corkum/search-gateway/internal/observability"
)

// Dispatcher owns the two engine adapters and the cache needed for its
// fallback path. It holds no per-request state; all of its methods are
// safe for concurrent use (§5 "stateless per request").
type Dispatcher struct {
	simple  engine.Adapter
	complex engine.Adapter
	cache   *cache.TwoLevel
	cfg     Config
	logger  observability.Logger
	metrics observability.MetricsClient
	group   singleflight.Group
}

func New(simple, complex engine.Adapter, c *cache.TwoLevel, cfg Config, logger observability.Logger, metrics observability.MetricsClient) *Dispatcher {
	if logger == nil {
		logger = observability.NoopLogger{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Dispatcher{simple: simple, complex: complex, cache: c, cfg: cfg, logger: logger, metrics: metrics}
}

type planResult struct {
	resp model.Response
	err  error
}

// Dispatch executes the plan selected by classification against the
// configured engines, bounded by the request's (clamped) deadline. It
// never returns an error for a timeout — that path always degrades
// through GetStale, a reduced-scope simple query, or an empty result
// (§4.6 "Fallback sequencing"). A non-timeout engine failure is wrapped
// as an *apierr.Classified engine-error and returned.
func (d *Dispatcher) Dispatch(ctx context.Context, req model.Request, classification model.Classification, cacheKey string) (model.Response, error) {
	timeout := d.resolveTimeout(req)

	if !d.cfg.CoalesceInFlight {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return d.runOnce(callCtx, req, classification, cacheKey)
	}

	return d.dispatchCoalesced(ctx, req, classification, cacheKey, timeout)
}

// dispatchCoalesced lets concurrent misses for the same cache key share a
// single leader execution. Followers still observe their own deadline:
// if the leader has not returned by then, a follower runs its own
// fallback independently rather than waiting further (§5 "coalesced
// waiters must observe their own deadlines").
func (d *Dispatcher) dispatchCoalesced(ctx context.Context, req model.Request, classification model.Classification, cacheKey string, timeout time.Duration) (model.Response, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sfKey := cacheKey + ":" + classification.Type
	ch := d.group.DoChan(sfKey, func() (any, error) {
		leaderCtx, leaderCancel := context.WithTimeout(context.Background(), timeout)
		defer leaderCancel()
		resp, err := d.runOnce(leaderCtx, req, classification, cacheKey)
		return resp, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return model.Response{}, res.Err
		}
		return res.Val.(model.Response), nil
	case <-deadlineCtx.Done():
		d.metrics.IncrementCounter("dispatch_coalesce_follower_fallback_total", map[string]string{})
		return d.fallback(req, cacheKey), nil
	}
}

// runOnce executes the classified plan under ctx (already carrying its
// deadline) and, on timeout, resolves the fallback. A non-timeout engine
// error is classified and returned.
func (d *Dispatcher) runOnce(ctx context.Context, req model.Request, classification model.Classification, cacheKey string) (model.Response, error) {
	resultCh := make(chan planResult, 1)
	go func() {
		resp, err := d.executePlan(ctx, req, classification)
		resultCh <- planResult{resp: resp, err: err}
	}()

	select {
	case r := <-resultCh:
		if r.err != nil {
			if ctx.Err() != nil {
				d.metrics.IncrementCounter("dispatch_timeout_total", map[string]string{"plan": classification.Type})
				return d.fallback(req, cacheKey), nil
			}
			return model.Response{}, apierr.EngineError(r.err)
		}
		return r.resp, nil
	case <-ctx.Done():
		d.metrics.IncrementCounter("dispatch_timeout_total", map[string]string{"plan": classification.Type})
		return d.fallback(req, cacheKey), nil
	}
}

func (d *Dispatcher) executePlan(ctx context.Context, req model.Request, classification model.Classification) (model.Response, error) {
	switch classification.Type {
	case model.ClassComplex:
		return d.complex.Search(ctx, req)
	case model.ClassHybrid:
		return d.executeHybrid(ctx, req)
	default:
		return d.simple.Search(ctx, req)
	}
}

// executeHybrid overfetches on the complex engine, optionally narrows the
// result set through the simple engine's filter_by_ids, and truncates
// back to the requested page size (§4.6 "Hybrid execution").
func (d *Dispatcher) executeHybrid(ctx context.Context, req model.Request) (model.Response, error) {
	pageSize := req.Page.Size
	if pageSize <= 0 {
		pageSize = 20
	}

	overfetched := req
	overfetched.Page.Size = pageSize * d.cfg.HybridOverfetchFactor

	complexResp, err := d.complex.Search(ctx, overfetched)
	if err != nil {
		return model.Response{}, err
	}

	if !hasExactMatchFilter(req, d.cfg.HybridFilterFields) {
		return truncate(complexResp, pageSize, "hybrid"), nil
	}

	ids := hitIDs(complexResp.Hits)
	simpleResp, err := d.simple.FilterByIDs(ctx, req, ids)
	if err != nil {
		return model.Response{}, err
	}

	merged := intersectPreservingOrder(complexResp.Hits, simpleResp.Hits)
	truncated := false
	if len(merged) > pageSize {
		merged = merged[:pageSize]
		truncated = true
	}

	relation := model.RelationEq
	if truncated || complexResp.Page.HasMore {
		relation = model.RelationGte
	}

	return model.Response{
		Hits:   merged,
		Total:  model.Total{Value: int64(len(merged)), Relation: relation},
		Page:   model.Page{Size: pageSize, Cursor: complexResp.Page.Cursor, HasMore: complexResp.Page.HasMore},
		Facets: complexResp.Facets,
		Performance: model.Performance{
			Engine: "hybrid",
		},
	}, nil
}

// fallback resolves the three-tier degradation of §4.6: a stale cache
// entry, then a reduced-scope simple query, then an empty result. It
// never returns an error.
func (d *Dispatcher) fallback(req model.Request, cacheKey string) model.Response {
	if resp, ok := d.cache.GetStale(cacheKey); ok {
		resp.Performance.Partial = true
		resp.Performance.Cached = true
		resp.Total.Relation = model.RelationGte
		return resp
	}

	degraded := req
	degraded.Q = ""
	if degraded.Page.Size <= 0 || degraded.Page.Size > 10 {
		degraded.Page.Size = 10
	}

	fbCtx, cancel := context.WithTimeout(context.Background(), time.Duration(d.cfg.FallbackTimeoutMs)*time.Millisecond)
	defer cancel()

	resp, err := d.simple.Search(fbCtx, degraded)
	if err == nil {
		resp.Performance.Partial = true
		resp.Performance.Engine = "simple"
		resp.Total.Relation = model.RelationGte
		return resp
	}

	d.logger.Warn("dispatch fallback exhausted, returning empty result", map[string]any{"error": err.Error()})
	return model.Response{
		Hits:  []model.Hit{},
		Total: model.Total{Value: 0, Relation: model.RelationGte},
		Page:  model.Page{Size: req.Page.Size},
		Performance: model.Performance{
			Engine:  "fallback",
			Partial: true,
		},
	}
}

func (d *Dispatcher) resolveTimeout(req model.Request) time.Duration {
	ms := req.Options.TimeoutMs
	if ms <= 0 {
		ms = d.cfg.DefaultTimeoutMs
	}
	if ms < d.cfg.MinTimeoutMs {
		ms = d.cfg.MinTimeoutMs
	}
	if ms > d.cfg.MaxTimeoutMs {
		ms = d.cfg.MaxTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

func truncate(resp model.Response, pageSize int, engineName string) model.Response {
	relation := resp.Total.Relation
	if len(resp.Hits) > pageSize {
		resp.Hits = resp.Hits[:pageSize]
		relation = model.RelationGte
	}
	resp.Page.Size = pageSize
	resp.Total.Relation = relation
	resp.Performance.Engine = engineName
	return resp
}

func hitIDs(hits []model.Hit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

// intersectPreservingOrder keeps the complex engine's relevance order,
// dropping hits the simple engine's filter_by_ids did not confirm. Hits
// keep the exact order the complex engine returned; hits with equal
// scores are not re-sorted.
func intersectPreservingOrder(complexHits, simpleHits []model.Hit) []model.Hit {
	allowed := make(map[string]struct{}, len(simpleHits))
	for _, h := range simpleHits {
		allowed[h.ID] = struct{}{}
	}

	merged := make([]model.Hit, 0, len(complexHits))
	for _, h := range complexHits {
		if _, ok := allowed[h.ID]; ok {
			merged = append(merged, h)
		}
	}
	return merged
}

// hasExactMatchFilter reports whether req carries a user-supplied (not
// tenant-injected) filter on one of the configured indexed fields, the
// trigger for the simple-engine narrowing step of the hybrid plan.
func hasExactMatchFilter(req model.Request, fields []string) bool {
	for _, f := range fields {
		if v, ok := req.Filters[f]; ok && (v.Kind == model.FilterScalar || v.Kind == model.FilterArray) {
			return true
		}
	}
	return false
}
