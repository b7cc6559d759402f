package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/S-Corkum/search-gateway/internal/cache"
	"github.com/S-Corkum/search-gateway/internal/classifier"
	"github.com/S-Corkum/search-gateway/internal/fingerprint"
	"github.com/S-Corkum/search-gateway/internal/model"
	"github.com/S-Corkum/search-gateway/internal/tenant"
)

// handleSearch implements the nine-step pipeline of spec §4.7: resolve,
// authorize, fingerprint, cache lookup, classify on miss, dispatch, cache
// write, response assembly, metrics.
func (s *Server) handleSearch(c *gin.Context) {
	tenantID, claims, ok := resolveTenant(c)
	if !ok {
		return
	}

	var req model.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Page.Size <= 0 {
		req.Page.Size = 20
	}

	start := time.Now()

	authorized, err := tenant.ApplyAuthorization(req, tenantID, claims)
	if err != nil {
		writeError(c, err)
		return
	}

	key := fingerprint.Search(tenantID, authorized)
	c.Set(ctxFingerprint, key)

	routing := s.deps.TenantResolver.Routing(tenantID)

	if resp, status := s.deps.Cache.Get(c.Request.Context(), key); status == cache.StatusHitL1 || status == cache.StatusHitL2 {
		resp.Performance.Cached = true
		resp.Performance.TookMs = time.Since(start).Milliseconds()
		attachDebug(c, &resp, nil, key, routing.Strategy)
		c.JSON(http.StatusOK, resp)
		s.deps.Metrics.IncrementCounter("search_requests_total", map[string]string{"tenant": tenantID, "cache": "hit"})
		return
	}

	classification := classifier.Classify(authorized, s.deps.ClassifierCfg)
	c.Set(ctxClassification, classification.Type)

	resp, err := s.deps.Dispatcher.Dispatch(c.Request.Context(), authorized, classification, key)
	if err != nil {
		writeError(c, err)
		s.deps.Metrics.IncrementCounter("search_errors_total", map[string]string{"tenant": tenantID, "classification": classification.Type})
		return
	}

	resp.Performance.Cached = false
	resp.Performance.TookMs = time.Since(start).Milliseconds()

	if classification.Cacheable && !resp.Performance.Partial {
		l1TTL, l2TTL := cache.TTLPolicy(classification, len(resp.Hits), s.deps.SmallTTL, s.deps.LongTTL, s.deps.ShortTTL)
		s.deps.Cache.Set(c.Request.Context(), key, resp, l1TTL, l2TTL)
	}

	attachDebug(c, &resp, &classification, key, routing.Strategy)
	c.JSON(http.StatusOK, resp)

	s.deps.Metrics.IncrementCounter("search_requests_total", map[string]string{"tenant": tenantID, "cache": "miss"})
	s.deps.Metrics.RecordDuration("search_latency_seconds", time.Since(start), map[string]string{"classification": classification.Type})
}

// attachDebug fills Response.Debug only when ?debug=true is present, per
// §4.7's opt-in debug metadata.
func attachDebug(c *gin.Context, resp *model.Response, classification *model.Classification, key, routingStrategy string) {
	if c.Query("debug") != "true" {
		return
	}
	resp.Debug = &model.Debug{
		CacheKey:       key,
		Classification: classification,
		TenantRouting:  routingStrategy,
	}
}
