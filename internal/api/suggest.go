package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/S-Corkum/search-gateway/internal/apierr"
	"github.com/S-Corkum/search-gateway/internal/cache"
	"github.com/S-Corkum/search-gateway/internal/fingerprint"
	"github.com/S-Corkum/search-gateway/internal/model"
)

// handleSuggest always routes to the simple adapter and skips the
// classifier entirely (§4.7 "/suggest ... always routed to the simple
// adapter's suggest"), with its own fixed cache TTL.
func (s *Server) handleSuggest(c *gin.Context) {
	tenantID, _, ok := resolveTenant(c)
	if !ok {
		return
	}

	var req model.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(c, apierr.BadRequest(err.Error()))
		return
	}
	req.TenantID = tenantID

	key := fingerprint.Suggest(tenantID, req)

	if resp, status := s.deps.Cache.Get(c.Request.Context(), key); status == cache.StatusHitL1 || status == cache.StatusHitL2 {
		resp.Performance.Cached = true
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, err := s.deps.SimpleAdapter.Suggest(c.Request.Context(), req)
	if err != nil {
		writeError(c, apierr.EngineError(err))
		return
	}
	resp.Performance.Cached = false

	s.deps.Cache.Set(c.Request.Context(), key, resp, s.deps.SuggestTTL, s.deps.SuggestTTL)
	c.JSON(http.StatusOK, resp)
}
