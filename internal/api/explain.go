package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/S-Corkum/search-gateway/internal/classifier"
	"github.com/S-Corkum/search-gateway/internal/fingerprint"
	"github.com/S-Corkum/search-gateway/internal/model"
	"github.com/S-Corkum/search-gateway/internal/tenant"
)

// handleExplain reports the plan the gateway would choose without ever
// calling an engine or touching the cache (§4.7 "/explain performs
// resolution, authorization, fingerprinting and classification only" —
// §8 invariant 9: "/explain must never produce a side effect on cache
// state").
func (s *Server) handleExplain(c *gin.Context) {
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

	authorized, err := tenant.ApplyAuthorization(req, tenantID, claims)
	if err != nil {
		writeError(c, err)
		return
	}

	classification := classifier.Classify(authorized, s.deps.ClassifierCfg)
	key := fingerprint.Search(tenantID, authorized)
	c.Set(ctxFingerprint, key)
	c.Set(ctxClassification, classification.Type)
	routing := s.deps.TenantResolver.Routing(tenantID)

	ttl := s.deps.ShortTTL
	if classification.Type == model.ClassSimple {
		ttl = s.deps.LongTTL
	}

	c.JSON(http.StatusOK, model.ExplainResult{
		Classification: classification,
		Routing: model.ExplainRouting{
			Engine: classification.Type,
			Index:  routing.IndexName,
			Reason: classification.Reason,
		},
		EstimatedCost: model.EstimatedCost{
			ComplexityScore:   classification.ComplexityScore,
			ExpectedLatencyMs: classification.EstimatedLatencyMs,
		},
		CacheStrategy: model.CacheStrategy{
			Cacheable:  classification.Cacheable,
			Key:        key,
			TTLSeconds: int(ttl.Seconds()),
		},
	})
}
