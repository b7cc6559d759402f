package api

import (
	"github.com/gin-gonic/gin"

	"github.com/S-Corkum/search-gateway/internal/tenant"
)

// resolveTenant extracts the tenant id and unverified claims from the
// request's headers (§4.4), writing the §7 error envelope and returning
// ok=false on failure so the caller can return immediately.
func resolveTenant(c *gin.Context) (string, tenant.Claims, bool) {
	tenantID, err := tenant.Resolve(c.Request.Header)
	if err != nil {
		writeError(c, err)
		return "", tenant.Claims{}, false
	}

	claims, err := tenant.ParseClaims(c.Request.Header)
	if err != nil {
		writeError(c, err)
		return "", tenant.Claims{}, false
	}

	c.Set(ctxTenantID, tenantID)
	return tenantID, claims, true
}
