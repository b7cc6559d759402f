// Package tenant implements spec §4.4: tenant resolution from transport
// headers, authorization/ACL filter injection, and per-tenant routing
// strategy memoization. Grounded on the teacher's pkg/auth middleware
// (claims-driven authorization) and its pattern of a package-level
// registry with a mutex for memoized, lazily-created objects
// (internal/resilience.GetCircuitBreaker).
package tenant

import (
	"net/http"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v4"

	"github.com/S-Corkum/search-gateway/internal/apierr"
	"github.com/S-Corkum/search-gateway/internal/model"
)

const TenantHeader = "X-Tenant-ID"

// Claims is the subset of bearer-token claims this gateway acts on. Token
// signature *verification* is out of scope (spec §1: "consumes a
// pre-validated tenant identifier and an optional set of role/group
// claims") — the token is assumed already validated by an upstream
// authenticator, so claims are parsed unverified, purely to read the
// role/group values already vouched for elsewhere.
type Claims struct {
	Roles  []string `json:"roles"`
	Groups []string `json:"groups"`
	jwt.RegisteredClaims
}

// Resolve extracts and validates the tenant identifier from transport
// headers (§4.4). It never reads a tenant id from the request body.
func Resolve(headers http.Header) (string, error) {
	id := strings.TrimSpace(headers.Get(TenantHeader))
	if id == "" {
		return "", apierr.MissingTenant()
	}
	return id, nil
}

// ParseClaims extracts Claims from an optional "Authorization: Bearer
// <token>" header without verifying its signature (see Claims doc).
// Absence of the header is not an error: defaults apply.
func ParseClaims(headers http.Header) (Claims, error) {
	auth := headers.Get("Authorization")
	if auth == "" {
		return Claims{}, nil
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return Claims{}, apierr.BadRequest("Authorization header must be a Bearer token")
	}
	token := strings.TrimPrefix(auth, prefix)

	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, apierr.BadRequest("malformed bearer token")
	}
	return claims, nil
}

// ApplyAuthorization injects the mandatory tenant filter and any ACL
// filters derived from claims (§4.4). It returns a new Request; the
// caller's tenant_id in the body, if any, was never read in the first
// place (Request.TenantID has json:"-").
//
// A restricted/viewer role with no group memberships has no visibility
// scope to grant: there is nothing that role is allowed to see, so the
// request is denied outright rather than silently scoped to an empty
// set (§7 "forbidden" kind).
func ApplyAuthorization(req model.Request, tenantID string, claims Claims) (model.Request, error) {
	out := req
	out.TenantID = tenantID

	filters := make(map[string]model.FilterValue, len(req.Filters)+1)
	for k, v := range req.Filters {
		filters[k] = v
	}
	filters["_tenant_id"] = model.FilterValue{Kind: model.FilterScalar, Scalar: tenantID}

	if isRestrictedRole(claims.Roles) {
		if len(claims.Groups) == 0 {
			return model.Request{}, apierr.Forbidden("restricted role has no group memberships to authorize")
		}
		filters["_visibility"] = model.FilterValue{Kind: model.FilterArray, Array: toAny(claims.Groups)}
	}

	out.Filters = filters
	return out, nil
}

func isRestrictedRole(roles []string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, "restricted") || strings.EqualFold(r, "viewer") {
			return true
		}
	}
	return false
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// RoutingLookup resolves a tenant's routing strategy. It is pluggable per
// spec §9's last bullet ("source's routing-strategy lookup returns a
// hard-coded default; real-system implementers should provide a pluggable
// lookup behind the same interface").
type RoutingLookup interface {
	Lookup(tenantID string) model.RoutingStrategy
}

// StaticLookup seeds dedicated-index tenants from configuration; any
// tenant absent from the map gets the shared-index default. It never
// fails — a lookup miss returns the safe default (§4.4).
type StaticLookup struct {
	Dedicated map[string]model.RoutingStrategy
	Default   model.RoutingStrategy
}

func NewStaticLookup(dedicated map[string]model.RoutingStrategy) *StaticLookup {
	return &StaticLookup{
		Dedicated: dedicated,
		Default: model.RoutingStrategy{
			IndexName:    "shared-index",
			ShardCount:   3,
			ReplicaCount: 1,
			Strategy:     model.RoutingShared,
		},
	}
}

func (s *StaticLookup) Lookup(tenantID string) model.RoutingStrategy {
	if strategy, ok := s.Dedicated[tenantID]; ok {
		return strategy
	}
	return s.Default
}

// Resolver memoizes RoutingLookup results for the process lifetime
// (§3 "Lifecycle"), with a single initializer per tenant under lock so
// concurrent first-use doesn't race the lookup (§5 "Routing-strategy
// memoization is read-mostly; a single initializer per tenant is
// sufficient").
type Resolver struct {
	lookup RoutingLookup

	mu    sync.RWMutex
	cache map[string]model.RoutingStrategy
}

func NewResolver(lookup RoutingLookup) *Resolver {
	return &Resolver{lookup: lookup, cache: make(map[string]model.RoutingStrategy)}
}

func (r *Resolver) Routing(tenantID string) model.RoutingStrategy {
	r.mu.RLock()
	strategy, ok := r.cache[tenantID]
	r.mu.RUnlock()
	if ok {
		return strategy
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if strategy, ok := r.cache[tenantID]; ok {
		return strategy
	}
	strategy = r.lookup.Lookup(tenantID)
	r.cache[tenantID] = strategy
	return strategy
}

// Invalidate drops a tenant's memoized routing strategy so the next call
// re-resolves it (§3 "until explicitly invalidated").
func (r *Resolver) Invalidate(tenantID string) {
	r.mu.Lock()
	delete(r.cache, tenantID)
	r.mu.Unlock()
}
