package tenant

import (
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S-Corkum/search-gateway/internal/apierr"
	"github.com/S-Corkum/search-gateway/internal/model"
)

func TestResolve_MissingHeader(t *testing.T) {
	_, err := Resolve(http.Header{})
	require.Error(t, err)
}

func TestResolve_Success(t *testing.T) {
	h := http.Header{}
	h.Set(TenantHeader, "acme-corp")
	id, err := Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", id)
}

func TestParseClaims_NoAuthHeaderIsNotError(t *testing.T) {
	claims, err := ParseClaims(http.Header{})
	require.NoError(t, err)
	assert.Empty(t, claims.Roles)
}

func TestParseClaims_MalformedBearer(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "NotBearer abc")
	_, err := ParseClaims(h)
	require.Error(t, err)
}

func TestParseClaims_UnverifiedToken(t *testing.T) {
	claims := Claims{Roles: []string{"viewer"}, Groups: []string{"team-a"}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("any-secret-unverified"))
	require.NoError(t, err)

	h := http.Header{}
	h.Set("Authorization", "Bearer "+signed)

	parsed, err := ParseClaims(h)
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer"}, parsed.Roles)
}

func TestApplyAuthorization_InjectsTenantFilter(t *testing.T) {
	req := model.Request{Q: "acme"}
	out, err := ApplyAuthorization(req, "tenant-1", Claims{})
	require.NoError(t, err)

	fv, ok := out.Filters["_tenant_id"]
	require.True(t, ok)
	assert.Equal(t, "tenant-1", fv.Scalar)
	_, hasVisibility := out.Filters["_visibility"]
	assert.False(t, hasVisibility)
}

func TestApplyAuthorization_RestrictedRoleAddsVisibilityFilter(t *testing.T) {
	req := model.Request{Q: "acme"}
	out, err := ApplyAuthorization(req, "tenant-1", Claims{Roles: []string{"viewer"}, Groups: []string{"team-a", "team-b"}})
	require.NoError(t, err)

	fv, ok := out.Filters["_visibility"]
	require.True(t, ok)
	assert.Equal(t, model.FilterArray, fv.Kind)
	assert.Len(t, fv.Array, 2)
}

func TestApplyAuthorization_RestrictedRoleWithNoGroupsIsForbidden(t *testing.T) {
	req := model.Request{Q: "acme"}
	_, err := ApplyAuthorization(req, "tenant-1", Claims{Roles: []string{"viewer"}, Groups: nil})
	require.Error(t, err)

	var classified *apierr.Classified
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, apierr.KindForbidden, classified.Kind)
}

func TestApplyAuthorization_DoesNotMutateCallerFilters(t *testing.T) {
	original := map[string]model.FilterValue{"status": {Kind: model.FilterScalar, Scalar: "open"}}
	req := model.Request{Q: "acme", Filters: original}

	out, err := ApplyAuthorization(req, "tenant-1", Claims{})
	require.NoError(t, err)

	assert.Len(t, original, 1)
	assert.Len(t, out.Filters, 2)
}

func TestStaticLookup_DefaultsToShared(t *testing.T) {
	lookup := NewStaticLookup(nil)
	strategy := lookup.Lookup("unknown-tenant")
	assert.Equal(t, model.RoutingShared, strategy.Strategy)
}

func TestStaticLookup_DedicatedOverride(t *testing.T) {
	lookup := NewStaticLookup(map[string]model.RoutingStrategy{
		"big-tenant": {IndexName: "big-tenant-idx", Strategy: model.RoutingDedicated},
	})
	strategy := lookup.Lookup("big-tenant")
	assert.Equal(t, model.RoutingDedicated, strategy.Strategy)
	assert.Equal(t, "big-tenant-idx", strategy.IndexName)
}

func TestResolver_MemoizesAndInvalidates(t *testing.T) {
	calls := 0
	lookup := lookupFunc(func(tenantID string) model.RoutingStrategy {
		calls++
		return model.RoutingStrategy{IndexName: tenantID}
	})
	resolver := NewResolver(lookup)

	resolver.Routing("t1")
	resolver.Routing("t1")
	assert.Equal(t, 1, calls)

	resolver.Invalidate("t1")
	resolver.Routing("t1")
	assert.Equal(t, 2, calls)
}

type lookupFunc func(tenantID string) model.RoutingStrategy

func (f lookupFunc) Lookup(tenantID string) model.RoutingStrategy { return f(tenantID) }
