package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/S-Corkum/search-gateway/internal/cache"
	"github.com/S-Corkum/search-gateway/internal/classifier"
	"github.com/S-Corkum/search-gateway/internal/dispatch"
	"github.com/S-Corkum/search-gateway/internal/health"
	"github.com/S-Corkum/search-gateway/internal/model"
	"github.com/S-Corkum/search-gateway/internal/tenant"
)

type fakeAdapter struct {
	searchFn  func(ctx context.Context, req model.Request) (model.Response, error)
	suggestFn func(ctx context.Context, req model.SuggestRequest) (model.Response, error)
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) Search(ctx context.Context, req model.Request) (model.Response, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, req)
	}
	return model.Response{}, nil
}

func (f *fakeAdapter) Suggest(ctx context.Context, req model.SuggestRequest) (model.Response, error) {
	if f.suggestFn != nil {
		return f.suggestFn(ctx, req)
	}
	return model.Response{}, nil
}

func (f *fakeAdapter) FilterByIDs(ctx context.Context, req model.Request, ids []string) (model.Response, error) {
	return model.Response{}, nil
}

func (f *fakeAdapter) Health(ctx context.Context) bool { return true }

func newTestServer() *Server {
	l1 := cache.NewL1(64, time.Minute)
	l2 := cache.NewL2(nil, false)
	twoLevel := cache.NewTwoLevel(l1, l2, nil, nil)

	simple := &fakeAdapter{
		searchFn: func(ctx context.Context, req model.Request) (model.Response, error) {
			return model.Response{Hits: []model.Hit{{ID: "1"}}, Total: model.Total{Value: 1, Relation: model.RelationEq}}, nil
		},
		suggestFn: func(ctx context.Context, req model.SuggestRequest) (model.Response, error) {
			return model.Response{Hits: []model.Hit{{ID: "sugg"}}}, nil
		},
	}
	complexA := &fakeAdapter{}

	dCfg := dispatch.DefaultConfig()
	dCfg.CoalesceInFlight = false
	d := dispatch.New(simple, complexA, twoLevel, dCfg, nil, nil)

	resolver := tenant.NewResolver(tenant.NewStaticLookup(nil))
	prober := health.New(time.Minute, []health.Check{
		health.NewCheck("simple", func(ctx context.Context) error { return nil }),
	}, nil, nil)

	return NewServer(Deps{
		Cache:          twoLevel,
		ClassifierCfg:  classifier.DefaultConfig(),
		Dispatcher:     d,
		SimpleAdapter:  simple,
		TenantResolver: resolver,
		Prober:         prober,
		SmallTTL:       time.Second,
		LongTTL:        time.Minute,
		ShortTTL:       5 * time.Second,
		SuggestTTL:     10 * time.Second,
	})
}

func TestHandleSearch_MissingTenantHeader(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{"q":"acme"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearch_Success(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{"q":"acme"}`))
	req.Header.Set("X-Tenant-ID", "tenant-1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Hits, 1)
	require.False(t, resp.Performance.Cached)
}

func TestHandleSearch_CacheHitOnSecondCall(t *testing.T) {
	s := newTestServer()
	body := `{"q":"acme"}`

	for i := 0; i < 1; i++ {
		req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(body))
		req.Header.Set("X-Tenant-ID", "tenant-1")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(body))
	req.Header.Set("X-Tenant-ID", "tenant-1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp model.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Performance.Cached)
}

func TestHandleSearch_RestrictedRoleWithNoGroupsIsForbidden(t *testing.T) {
	s := newTestServer()

	claims := tenant.Claims{Roles: []string{"viewer"}, Groups: nil}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("unverified"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{"q":"acme"}`))
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleExplain_NoEngineCall(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/explain", bytes.NewBufferString(`{"q":"acme co","filters":{"status":"open"}}`))
	req.Header.Set("X-Tenant-ID", "tenant-1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.ExplainResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.Classification.Type)
	require.NotEmpty(t, result.CacheStrategy.Key)
}

func TestHandleSuggest_Success(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/suggest", bytes.NewBufferString(`{"prefix":"ac"}`))
	req.Header.Set("X-Tenant-ID", "tenant-1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleSuggest_MissingPrefix(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/suggest", bytes.NewBufferString(`{}`))
	req.Header.Set("X-Tenant-ID", "tenant-1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReady(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
