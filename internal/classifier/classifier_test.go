package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/S-Corkum/search-gateway/internal/model"
)

func TestClassify_SimpleExactFilters(t *testing.T) {
	req := model.Request{
		Filters: map[string]model.FilterValue{
			"entity": {Kind: model.FilterArray, Array: []any{"customer"}},
			"status": {Kind: model.FilterArray, Array: []any{"active"}},
		},
		Page: model.PageDescriptor{Size: 10},
	}
	c := Classify(req, DefaultConfig())
	require.Equal(t, model.ClassSimple, c.Type)
	require.True(t, c.Cacheable)
}

func TestClassify_ComplexTextWithFacetsAndHighlight(t *testing.T) {
	req := model.Request{
		Q: "overdue invoice payment",
		Filters: map[string]model.FilterValue{
			"entity":         {Kind: model.FilterArray, Array: []any{"order", "invoice"}},
			"numeric.amount": {Kind: model.FilterRange, Range: model.RangeBounds{Gte: 1000}},
		},
		Sort:    []model.SortKey{{Field: "dates.created_at", Order: "desc"}},
		Options: model.RequestOptions{Highlight: true},
	}
	c := Classify(req, DefaultConfig())
	require.Equal(t, model.ClassComplex, c.Type)
}

func TestClassify_HybridFreeTextPlusFilters(t *testing.T) {
	req := model.Request{
		Q: "acme",
		Filters: map[string]model.FilterValue{
			"entity": {Kind: model.FilterArray, Array: []any{"customer"}},
			"status": {Kind: model.FilterArray, Array: []any{"active"}},
		},
	}
	c := Classify(req, DefaultConfig())
	require.Equal(t, model.ClassHybrid, c.Type)
}

func TestClassify_CacheableFalseForDateRange(t *testing.T) {
	req := model.Request{
		Filters: map[string]model.FilterValue{
			"created_date": {Kind: model.FilterRange, Range: model.RangeBounds{Gte: "2026-01-01"}},
		},
	}
	c := Classify(req, DefaultConfig())
	require.False(t, c.Cacheable)
}

func TestClassify_CacheableFalseForLargePage(t *testing.T) {
	req := model.Request{Page: model.PageDescriptor{Size: 500}}
	c := Classify(req, DefaultConfig())
	require.False(t, c.Cacheable)
}

func TestClassify_Deterministic(t *testing.T) {
	req := model.Request{Q: "acme widgets", Page: model.PageDescriptor{Size: 10}}
	c1 := Classify(req, DefaultConfig())
	c2 := Classify(req, DefaultConfig())
	require.Equal(t, c1, c2)
}
