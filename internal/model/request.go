// Package model holds the wire-level request/response shapes shared across
// the pipeline: fingerprint, cache, classifier, tenant resolver, engine
// adapters and the dispatcher all speak these types.
package model

import (
	"encoding/json"
	"fmt"
)

// FilterKind distinguishes the three shapes a filter value may take.
type FilterKind int

const (
	FilterScalar FilterKind = iota
	FilterArray
	FilterRange
)

// RangeBounds carries the four optional bounds of a range filter. Bound
// values are kept as float64/string/bool via any so the filter stays
// agnostic to the underlying field's type.
type RangeBounds struct {
	Gte any `json:"gte,omitempty"`
	Lte any `json:"lte,omitempty"`
	Gt  any `json:"gt,omitempty"`
	Lt  any `json:"lt,omitempty"`
}

func (r RangeBounds) empty() bool {
	return r.Gte == nil && r.Lte == nil && r.Gt == nil && r.Lt == nil
}

// FilterValue is the tagged union scalar | array | range described in
// spec §9 ("Dynamic request bodies → tagged variants"). It is validated
// once at the JSON boundary via UnmarshalJSON, not re-inspected at every
// read site downstream.
type FilterValue struct {
	Kind   FilterKind
	Scalar any
	Array  []any
	Range  RangeBounds
}

func (f FilterValue) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FilterArray:
		return json.Marshal(f.Array)
	case FilterRange:
		return json.Marshal(f.Range)
	default:
		return json.Marshal(f.Scalar)
	}
}

func (f *FilterValue) UnmarshalJSON(data []byte) error {
	var arr []any
	if err := json.Unmarshal(data, &arr); err == nil {
		f.Kind = FilterArray
		f.Array = arr
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		if isRangeObject(obj) {
			var r RangeBounds
			if err := json.Unmarshal(data, &r); err != nil {
				return fmt.Errorf("filter range: %w", err)
			}
			f.Kind = FilterRange
			f.Range = r
			return nil
		}
		return fmt.Errorf("filter object must be a range with gte/lte/gt/lt keys")
	}

	var scalar any
	if err := json.Unmarshal(data, &scalar); err != nil {
		return fmt.Errorf("filter scalar: %w", err)
	}
	f.Kind = FilterScalar
	f.Scalar = scalar
	return nil
}

func isRangeObject(obj map[string]any) bool {
	for k := range obj {
		switch k {
		case "gte", "lte", "gt", "lt":
		default:
			return false
		}
	}
	return len(obj) > 0
}

// IsDateRangeField reports whether a field name implies a date or time
// ("date", "_at" or "time" in it, case-insensitively); it looks at the
// name only. The classifier's cacheability rule (§4.3) pairs it with a
// range-kind check.
func IsDateRangeField(name string) bool {
	lower := make([]rune, 0, len(name))
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			r = r + ('a' - 'A')
		}
		lower = append(lower, r)
	}
	s := string(lower)
	return containsAny(s, "date", "_at", "time")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if len(s) >= len(sub) {
			for i := 0; i+len(sub) <= len(s); i++ {
				if s[i:i+len(sub)] == sub {
					return true
				}
			}
		}
	}
	return false
}

// SortKey is one element of the request's ordered sort sequence.
type SortKey struct {
	Field string `json:"field"`
	Order string `json:"order"` // "asc" | "desc"
}

// PageDescriptor is the inbound page size plus an opaque, adapter-private
// cursor (§4.5 "Cursor semantics").
type PageDescriptor struct {
	Size   int    `json:"size"`
	Cursor string `json:"cursor,omitempty"`
}

// RequestOptions carries feature toggles that do not alter the result set
// identity and are therefore excluded from the fingerprint (§4.1).
type RequestOptions struct {
	Highlight bool `json:"highlight,omitempty"`
	Suggest   bool `json:"suggest,omitempty"`
	TimeoutMs int  `json:"timeout_ms,omitempty"`
	Strict    bool `json:"strict,omitempty"`
}

// Request is the inbound shape for /search and /explain (§3). TenantID is
// never read from the body; it is injected by the tenant resolver from
// transport headers.
type Request struct {
	Q          string                 `json:"q,omitempty"`
	Filters    map[string]FilterValue `json:"filters,omitempty"`
	Sort       []SortKey              `json:"sort,omitempty"`
	Projection []string               `json:"projection,omitempty"`
	Page       PageDescriptor         `json:"page,omitempty"`
	Options    RequestOptions         `json:"options,omitempty"`

	TenantID string `json:"-"`
}

// SuggestRequest is the inbound shape for /suggest (§6).
type SuggestRequest struct {
	Prefix string   `json:"prefix" validate:"required,min=1,max=50"`
	Entity []string `json:"entity,omitempty"`
	Limit  int      `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`

	TenantID string `json:"-"`
}
