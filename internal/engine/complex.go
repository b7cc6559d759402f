package engine

import (
	"context"
	"errors"

	"github.com/S-Corkum/search-gateway/internal/model"
	"github.com/S-Corkum/search-gateway/internal/observability"
)

// ComplexAdapter supports full-text scoring, phrase/fuzzy/wildcard modes,
// filters, sorting, highlighting and facet aggregations (§4.5 "Complex
// adapter contract"). Pagination uses a from/size scheme encoded into the
// opaque cursor the engine itself mints — this adapter never inspects the
// cursor's shape, it only round-trips it (§4.5 "Cursor semantics").
type ComplexAdapter struct {
	http *httpAdapter
}

func NewComplexAdapter(cfg Config, logger observability.Logger, metrics observability.MetricsClient) *ComplexAdapter {
	return &ComplexAdapter{http: newHTTPAdapter("complex", cfg, logger, metrics)}
}

func (a *ComplexAdapter) Name() string { return "complex" }

func (a *ComplexAdapter) Search(ctx context.Context, req model.Request) (model.Response, error) {
	var resp model.Response
	if err := a.http.post(ctx, "/search", toWireRequest(req), &resp); err != nil {
		return model.Response{}, err
	}
	resp.Performance.Engine = "complex"
	return resp, nil
}

// Suggest is never invoked: /suggest always routes to the simple adapter
// (§4.7 "always routed to the simple adapter's suggest"). Implemented to
// satisfy the Adapter interface rather than narrowing the interface per
// engine, consistent with §9's "capability set, not engine-specific
// features".
func (a *ComplexAdapter) Suggest(ctx context.Context, req model.SuggestRequest) (model.Response, error) {
	return model.Response{}, errors.New("complex engine does not support suggest")
}

// FilterByIDs is never invoked on the complex adapter: the hybrid plan
// always issues filter_by_ids against the simple engine (§4.6).
func (a *ComplexAdapter) FilterByIDs(ctx context.Context, req model.Request, ids []string) (model.Response, error) {
	return model.Response{}, errors.New("complex engine does not support filter_by_ids")
}

func (a *ComplexAdapter) Health(ctx context.Context) bool {
	return a.http.health(ctx)
}

var _ Adapter = (*ComplexAdapter)(nil)
