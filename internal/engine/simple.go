package engine

import (
	"context"

	"github.com/S-Corkum/search-gateway/internal/model"
	"github.com/S-Corkum/search-gateway/internal/observability"
)

// SimpleAdapter is designed for exact filters, prefix free-text and small
// result sets (§4.5 "Simple adapter contract"). It does not implement
// highlighting; suggestions are restricted to a title-like field plus an
// optional denormalized customer-name field.
type SimpleAdapter struct {
	http *httpAdapter
}

func NewSimpleAdapter(cfg Config, logger observability.Logger, metrics observability.MetricsClient) *SimpleAdapter {
	return &SimpleAdapter{http: newHTTPAdapter("simple", cfg, logger, metrics)}
}

func (a *SimpleAdapter) Name() string { return "simple" }

type wireRequest struct {
	Q          string                        `json:"q,omitempty"`
	Filters    map[string]model.FilterValue `json:"filters,omitempty"`
	Sort       []model.SortKey               `json:"sort,omitempty"`
	Projection []string                      `json:"projection,omitempty"`
	Page       model.PageDescriptor          `json:"page,omitempty"`
	Highlight  bool                          `json:"highlight,omitempty"`
	IDs        []string                      `json:"ids,omitempty"`
}

func toWireRequest(req model.Request) wireRequest {
	return wireRequest{
		Q:          req.Q,
		Filters:    req.Filters,
		Sort:       req.Sort,
		Projection: req.Projection,
		Page:       req.Page,
		Highlight:  req.Options.Highlight,
	}
}

func (a *SimpleAdapter) Search(ctx context.Context, req model.Request) (model.Response, error) {
	var resp model.Response
	if err := a.http.post(ctx, "/search", toWireRequest(req), &resp); err != nil {
		return model.Response{}, err
	}
	resp.Performance.Engine = "simple"
	return resp, nil
}

type suggestWireResponse struct {
	Suggestions []struct {
		Text    string  `json:"text"`
		Score   float64 `json:"score"`
		Context string  `json:"context,omitempty"`
	} `json:"suggestions"`
}

func (a *SimpleAdapter) Suggest(ctx context.Context, req model.SuggestRequest) (model.Response, error) {
	payload := struct {
		Prefix   string   `json:"prefix"`
		Entity   []string `json:"entity,omitempty"`
		Limit    int      `json:"limit,omitempty"`
		TenantID string   `json:"tenant_id,omitempty"`
	}{Prefix: req.Prefix, Entity: req.Entity, Limit: req.Limit, TenantID: req.TenantID}

	var wire suggestWireResponse
	if err := a.http.post(ctx, "/suggest", payload, &wire); err != nil {
		return model.Response{}, err
	}

	hits := make([]model.Hit, 0, len(wire.Suggestions))
	for _, s := range wire.Suggestions {
		score := s.Score
		hits = append(hits, model.Hit{
			ID:     s.Text,
			Source: map[string]any{"text": s.Text, "context": s.Context},
			Score:  &score,
		})
	}

	return model.Response{
		Hits:  hits,
		Total: model.Total{Value: int64(len(hits)), Relation: model.RelationEq},
		Page:  model.Page{Size: req.Limit},
		Performance: model.Performance{
			Engine: "simple",
		},
	}, nil
}

func (a *SimpleAdapter) FilterByIDs(ctx context.Context, req model.Request, ids []string) (model.Response, error) {
	wire := toWireRequest(req)
	wire.IDs = ids

	var resp model.Response
	if err := a.http.post(ctx, "/filter_by_ids", wire, &resp); err != nil {
		return model.Response{}, err
	}
	resp.Performance.Engine = "simple"
	return resp, nil
}

func (a *SimpleAdapter) Health(ctx context.Context) bool {
	return a.http.health(ctx)
}

var _ Adapter = (*SimpleAdapter)(nil)
