// Package engine implements spec §4.5: a uniform interface over the two
// backing search engines. Concrete engines are external collaborators
// (spec §1 "Explicitly out of scope"); each adapter here is an HTTP/JSON
// client translating the uniform Request/Response into a generic envelope
// posted to a configured engine endpoint, wrapped in a circuit breaker
// (grounded on the teacher's internal/resilience.GetCircuitBreaker, backed
// by github.com/sony/gobreaker) so a degrading engine trips instead of
// piling up blocked goroutines.
package engine

import (
	"context"

	"github.com/S-Corkum/search-gateway/internal/model"
)

// Adapter is the capability set the dispatcher is polymorphic over (§9
// "Polymorphism over engines → capability set"): search, suggest,
// filter_by_ids, health. Nothing engine-specific leaks through it.
type Adapter interface {
	Search(ctx context.Context, req model.Request) (model.Response, error)
	Suggest(ctx context.Context, req model.SuggestRequest) (model.Response, error)
	FilterByIDs(ctx context.Context, req model.Request, ids []string) (model.Response, error)
	Health(ctx context.Context) bool
	Name() string
}
