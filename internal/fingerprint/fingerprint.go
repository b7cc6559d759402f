// Package fingerprint canonicalizes a request into a deterministic,
// tenant-prefixed cache key (spec §4.1). Grounded on the teacher's
// pkg/cache.Service.generateCacheKey (tenant + fields hashed together)
// and on cespare/xxhash/v2, the non-cryptographic hash the pack already
// depends on (teacher indirect dep via go-redis; direct dep of the
// h3-spatial-cache example).
package fingerprint

import (
	"encoding/hex"
	"encoding/json"

	"github.com/cespare/xxhash/v2"

	"github.com/S-Corkum/search-gateway/internal/model"
)

// hashedSubset is exactly the part of a request that affects the result
// set: q, filters, sort, projection, page size/cursor. Options that don't
// change the result (timeout_ms, strict) are deliberately absent so a
// timeout change never invalidates the cache (§4.1, §8 invariant 4).
//
// Filters is a Go map, and encoding/json already serializes map keys in
// sorted order, so reordering the input JSON's filter keys produces byte-
// identical output here (§8 invariant 3) without any extra canonicalization
// step.
type hashedSubset struct {
	Q          string                         `json:"q,omitempty"`
	Filters    map[string]model.FilterValue  `json:"filters,omitempty"`
	Sort       []model.SortKey                `json:"sort,omitempty"`
	Projection []string                       `json:"projection,omitempty"`
	PageSize   int                            `json:"page_size"`
	PageCursor string                         `json:"page_cursor,omitempty"`
}

// Search computes the search:<tenant>:<hex> fingerprint for a Request.
func Search(tenant string, req model.Request) string {
	return build("search", tenant, hashedSubset{
		Q:          req.Q,
		Filters:    req.Filters,
		Sort:       req.Sort,
		Projection: req.Projection,
		PageSize:   req.Page.Size,
		PageCursor: req.Page.Cursor,
	})
}

// Suggest computes the suggest:<tenant>:<hex> fingerprint. Per spec §9
// ("mirror this so suggestion caches for different entity sets do not
// collide"), the full body including entity is hashed.
func Suggest(tenant string, req model.SuggestRequest) string {
	return build("suggest", tenant, struct {
		Prefix string   `json:"prefix"`
		Entity []string `json:"entity,omitempty"`
		Limit  int      `json:"limit,omitempty"`
	}{Prefix: req.Prefix, Entity: req.Entity, Limit: req.Limit})
}

func build(namespace, tenant string, subset any) string {
	canonical, err := json.Marshal(subset)
	if err != nil {
		// Marshal of these concrete types cannot fail; guard anyway so a
		// future field addition can't panic the request path.
		canonical = []byte("{}")
	}
	return namespace + ":" + tenant + ":" + digest128(canonical)
}

// digest128 concatenates two 64-bit xxhash sums (one of the data, one of
// the data with a 0x01 salt byte appended) into a 128-bit hex digest.
// xxhash has no native 128-bit variant in the pack's dependency
// (xxhash/v2 is 64-bit only); the two differently salted sums give the
// overwhelming-probability distinctness spec §4.1 asks for without adding
// a second hashing library.
func digest128(data []byte) string {
	h1 := xxhash.Sum64(data)

	salted := make([]byte, len(data)+1)
	copy(salted, data)
	salted[len(data)] = 0x01
	h2 := xxhash.Sum64(salted)

	buf := make([]byte, 16)
	putUint64(buf[0:8], h1)
	putUint64(buf[8:16], h2)
	return hex.EncodeToString(buf)
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}
