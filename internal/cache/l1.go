package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/S-Corkum/search-gateway/internal/model"
)

// entry is what L1 stores: the response plus its absolute expiry and a
// rough size hint (estimateSize: 256 bytes per hit), which is stored with
// the entry but not read back by anything.
type entry struct {
	response  model.Response
	expiresAt time.Time
	sizeHint  int
}

func (e entry) expired(now time.Time) bool { return now.After(e.expiresAt) }

// L1 is the in-process tier: bounded by entry count with LRU eviction,
// each entry carrying its own absolute TTL (§4.2 "Policies"). The plain
// hashicorp/golang-lru/v2 cache (not the expirable variant) is used
// because TTL here is per-call, set by the handler's policy, not a single
// cache-wide constant — the expirable.LRU API only supports one TTL for
// the whole cache.
type L1 struct {
	mu         sync.Mutex
	lru        *lru.Cache[string, entry]
	defaultTTL time.Duration
}

func NewL1(maxEntries int, defaultTTL time.Duration) *L1 {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	c, _ := lru.New[string, entry](maxEntries)
	return &L1{lru: c, defaultTTL: defaultTTL}
}

// Get returns the raw entry and whether it was present at all, plus
// whether it is fresh. A present-but-stale entry is still returned so the
// dispatcher's fallback path can use "stale-on-error" reads (§9).
func (c *L1) Get(key string) (resp model.Response, fresh bool, present bool) {
	c.mu.Lock()
	e, ok := c.lru.Get(key)
	c.mu.Unlock()
	if !ok {
		return model.Response{}, false, false
	}
	return e.response, !e.expired(time.Now()), true
}

func (c *L1) Set(key string, resp model.Response, ttl time.Duration, sizeHint int) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.lru.Add(key, entry{response: resp, expiresAt: time.Now().Add(ttl), sizeHint: sizeHint})
	c.mu.Unlock()
}

func (c *L1) Delete(key string) {
	c.mu.Lock()
	c.lru.Remove(key)
	c.mu.Unlock()
}

func (c *L1) Clear() {
	c.mu.Lock()
	c.lru.Purge()
	c.mu.Unlock()
}

func (c *L1) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
