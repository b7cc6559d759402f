package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/S-Corkum/search-gateway/internal/model"
)

// L2 is the optional shared tier. Entries are opaque serialized bytes to
// this layer (§3 "Cache entry"); TTL is a server-side Redis expiry in
// seconds. Grounded on the teacher's pkg/cache/service.go, which keeps a
// *redis.Client directly rather than hiding it behind its own driver
// abstraction.
type L2 struct {
	client  *redis.Client
	enabled bool
}

func NewL2(client *redis.Client, enabled bool) *L2 {
	return &L2{client: client, enabled: enabled}
}

func (l *L2) Enabled() bool { return l.enabled && l.client != nil }

// Get returns (response, true, nil) on hit, (zero, false, nil) on miss,
// and (zero, false, err) on a tier fault — the caller treats a fault the
// same as a miss but records it for metrics (§4.2 "Failure semantics").
func (l *L2) Get(ctx context.Context, key string) (model.Response, bool, error) {
	if !l.Enabled() {
		return model.Response{}, false, nil
	}
	raw, err := l.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Response{}, false, nil
	}
	if err != nil {
		return model.Response{}, false, err
	}
	var resp model.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.Response{}, false, err
	}
	return resp, true, nil
}

func (l *L2) Set(ctx context.Context, key string, resp model.Response, ttl time.Duration) error {
	if !l.Enabled() {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return l.client.Set(ctx, key, raw, ttl).Err()
}

func (l *L2) Delete(ctx context.Context, key string) error {
	if !l.Enabled() {
		return nil
	}
	return l.client.Del(ctx, key).Err()
}

// Clear removes every key under our own namespaces (search:*, suggest:*).
// This is an administrative flush, not the cross-tenant iteration the
// lookup path forbids (§4.2 "tenant-partitioned ... no iteration or
// wildcard read that could leak across tenants" refers to get(), not to
// an operator-invoked clear()).
func (l *L2) Clear(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}
	for _, pattern := range []string{"search:*", "suggest:*"} {
		iter := l.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := l.client.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (l *L2) Ping(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}
	return l.client.Ping(ctx).Err()
}
