// Package cache is a redis-backed cache for detection results, keyed by a
// hash of the submitted source. It sits in front of the detector at the API
// layer; the detector itself never caches.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brownzinoart/weready/internal/detect"
	"github.com/brownzinoart/weready/internal/shared/observability"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to redis at addr. A nil return from callers' perspective is
// avoided: use Enabled() or a nil *Cache, whose methods are no-ops.
func New(addr string, ttl time.Duration) *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

// Key derives a stable cache key from language and source.
func Key(lang detect.Language, source string) string {
	h := sha256.New()
	h.Write([]byte(lang))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return "weready:detect:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for key, or ok=false on miss, redis error,
// or a nil cache.
func (c *Cache) Get(ctx context.Context, key string) (*detect.Result, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("result cache get failed", "error", err)
		}
		observability.CacheMissesTotal.Inc()
		return nil, false
	}

	var result detect.Result
	if err := json.Unmarshal(data, &result); err != nil {
		slog.Debug("result cache decode failed", "error", err)
		observability.CacheMissesTotal.Inc()
		return nil, false
	}

	observability.CacheHitsTotal.Inc()
	return &result, true
}

// Set stores a result under key. Failures are logged, never surfaced: the
// cache is an optimization, not a dependency.
func (c *Cache) Set(ctx context.Context, key string, result *detect.Result) {
	if c == nil || c.rdb == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Debug("result cache set failed", "error", err)
	}
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
