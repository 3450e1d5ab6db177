package tonapi

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ResolverCache caches address resolutions. Raw forms are deterministic, so
// entries never expire.
type ResolverCache interface {
	Get(ctx context.Context, address string) (string, bool)
	Put(ctx context.Context, address, raw string)
}

// MemoryCache is an in-process resolver cache, used when no Redis address is
// configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (m *MemoryCache) Get(ctx context.Context, address string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.entries[address]
	return raw, ok
}

func (m *MemoryCache) Put(ctx context.Context, address, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[address] = raw
}

// RedisCache is a resolver cache backed by Redis, shared across restarts.
// Lookup failures degrade to cache misses; the caller falls through to the
// directory service.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, address string) (string, bool) {
	raw, err := r.client.Get(ctx, cacheKey(address)).Result()
	if err != nil {
		return "", false
	}
	return raw, true
}

func (r *RedisCache) Put(ctx context.Context, address, raw string) {
	r.client.Set(ctx, cacheKey(address), raw, 0)
}

func cacheKey(address string) string {
	return "rawaddr:" + address
}
