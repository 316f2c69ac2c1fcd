// Package cache provides a small key/value cache backed by Redis, falling
// back to process memory when Redis is not configured or unreachable.
//
//	var govs []models.Governorate
//	if !cache.Get(ctx, "governorates", &govs) {
//	    govs, _ = store.ListGovernorates(ctx)
//	    _ = cache.Set(ctx, "governorates", govs, time.Hour)
//	}
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/elitetable/elitetable/config"
	"github.com/elitetable/elitetable/pkg/metrics"
)

// Store is the backing driver.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Driver() string
}

var (
	mu      sync.RWMutex
	current Store = NewMemory()
)

// Connect selects Redis when REDIS_ADDR is set and reachable, otherwise
// keeps the memory store. The returned error is informational.
func Connect(ctx context.Context) error {
	addr := config.RedisAddr()
	if addr == "" {
		Use(NewMemory())
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.RedisPassword(),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		Use(NewMemory())
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	Use(&redisStore{rdb: rdb})
	return nil
}

// Use swaps the active store.
func Use(s Store) {
	mu.Lock()
	current = s
	mu.Unlock()
}

func store() Store {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Driver names the active store ("redis" or "memory").
func Driver() string { return store().Driver() }

// Get unmarshals the cached value for key into dest. Returns true on a hit.
func Get(ctx context.Context, key string, dest any) bool {
	s := store()
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok || json.Unmarshal(raw, dest) != nil {
		metrics.CacheMisses.WithLabelValues(s.Driver()).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(s.Driver()).Inc()
	return true
}

// Set stores value as JSON under key for ttl.
func Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return store().Set(ctx, key, data, ttl)
}

// Forget removes keys.
func Forget(ctx context.Context, keys ...string) error {
	return store().Del(ctx, keys...)
}

// ─── Redis ───────────────────────────────────────────────────────────────────

type redisStore struct {
	rdb *redis.Client
}

func (r *redisStore) Driver() string { return "redis" }

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r *redisStore) Del(ctx context.Context, keys ...string) error {
	return r.rdb.Del(ctx, keys...).Err()
}

// ─── Memory ──────────────────────────────────────────────────────────────────

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local Store. Expired items are evicted lazily.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem), now: time.Now}
}

func (m *Memory) Driver() string { return "memory" }

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !it.expiresAt.IsZero() && m.now().After(it.expiresAt) {
		delete(m.items, key)
		return nil, false, nil
	}
	return it.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiresAt = m.now().Add(ttl)
	}
	m.items[key] = it
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}
