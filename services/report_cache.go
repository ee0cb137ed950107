package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ReportCacheTTL bounds how stale a cached dashboard summary may be
const ReportCacheTTL = 5 * time.Minute

// ReportCache caches computed report summaries between dashboard loads
type ReportCache interface {
	Get(ctx context.Context, key string) (*ReportSummary, bool, error)
	Set(ctx context.Context, key string, value *ReportSummary, ttl time.Duration) error
}

var reportCacheInstance ReportCache = NewMemoryReportCache()

// GetReportCache returns the active report cache
func GetReportCache() ReportCache {
	return reportCacheInstance
}

// SetReportCache sets the active report cache (redis in production, memory in
// tests and when REDIS_URL is unset)
func SetReportCache(c ReportCache) {
	reportCacheInstance = c
}

// RedisReportCache stores summaries in Redis as JSON
type RedisReportCache struct {
	client *redis.Client
}

// NewRedisReportCache connects a report cache to the Redis at url
func NewRedisReportCache(url string) (*RedisReportCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisReportCache{client: redis.NewClient(opts)}, nil
}

// Ping verifies the Redis connection
func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*ReportSummary, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary ReportSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, key string, value *ReportSummary, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// MemoryReportCache is the in-process fallback used in tests and when no
// Redis is configured
type MemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	summary   ReportSummary
	expiresAt time.Time
}

// NewMemoryReportCache creates an empty in-process cache
func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{entries: make(map[string]memoryCacheEntry)}
}

func (c *MemoryReportCache) Get(_ context.Context, key string) (*ReportSummary, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	summary := entry.summary
	return &summary, true, nil
}

func (c *MemoryReportCache) Set(_ context.Context, key string, value *ReportSummary, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	c.mu.Lock()
	c.entries[key] = memoryCacheEntry{summary: *value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}
