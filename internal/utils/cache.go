package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache is a thin JSON cache over Redis. A nil client makes every
// operation a no-op, so running without REDIS_ADDR just disables caching.
type Cache struct {
	rdb *redis.Client // Underlying Redis client, may be nil
}

// NewCache wraps a Redis client; pass nil to disable caching
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// TotalKey is the cache key for one user's total
func TotalKey(username string) string {
	return "tally:user:" + username
}

// TotalsKey is the cache key for the full totals listing
const TotalsKey = "tally:totals"

// Get retrieves a value and unmarshals it into dest; false means miss
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, nil // Caching disabled, always a miss
	}
	val, err := c.rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// Set stores a value with a TTL
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil // Caching disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return c.rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// Delete removes keys, used to invalidate after a mutation
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return nil // Caching disabled or nothing to delete
	}
	return c.rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}
